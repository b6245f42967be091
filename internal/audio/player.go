package audio

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"
)

// Player plays a song file against the session clock.
type Player struct {
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	log      *slog.Logger
	started  bool
}

func Open(file string, log *slog.Logger) (*Player, error) {
	if nil == log {
		log = slog.Default()
	}
	f, err := os.Open(file)
	if nil != err {
		return nil, err
	}

	var streamer beep.StreamSeekCloser
	var format beep.Format
	switch strings.ToLower(filepath.Ext(file)) {
	case ".ogg":
		streamer, format, err = vorbis.Decode(f)
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".wav":
		streamer, format, err = wav.Decode(f)
	default:
		err = fmt.Errorf("unsupported audio format %s", filepath.Ext(file))
	}
	if nil != err {
		f.Close()
		return nil, fmt.Errorf("unable to decode %s: %w", file, err)
	}
	log.Debug("audio opened", "file", file, "rate", format.SampleRate, "length", format.SampleRate.D(streamer.Len()))
	return &Player{streamer: streamer, format: format, log: log}, nil
}

func (p *Player) Length() time.Duration {
	return p.format.SampleRate.D(p.streamer.Len())
}

// lead splits the distance between the clock and the audio into silence to
// play first, or an audio position to seek to. begin is the song time of the
// first audio sample.
func lead(at, begin time.Duration) (silence, seek time.Duration) {
	if at < begin {
		return begin - at, 0
	}
	return 0, at - begin
}

// stream builds the streamer that, started at song time at, stays in sync.
func (p *Player) stream(at, begin time.Duration, volume float64) (beep.Streamer, error) {
	silence, seek := lead(at, begin)
	pos := p.format.SampleRate.N(seek)
	if pos > p.streamer.Len() {
		pos = p.streamer.Len()
	}
	if err := p.streamer.Seek(pos); nil != err {
		return nil, fmt.Errorf("unable to seek to %v: %w", seek, err)
	}

	var s beep.Streamer = p.streamer
	if silence > 0 {
		s = beep.Seq(beep.Silence(p.format.SampleRate.N(silence)), s)
	}
	s = &effects.Volume{
		Streamer: s,
		Base:     2,
		Volume:   math.Log2(volume),
		Silent:   volume <= 0,
	}
	p.ctrl = &beep.Ctrl{Streamer: s}
	return p.ctrl, nil
}

// Play starts the song as if it had been playing since song time begin, the
// clock now reading at. volume is linear, 1 leaving the file unchanged.
func (p *Player) Play(at, begin time.Duration, volume float64) error {
	if p.started {
		return errors.New("already playing")
	}
	s, err := p.stream(at, begin, volume)
	if nil != err {
		return err
	}
	if err := speaker.Init(p.format.SampleRate, p.format.SampleRate.N(time.Second/60)); nil != err {
		return fmt.Errorf("unable to open speaker: %w", err)
	}
	speaker.Play(s)
	p.started = true
	p.log.Info("audio playing", "at", at, "begin", begin, "volume", volume)
	return nil
}

// Stop pauses playback. It is safe to call before Play.
func (p *Player) Stop() {
	if nil == p.ctrl {
		return
	}
	if p.started {
		speaker.Lock()
		p.ctrl.Paused = true
		speaker.Unlock()
		return
	}
	p.ctrl.Paused = true
}

func (p *Player) Close() error {
	p.Stop()
	return p.streamer.Close()
}
