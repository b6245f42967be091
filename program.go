package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/matsuokaju/rhythm-game/internal/audio"
	"github.com/matsuokaju/rhythm-game/internal/config"
	"github.com/matsuokaju/rhythm-game/internal/game"
	"github.com/matsuokaju/rhythm-game/internal/input"
	"github.com/matsuokaju/rhythm-game/internal/parser"
	"github.com/matsuokaju/rhythm-game/internal/render"
	"github.com/matsuokaju/rhythm-game/internal/score"
	"github.com/matsuokaju/rhythm-game/internal/session"
	"github.com/matsuokaju/rhythm-game/internal/theme"
	"github.com/matsuokaju/rhythm-game/internal/timeline"
)

// How long the field stays up after the last judgment.
const linger = time.Second

type Program struct {
	Parser parser.Parser
	Store  score.Store
	Theme  theme.Theme
	Log    *slog.Logger

	chartFile string
	charts    []*game.Chart
	chart     *game.Chart
	storeOpen bool
}

func (p *Program) Init(chartFile string, difficulty int) error {
	if nil == p.Log {
		p.Log = slog.Default()
	}
	if nil == p.Parser {
		psr, err := parser.ForFile(chartFile)
		if nil != err {
			return err
		}
		p.Parser = psr
	}

	charts, err := p.Parser.Parse(chartFile)
	if nil != err {
		return err
	}
	if difficulty < 0 || difficulty >= len(charts) {
		return fmt.Errorf("no chart %d in %s, it has %d", difficulty, chartFile, len(charts))
	}
	p.chartFile = chartFile
	p.charts = charts
	p.chart = charts[difficulty]
	return nil
}

func (p *Program) Deinit() {
	if p.storeOpen {
		p.Store.Deinit()
		p.storeOpen = false
	}
}

func (p *Program) openStore(path string) error {
	if p.storeOpen {
		return nil
	}
	if err := p.Store.Init(path); nil != err {
		return err
	}
	p.storeOpen = true
	return nil
}

func (p *Program) newSession() (*session.Session, error) {
	return session.New(p.chart, session.Options{
		LookAhead: *config.LookAhead,
		Offset:    *config.Offset,
		Windows:   config.Windows(),
		Logger:    p.Log,
	})
}

// Info lists the charts in the file.
func (p *Program) Info(w io.Writer) error {
	info := p.chart.SongInfo
	fmt.Fprintf(w, "%v - %v (%v)\n", info.Title, info.Artist, filepath.Base(p.chartFile))
	for _, tp := range p.chart.TimingPoints {
		fmt.Fprintf(w, "  measure %3v beat %5.2f  %7.2f bpm  %v\n", tp.Measure, tp.Beat, tp.BPM, tp.TimeSignature)
	}
	for i, c := range p.charts {
		length := time.Duration(0)
		if tl, err := timeline.New(c.TimingPoints, c.LeadInMeasures()); nil == err && len(c.Notes) > 0 {
			last := c.Notes[len(c.Notes)-1]
			length = tl.HitTime(last.Measure, last.Beat).Round(time.Second)
		}
		fmt.Fprintf(w, "%2v) %-10v %3v  %5v notes  %4v holds  %v\n",
			i, c.SongInfo.Difficulty, c.SongInfo.Level, c.NoteCount, c.HoldCount, length)
	}
	return nil
}

// History prints the saved results of the chart, oldest first.
func (p *Program) History(w io.Writer) error {
	if err := p.openStore(*config.Database); nil != err {
		return err
	}
	histories, err := p.Store.Load(p.chart)
	if nil != err {
		return err
	}
	if len(histories) == 0 {
		fmt.Fprintln(w, "no results yet")
		return nil
	}
	for _, h := range histories {
		fmt.Fprintf(w, "%v  %8v  max combo %4v  %6.2f%%  %v\n",
			h.Played.Format("2006-01-02 15:04"), h.State.Score, h.State.MaxCombo, h.Accuracy*100, h.Run)
	}
	return nil
}

// Simulate plays the chart with generated input and saves the result.
func (p *Program) Simulate(jitter time.Duration, seed int64) (*session.Session, error) {
	s, err := p.newSession()
	if nil != err {
		return nil, err
	}
	start := s.Start(*config.Measure)
	plan := input.Plan(p.chart, s.Timeline(), *config.Offset, *config.LookAhead)
	edges := input.Autoplay(plan, jitter, rand.New(rand.NewSource(seed)))

	end := start
	if len(edges) > 0 {
		end = edges[len(edges)-1].Time
	}
	end += config.Windows().Miss() + *config.LookAhead

	next := 0
	for now := start; !s.Done() && now <= end; now += *config.FramePeriod {
		for ; next < len(edges) && edges[next].Time <= now; next++ {
			if edges[next].Time >= start {
				s.Submit(edges[next])
			}
		}
		s.Tick(now)
	}
	s.Stop()

	return s, p.save(s)
}

func (p *Program) save(s *session.Session) error {
	if err := p.openStore(*config.Database); nil != err {
		return err
	}
	return p.Store.Save(p.chart, s.Score(), s.Accuracy())
}

func (p *Program) readInput(ctx context.Context, clock input.Clock, out chan<- game.Edge) error {
	if *config.Device != "" {
		keymap, err := input.EvdevKeymap(*config.Keys)
		if nil != err {
			return err
		}
		return input.ReadEvdev(ctx, *config.Device, keymap, clock, out)
	}
	kb, err := input.NewKeyboard(*config.Keys, clock)
	if nil != err {
		return err
	}
	return kb.Run(ctx, out)
}

func (p *Program) openAudio() *audio.Player {
	if p.chart.SongInfo.AudioFile == "" {
		return nil
	}
	file := filepath.Join(filepath.Dir(p.chartFile), p.chart.SongInfo.AudioFile)
	player, err := audio.Open(file, p.Log)
	if nil != err {
		p.Log.Warn("playing without audio", "err", err)
		return nil
	}
	return player
}

// Play runs the chart against live input until it ends or the player quits.
// Only completed plays are saved.
func (p *Program) Play(ctx context.Context) (*session.Session, error) {
	s, err := p.newSession()
	if nil != err {
		return nil, err
	}

	dr := render.NewDefaultRenderer(os.Stdout, p.Theme)
	dr.ScrollSpeed = *config.ScrollSpeed
	dr.Spacing = *config.Spacing
	var r render.Renderer = dr

	player := p.openAudio()
	if nil != player {
		defer player.Close()
	}
	// The first audio sample plays at this song time.
	begin := timeline.Duration(s.Timeline().LeadInTime() + p.chart.SongInfo.AudioOffset)

	start := s.Start(*config.Measure)
	origin := time.Now().Add(*config.Delay)
	clock := input.SongClock(origin, start)

	if err := r.Init(); nil != err {
		return nil, err
	}
	defer r.Deinit()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	edges := make(chan game.Edge, 256)
	inputErr := make(chan error, 1)
	go func() {
		inputErr <- p.readInput(ctx, clock, edges)
	}()

	var pressed [game.Lanes]bool
	var bars []time.Duration
	var doneAt time.Duration
	playing, finishing, completed, inputDone := false, false, false, false

	err = render.Loop(ctx, *config.FramePeriod, func() time.Duration {
		return clock(time.Now())
	}, func(now time.Duration) bool {
		if !playing && nil != player && now >= start {
			if err := player.Play(now, begin, p.chart.SongInfo.Volume); nil != err {
				p.Log.Warn("unable to play audio", "err", err)
			}
			playing = true
		}

		for drained := false; !drained; {
			select {
			case e := <-edges:
				s.Submit(e)
				if game.ValidLane(e.Lane) {
					pressed[e.Lane] = e.Pressed
				}
			case err := <-inputErr:
				inputDone = true
				if nil != err && !errors.Is(err, input.ErrCancelled) {
					p.Log.Error("input failed", "err", err)
				}
				return false
			default:
				drained = true
			}
		}

		events := s.Tick(now)
		for _, m := range s.BarLines() {
			bars = append(bars, m.Time)
		}
		for len(bars) > 0 && bars[0] < now {
			bars = bars[1:]
		}

		bpm, ts := s.Tempo()
		view := &render.View{
			Now:      now,
			Bars:     bars,
			Pressed:  pressed,
			Last:     events,
			State:    s.Score(),
			Accuracy: s.Accuracy(),
			BPM:      bpm,
			Meter:    ts,
		}
		for _, n := range s.Live() {
			nv := render.NoteView{Lane: n.Lane, HitTime: n.HitTime, End: n.HitTime}
			if nil != n.Hold {
				nv.End, nv.Hold = n.Hold.End(), true
			}
			view.Notes = append(view.Notes, nv)
		}
		r.Draw(view)

		if s.Done() {
			if !finishing {
				doneAt, finishing = now, true
			}
			if now-doneAt >= linger {
				completed = true
				return false
			}
		}
		return true
	})
	if nil != player {
		player.Stop()
	}
	s.Stop()

	// Let the input source release the terminal before it is restored.
	cancel()
	if !inputDone {
		select {
		case <-inputErr:
		case <-time.After(500 * time.Millisecond):
		}
	}
	if nil != err && !errors.Is(err, context.Canceled) {
		return s, err
	}
	if !completed {
		return s, nil
	}
	return s, p.save(s)
}
