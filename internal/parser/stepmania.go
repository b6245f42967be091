package parser

import (
	"fmt"
	"log/slog"
	"math"
	"math/big"
	"os"
	"strconv"
	"strings"

	"github.com/matsuokaju/rhythm-game/internal/game"
)

// SMParser converts StepMania files. Each dance-single or dance-solo note
// section becomes one chart; BPM changes become 4/4 timing points.
type SMParser struct {
	Log *slog.Logger
}

// Lanes per supported chart type.
var laneCounts = map[string]int{
	"dance-single": 4,
	"dance-solo":   6,
}

// 0 – No note
// 1 – Normal note
// 2 – Hold head
// 3 – Hold/Roll tail
// 4 – Roll head
// M – Mine (or other negative note)
// K – Automatic keysound
// L – Lift note
// F – Fake note

type bpmChange struct {
	beat float64 // Quarter notes from beat zero
	bpm  float64
}

type section struct {
	lanes      int
	difficulty string
	level      int
	body       string
}

func (p *SMParser) logger() *slog.Logger {
	if nil == p.Log {
		return slog.Default()
	}
	return p.Log
}

func (p *SMParser) Parse(file string) ([]*game.Chart, error) {
	data, err := os.ReadFile(file)
	if nil != err {
		return nil, err
	}

	str := strings.ReplaceAll(string(data), "\r", "")
	sections := strings.Split(str, "#NOTES:")
	meta := sections[0]

	info := game.SongInfo{Volume: 1, EmptyMeasures: 1}
	bpms := []bpmChange{}
	for _, mdl := range strings.Split(meta, "#") {
		mdl = strings.TrimSpace(mdl)
		key, value, ok := strings.Cut(mdl, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(value), ";"))
		switch key {
		case "TITLE":
			info.Title = value
		case "ARTIST":
			info.Artist = value
		case "MUSIC":
			info.AudioFile = value
		case "OFFSET":
			// Beat zero plays -OFFSET seconds into the audio.
			offs, err := strconv.ParseFloat(value, 64)
			if nil != err {
				return nil, fmt.Errorf("%s: bad offset: %w", file, err)
			}
			info.AudioOffset = offs
		case "SAMPLESTART":
			if start, err := strconv.ParseFloat(value, 64); nil == err {
				info.PreviewTime = start
			}
		case "BPMS":
			bpms, err = parseBPMs(value)
			if nil != err {
				return nil, fmt.Errorf("%s: %w", file, err)
			}
		}
	}
	if len(bpms) == 0 {
		return nil, fmt.Errorf("%s: no BPMS", file)
	}
	points := timingPoints(bpms)

	charts := []*game.Chart{}
	for _, raw := range sections[1:] {
		s, ok := p.section(raw)
		if !ok {
			continue
		}
		chart := &game.Chart{
			SongInfo:     info,
			TimingPoints: points,
			Notes:        p.notes(s),
		}
		chart.SongInfo.Difficulty = s.difficulty
		chart.SongInfo.Level = s.level
		if err := finish(chart); nil != err {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
		charts = append(charts, chart)
	}
	if len(charts) == 0 {
		return nil, fmt.Errorf("%s: no dance-single or dance-solo charts", file)
	}
	return charts, nil
}

func parseBPMs(value string) ([]bpmChange, error) {
	bpms := []bpmChange{}
	value = strings.ReplaceAll(value, "\n", "")
	for _, bpm := range strings.Split(value, ",") {
		bpm = strings.TrimSpace(bpm)
		if bpm == "" {
			continue
		}
		as := strings.Split(bpm, "=")
		if len(as) != 2 {
			return nil, fmt.Errorf("bad bpm change %q", bpm)
		}
		sb, err := strconv.ParseFloat(strings.TrimSpace(as[0]), 64)
		if nil != err {
			return nil, err
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(as[1]), 64)
		if nil != err {
			return nil, err
		}
		bpms = append(bpms, bpmChange{beat: sb, bpm: value})
	}
	return bpms, nil
}

// StepMania measures are always four quarter notes.
func timingPoints(bpms []bpmChange) []game.TimingPoint {
	points := make([]game.TimingPoint, 0, len(bpms))
	for _, b := range bpms {
		measure := math.Floor(b.beat / 4)
		points = append(points, game.TimingPoint{
			Measure:       int(measure) + 1,
			Beat:          b.beat - measure*4,
			BPM:           b.bpm,
			TimeSignature: game.TimeSignature{Numerator: 4, Denominator: 4},
		})
	}
	return points
}

func (p *SMParser) section(raw string) (section, bool) {
	lines := strings.SplitN(raw, "\n", 7)
	if len(lines) < 7 {
		return section{}, false
	}
	chartType := strings.TrimSuffix(strings.TrimSpace(lines[1]), ":")
	lanes, ok := laneCounts[chartType]
	if !ok {
		p.logger().Debug("skipping chart type", "type", chartType)
		return section{}, false
	}
	level, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(lines[4]), ":"))
	if nil != err {
		level = 1
	}
	body := lines[6]
	if i := strings.Index(body, ";"); i >= 0 {
		body = body[:i]
	}
	return section{
		lanes:      lanes,
		difficulty: strings.TrimSuffix(strings.TrimSpace(lines[3]), ":"),
		level:      level,
		body:       body,
	}, true
}

func (p *SMParser) notes(s section) []*game.Note {
	notes := []*game.Note{}
	heads := make([]*game.Note, s.lanes)
	headBeats := make([]float64, s.lanes)

	for m, block := range strings.Split(s.body, ",") {
		lines := []string{}
		for _, l := range strings.Split(block, "\n") {
			if i := strings.Index(l, "//"); i >= 0 {
				l = l[:i]
			}
			l = strings.TrimSpace(l)
			if len(l) == s.lanes {
				lines = append(lines, l)
			}
		}

		// Every block is 4 beats, split evenly between its lines.
		lineCount := int64(len(lines))
		for i, line := range lines {
			beat, _ := big.NewRat(int64(i*4), lineCount).Float64()
			total := float64(m*4) + beat

			for lane, c := range []byte(line) {
				switch c {
				case '1':
					notes = append(notes, &game.Note{Measure: m + 1, Beat: beat, Lane: lane, Type: game.Tap})
				case '2', '4':
					n := &game.Note{Measure: m + 1, Beat: beat, Lane: lane, Type: game.Hold}
					notes = append(notes, n)
					heads[lane], headBeats[lane] = n, total
				case '3':
					// This is the release of the last head in this column
					if nil == heads[lane] {
						p.logger().Warn("hold tail without head", "measure", m+1, "beat", beat, "lane", lane)
						continue
					}
					heads[lane].Duration = total - headBeats[lane]
					heads[lane] = nil
				}
			}
		}
	}

	for lane, h := range heads {
		if nil != h {
			p.logger().Warn("hold head without tail", "measure", h.Measure, "beat", h.Beat, "lane", lane)
		}
	}
	return notes
}
