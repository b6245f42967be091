package schedule

import (
	"log/slog"
	"sort"
	"time"

	"github.com/matsuokaju/rhythm-game/internal/game"
	"github.com/matsuokaju/rhythm-game/internal/hold"
	"github.com/matsuokaju/rhythm-game/internal/timeline"
)

// CatchUpWindow is how far behind the clock CatchUp still activates notes.
const CatchUpWindow = time.Second

type Options struct {
	LookAhead time.Duration // Notes activate this long before their hit time
	Offset    time.Duration // Added to every hit time
	Windows   game.Windows
	Reporter  game.Reporter // Receives hold judgments
	Logger    *slog.Logger
}

type entry struct {
	note    *game.Note
	beat    float64 // Absolute beat
	hitTime time.Duration
}

// Scheduler walks the chart once, activating notes a fixed look-ahead before
// they are due.
type Scheduler struct {
	timeline *timeline.Timeline
	opts     Options
	log      *slog.Logger

	entries []entry
	cursor  int
	active  *Active
	skipped int

	nextBar int
	lastBar int
	bars    []game.Measure
}

func New(chart *game.Chart, tl *timeline.Timeline, active *Active, opts Options) *Scheduler {
	log := opts.Logger
	if nil == log {
		log = slog.Default()
	}
	s := &Scheduler{
		timeline: tl,
		opts:     opts,
		log:      log,
		entries:  make([]entry, 0, len(chart.Notes)),
		active:   active,
		nextBar:  1,
		lastBar:  1,
	}
	for _, n := range chart.Notes {
		beat := tl.BeatsAt(n.Measure, n.Beat)
		s.entries = append(s.entries, entry{
			note:    n,
			beat:    beat,
			hitTime: timeline.Duration(tl.TimeAt(beat)) + opts.Offset,
		})
		if n.Measure+1 > s.lastBar {
			s.lastBar = n.Measure + 1
		}
	}
	sort.SliceStable(s.entries, func(i, j int) bool {
		return s.entries[i].beat < s.entries[j].beat
	})
	return s
}

func (s *Scheduler) Active() *Active {
	return s.active
}

// HitTime is the hit time of the i-th note in scheduling order.
func (s *Scheduler) HitTime(i int) time.Duration {
	return s.entries[i].hitTime
}

func (s *Scheduler) Len() int {
	return len(s.entries)
}

func (s *Scheduler) Cursor() int {
	return s.cursor
}

// Skipped is the number of notes dropped for being unplayable.
func (s *Scheduler) Skipped() int {
	return s.skipped
}

// Done reports whether every note has been handed out.
func (s *Scheduler) Done() bool {
	return s.cursor >= len(s.entries)
}

// ResumeFrom moves the cursor past every note before measure without
// activating it.
func (s *Scheduler) ResumeFrom(measure int) {
	for s.cursor < len(s.entries) && s.entries[s.cursor].note.Measure < measure {
		s.cursor++
	}
	if measure > s.nextBar {
		s.nextBar = measure
	}
	s.log.Debug("resuming", "measure", measure, "skipped", s.cursor)
}

// CatchUp activates every pending note due within a second behind now or the
// look-ahead in front of it, then moves the cursor past the last of them.
func (s *Scheduler) CatchUp(now time.Duration) []*ActiveNote {
	activated := []*ActiveNote{}
	highest := -1
	for i := s.cursor; i < len(s.entries); i++ {
		e := s.entries[i]
		if e.hitTime-now > s.opts.LookAhead {
			break
		}
		if e.hitTime < now-CatchUpWindow {
			continue
		}
		if n := s.activate(i, now); nil != n {
			activated = append(activated, n)
		}
		highest = i
	}
	if highest >= s.cursor {
		s.cursor = highest + 1
	}
	s.log.Debug("caught up", "at", now, "activated", len(activated), "cursor", s.cursor)
	return activated
}

// Tick activates every note whose hit time is within the look-ahead of now
// and queues the bar lines that entered the same window.
func (s *Scheduler) Tick(now time.Duration) []*ActiveNote {
	activated := []*ActiveNote{}
	for s.cursor < len(s.entries) && s.entries[s.cursor].hitTime-now <= s.opts.LookAhead {
		if n := s.activate(s.cursor, now); nil != n {
			activated = append(activated, n)
		}
		s.cursor++
	}

	for s.nextBar <= s.lastBar {
		at := timeline.Duration(s.timeline.MeasureStartTime(s.nextBar)) + s.opts.Offset
		if at-now > s.opts.LookAhead {
			break
		}
		s.bars = append(s.bars, game.Measure{Number: s.nextBar, Time: at})
		s.nextBar++
	}
	return activated
}

// BarLines returns the bar lines queued since the last call.
func (s *Scheduler) BarLines() []game.Measure {
	bars := s.bars
	s.bars = nil
	return bars
}

func (s *Scheduler) activate(i int, now time.Duration) *ActiveNote {
	e := s.entries[i]
	n := e.note
	if !game.ValidLane(n.Lane) {
		s.skipped++
		s.log.Warn("skipping note with invalid lane",
			"measure", n.Measure, "beat", n.Beat, "lane", n.Lane)
		return nil
	}

	t := game.Tap
	if n.IsHold() {
		if n.Duration > 0 {
			t = game.Hold
		} else {
			s.log.Info("hold without duration, judging as tap",
				"measure", n.Measure, "beat", n.Beat, "lane", n.Lane, "duration", n.Duration)
		}
	}

	an := &ActiveNote{
		Key:   Key{HitTime: e.hitTime, Lane: n.Lane, Type: t},
		Note:  n,
		Index: i,
	}
	if s.active.Contains(an.Key) {
		s.log.Debug("note already active", "index", i, "hitTime", e.hitTime, "lane", n.Lane)
		return nil
	}
	if t == game.Hold {
		bpm, _ := s.timeline.TempoAt(now.Seconds())
		an.Hold = hold.New(hold.Spec{
			Lane:  n.Lane,
			Start: e.hitTime,
			Beats: n.Duration,
			BPM:   bpm,
		}, s.opts.Windows, s.opts.Reporter, s.log)
	}
	s.active.Add(an)
	return an
}
