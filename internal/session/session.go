package session

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/matsuokaju/rhythm-game/internal/game"
	"github.com/matsuokaju/rhythm-game/internal/judge"
	"github.com/matsuokaju/rhythm-game/internal/schedule"
	"github.com/matsuokaju/rhythm-game/internal/score"
	"github.com/matsuokaju/rhythm-game/internal/timeline"
)

type Options struct {
	LookAhead time.Duration // How early notes become live
	Offset    time.Duration // Added to every hit time
	Windows   game.Windows
	Logger    *slog.Logger

	// OnEvent, when set, sees every judgment as it is made.
	OnEvent func(ev game.Event)
}

// DefaultLookAhead matches the time a note spends on screen.
const DefaultLookAhead = 2 * time.Second

// Session plays one chart. It is driven by a single goroutine through Start,
// Submit, Tick and Stop.
type Session struct {
	chart    *game.Chart
	timeline *timeline.Timeline
	opts     Options
	log      *slog.Logger

	active    *schedule.Active
	scheduler *schedule.Scheduler
	engine    *judge.Engine
	acc       score.Accumulator

	running bool
	pressed [game.Lanes]bool
	queue   []game.Edge
	events  []game.Event

	bpm float64
	ts  game.TimeSignature
}

func New(chart *game.Chart, opts Options) (*Session, error) {
	if nil == chart {
		return nil, errors.New("no chart")
	}
	if opts.Windows == (game.Windows{}) {
		opts.Windows = game.DefaultWindows
	}
	if err := opts.Windows.Validate(); nil != err {
		return nil, err
	}
	if opts.LookAhead <= 0 {
		opts.LookAhead = DefaultLookAhead
	}
	log := opts.Logger
	if nil == log {
		log = slog.Default()
	}

	tl, err := timeline.New(chart.TimingPoints, chart.LeadInMeasures())
	if nil != err {
		return nil, fmt.Errorf("unable to build timeline for %q: %w", chart.SongInfo.Title, err)
	}
	bpm, ts := tl.TempoAt(0)
	return &Session{
		chart:    chart,
		timeline: tl,
		opts:     opts,
		log:      log,
		active:   schedule.NewActive(),
		bpm:      bpm,
		ts:       ts,
	}, nil
}

func (s *Session) Timeline() *timeline.Timeline {
	return s.timeline
}

func (s *Session) Chart() *game.Chart {
	return s.chart
}

// Start resets the session and returns the song time the caller's clock
// should start from. A measure of 0 plays from the top; otherwise play
// resumes one lead-in before that measure.
func (s *Session) Start(measure int) time.Duration {
	s.Stop()
	s.acc.Reset()
	s.scheduler = schedule.New(s.chart, s.timeline, s.active, schedule.Options{
		LookAhead: s.opts.LookAhead,
		Offset:    s.opts.Offset,
		Windows:   s.opts.Windows,
		Reporter:  s,
		Logger:    s.log,
	})
	s.engine = judge.New(s.active, s.opts.Windows, s, s.log)

	start := time.Duration(0)
	if measure > 0 {
		s.scheduler.ResumeFrom(measure)
		start = timeline.Duration(s.timeline.MeasureStartTime(measure) - s.timeline.LeadInTime())
		if start < 0 {
			start = 0
		}
	}
	s.scheduler.CatchUp(start)
	s.bpm, s.ts = s.timeline.TempoAt(start.Seconds())
	s.running = true
	s.events = nil
	s.log.Info("session started",
		"title", s.chart.SongInfo.Title, "measure", measure, "at", start, "notes", s.scheduler.Len())
	return start
}

// Submit queues an input edge for the next Tick.
func (s *Session) Submit(e game.Edge) {
	if !s.running {
		return
	}
	s.queue = append(s.queue, e)
}

// Tick advances the session to now and returns the judgments it produced.
// Edges stamped after now stay queued.
func (s *Session) Tick(now time.Duration) []game.Event {
	if !s.running {
		return nil
	}
	s.events = nil

	s.bpm, s.ts = s.timeline.TempoAt(now.Seconds())
	s.scheduler.Tick(now)

	pending := 0
	for _, e := range s.queue {
		if e.Time > now {
			s.queue[pending] = e
			pending++
			continue
		}
		s.dispatch(e)
	}
	s.queue = s.queue[:pending]

	s.engine.SweepMisses(now)
	for _, n := range s.active.Snapshot() {
		if nil == n.Hold {
			continue
		}
		n.Hold.Update(now, s.pressed[n.Lane])
		if n.Hold.Done() {
			s.active.Remove(n)
		}
	}

	return s.events
}

func (s *Session) dispatch(e game.Edge) {
	if !game.ValidLane(e.Lane) {
		s.log.Warn("edge for unknown lane", "lane", e.Lane)
		return
	}
	if s.pressed[e.Lane] == e.Pressed {
		return
	}

	// Holds judge segments against the lane state up to the edge.
	holds := s.active.Lane(e.Lane, game.Hold)
	for _, n := range holds {
		n.Hold.Update(e.Time, s.pressed[e.Lane])
	}
	s.pressed[e.Lane] = e.Pressed

	if !e.Pressed {
		for _, n := range holds {
			n.Hold.Release(e.Time)
		}
		return
	}
	if s.engine.OnPress(e.Lane, e.Time) {
		return
	}
	for _, n := range holds {
		n.Hold.Press(e.Time)
	}
}

// Report folds a judgment into the score and records it for this tick.
func (s *Session) Report(ev game.Event) {
	if !s.running {
		return
	}
	s.acc.Report(ev)
	s.events = append(s.events, ev)
	if nil != s.opts.OnEvent {
		s.opts.OnEvent(ev)
	}
}

// Stop discards every live note and queued edge without judging them.
func (s *Session) Stop() {
	if s.running {
		s.log.Info("session stopped", "live", s.active.Len(), "queued", len(s.queue))
	}
	s.running = false
	s.active.Clear()
	s.queue = nil
	s.pressed = [game.Lanes]bool{}
}

func (s *Session) Running() bool {
	return s.running
}

// Done reports whether every note has been judged.
func (s *Session) Done() bool {
	return nil != s.scheduler && s.scheduler.Done() && s.active.Len() == 0
}

func (s *Session) Score() score.State {
	return s.acc.State()
}

func (s *Session) Accuracy() float64 {
	return s.acc.Accuracy()
}

func (s *Session) TapAccuracy() float64 {
	return s.acc.TapAccuracy()
}

func (s *Session) HoldAccuracy() float64 {
	return s.acc.HoldAccuracy()
}

// Tempo is the bpm and meter in effect at the last tick.
func (s *Session) Tempo() (float64, game.TimeSignature) {
	return s.bpm, s.ts
}

// BarLines returns the measure starts that entered the look-ahead since the
// last call.
func (s *Session) BarLines() []game.Measure {
	if nil == s.scheduler {
		return nil
	}
	return s.scheduler.BarLines()
}

// Live is a snapshot of the notes that can still be judged.
func (s *Session) Live() []*schedule.ActiveNote {
	return s.active.Snapshot()
}

// Skipped is the number of unplayable notes dropped while scheduling.
func (s *Session) Skipped() int {
	if nil == s.scheduler {
		return 0
	}
	return s.scheduler.Skipped()
}
