package hold

import (
	"log/slog"
	"math"
	"time"

	"github.com/matsuokaju/rhythm-game/internal/game"
	"github.com/matsuokaju/rhythm-game/internal/timeline"
)

type State int

const (
	NotStarted State = iota
	Perfect          // Held and judged on every segment
	Released         // Let go, a press recovers
	Completed
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "NotStarted"
	case Perfect:
		return "Perfect"
	case Released:
		return "Released"
	case Completed:
		return "Completed"
	}
	return "Unknown"
}

// SegmentBeats is the spacing of segment checkpoints, in quarter notes.
const SegmentBeats = 0.5

type Spec struct {
	Lane  int
	Start time.Duration // Hit time of the head
	Beats float64       // Hold length in quarter notes
	BPM   float64       // Tempo in effect when the note was spawned
}

// Machine judges one hold note. It is driven by press and release edges on its
// lane and by Update, which must be called with monotonically increasing
// times. The segment interval and the duration are fixed from Spec.BPM.
type Machine struct {
	lane     int
	start    time.Duration
	end      time.Duration
	interval time.Duration
	windows  game.Windows
	reporter game.Reporter
	log      *slog.Logger

	state       State
	hasStarted  bool
	startJudged bool
	startResult game.Result
	released    []bool
	cursor      int
}

// Segments is the number of checkpoints a hold of beats quarter notes gets.
func Segments(beats float64) int {
	if beats < SegmentBeats {
		return 0
	}
	n := int(math.RoundToEven(beats/SegmentBeats)) - 1
	if n < 0 {
		return 0
	}
	return n
}

func New(spec Spec, windows game.Windows, reporter game.Reporter, log *slog.Logger) *Machine {
	if nil == log {
		log = slog.Default()
	}
	secondsPerBeat := 60 / spec.BPM
	m := &Machine{
		lane:     spec.Lane,
		start:    spec.Start,
		end:      spec.Start + timeline.Duration(spec.Beats*secondsPerBeat),
		interval: timeline.Duration(SegmentBeats * secondsPerBeat),
		windows:  windows,
		reporter: reporter,
		log:      log,
		released: make([]bool, Segments(spec.Beats)),
	}
	log.Debug("hold created",
		"lane", m.lane, "start", m.start, "end", m.end,
		"interval", m.interval, "segments", len(m.released))
	return m
}

func (m *Machine) Lane() int                { return m.lane }
func (m *Machine) Start() time.Duration     { return m.start }
func (m *Machine) End() time.Duration       { return m.end }
func (m *Machine) Interval() time.Duration  { return m.interval }
func (m *Machine) State() State             { return m.state }
func (m *Machine) HasStarted() bool         { return m.hasStarted }
func (m *Machine) StartJudged() bool        { return m.startJudged }
func (m *Machine) StartResult() game.Result { return m.startResult }
func (m *Machine) Segments() int            { return len(m.released) }
func (m *Machine) Cursor() int              { return m.cursor }
func (m *Machine) Done() bool               { return m.state == Completed }

// Due is when segment k is judged.
func (m *Machine) Due(k int) time.Duration {
	return m.start + time.Duration(k+1)*m.interval
}

// SegmentReleased reports whether the key was let go during segment k.
func (m *Machine) SegmentReleased(k int) bool {
	return m.released[k]
}

// Press applies a press edge at t. The caller brings the machine up to t with
// Update first.
func (m *Machine) Press(t time.Duration) {
	switch {
	case m.state == Completed:
		return
	case !m.startJudged:
		result, timing := m.windows.Judge(t - m.start)
		if result == game.None {
			m.log.Debug("hold press outside start window", "lane", m.lane, "at", t, "start", m.start)
			return
		}
		m.startJudged = true
		m.startResult = result
		m.begin()
		m.reporter.Report(game.Event{
			Kind:    game.HoldStartEvent,
			Result:  result,
			Timing:  timing,
			Lane:    m.lane,
			Time:    t,
			HitTime: m.start,
			Segment: -1,
		})
		m.log.Debug("hold started", "lane", m.lane, "at", t, "result", result)
	case !m.hasStarted:
		// The start already timed out. Segments that went by unheld stay missed.
		m.begin()
		for i := 0; i < m.cursor; i++ {
			m.released[i] = true
		}
		m.log.Debug("hold started late", "lane", m.lane, "at", t, "missed", m.cursor)
	case m.state == Released:
		m.state = Perfect
		m.log.Debug("hold recovered", "lane", m.lane, "at", t)
	}
}

// Release applies a release edge at t.
func (m *Machine) Release(t time.Duration) {
	if !m.hasStarted || m.state == Completed {
		return
	}
	if m.cursor < len(m.released) {
		m.released[m.cursor] = true
	}
	m.state = Released
	m.log.Debug("hold released", "lane", m.lane, "at", t, "segment", m.cursor)
}

func (m *Machine) begin() {
	m.hasStarted = true
	m.state = Perfect
}

// Update resolves the start timeout, every segment due by now and completion.
// pressed is the lane state since the previous call.
func (m *Machine) Update(now time.Duration, pressed bool) {
	if m.state == Completed {
		return
	}

	if !m.startJudged && now > m.start+m.windows.Miss() {
		m.startJudged = true
		m.startResult = game.Miss
		m.reporter.Report(game.Event{
			Kind:    game.HoldStartEvent,
			Result:  game.Miss,
			Lane:    m.lane,
			Time:    now,
			HitTime: m.start,
			Segment: -1,
		})
		m.log.Debug("hold start missed", "lane", m.lane, "at", now)
	}

	for m.cursor < len(m.released) && now >= m.Due(m.cursor) {
		k := m.cursor
		result := game.Miss
		if m.hasStarted && pressed && !m.released[k] {
			result = game.Perfect
		}
		m.cursor++
		m.reporter.Report(game.Event{
			Kind:    game.HoldSegmentEvent,
			Result:  result,
			Lane:    m.lane,
			Time:    now,
			HitTime: m.Due(k),
			Segment: k,
		})
		m.log.Debug("hold segment",
			"lane", m.lane, "segment", k, "of", len(m.released), "result", result,
			"started", m.hasStarted, "pressed", pressed, "released", m.released[k])
	}

	if (m.hasStarted && now >= m.end) || (!m.hasStarted && now > m.end+m.windows.Miss()) {
		m.state = Completed
		m.log.Debug("hold completed", "lane", m.lane, "at", now, "started", m.hasStarted)
	}
}
