package game

import "time"

type EventKind int

const (
	TapEvent EventKind = iota
	HoldStartEvent
	HoldSegmentEvent
)

// Event is a rendered judgment.
type Event struct {
	Kind    EventKind
	Result  Result
	Timing  Timing // Empty for Perfect and for sweeps
	Lane    int
	Time    time.Duration // When the judgment was made
	HitTime time.Duration // The note (or segment) target time
	Segment int           // Hold segment index, -1 otherwise
}

func (e Event) IsHold() bool {
	return e.Kind != TapEvent
}

// Reporter receives every judgment exactly once.
type Reporter interface {
	Report(ev Event)
}

// Edge is one observed lane state change.
type Edge struct {
	Lane    int
	Pressed bool
	Time    time.Duration
}
