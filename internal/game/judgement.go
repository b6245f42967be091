package game

import (
	"fmt"
	"time"
)

type Result int

const (
	None Result = iota
	Perfect
	Good
	Bad
	Miss
)

func (r Result) String() string {
	switch r {
	case Perfect:
		return "PERFECT"
	case Good:
		return "GOOD"
	case Bad:
		return "BAD"
	case Miss:
		return "MISS"
	}
	return "NONE"
}

type Timing string

const (
	OnTime Timing = ""
	Fast   Timing = "FAST"
	Late   Timing = "LATE"
)

// Judgement is one tolerance window, inclusive of its bound.
type Judgement struct {
	Result Result
	Time   time.Duration
	Name   string
}

// Windows holds the Perfect, Good, Bad and Miss windows in that order.
type Windows [4]Judgement

// DefaultWindows are 33.33ms, 66.67ms, 100ms and 200ms.
var DefaultWindows = NewWindows(
	33330*time.Microsecond,
	66670*time.Microsecond,
	100*time.Millisecond,
	200*time.Millisecond,
)

func NewWindows(perfect, good, bad, miss time.Duration) Windows {
	return Windows{
		{Result: Perfect, Time: perfect, Name: "Perfect"},
		{Result: Good, Time: good, Name: "Good"},
		{Result: Bad, Time: bad, Name: "Bad"},
		{Result: Miss, Time: miss, Name: "Miss"},
	}
}

func (w Windows) Validate() error {
	prev := time.Duration(0)
	for _, j := range w {
		if j.Time <= prev {
			return fmt.Errorf("judgement window %s (%v) must be greater than %v", j.Name, j.Time, prev)
		}
		prev = j.Time
	}
	return nil
}

// Miss is the outermost window; nothing further from a note is judged.
func (w Windows) Miss() time.Duration {
	return w[len(w)-1].Time
}

// Judge classifies diff, the event time minus the hit time.
// Outside every window it returns None.
func (w Windows) Judge(diff time.Duration) (Result, Timing) {
	d := abs(diff)
	for _, j := range w {
		if d <= j.Time {
			return j.Result, timingOf(j.Result, diff)
		}
	}
	return None, OnTime
}

func timingOf(r Result, diff time.Duration) Timing {
	switch {
	case r == Perfect:
		return OnTime
	case diff < 0:
		return Fast
	case diff > 0:
		return Late
	}
	return OnTime
}

func abs(x time.Duration) time.Duration {
	if x < 0 {
		return -x
	}
	return x
}
