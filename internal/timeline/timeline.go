package timeline

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/matsuokaju/rhythm-game/internal/game"
)

// ErrConfiguration is matched by every timing point validation failure.
var ErrConfiguration = errors.New("invalid chart timing")

type ConfigurationError struct {
	Index  int // Offending timing point, -1 when the list itself is at fault
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%v: %s", ErrConfiguration, e.Reason)
	}
	return fmt.Sprintf("%v: timing point %d: %s", ErrConfiguration, e.Index, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

// Timeline converts between chart positions and song seconds over
// piecewise-constant tempo and meter segments. Song time zero is the start of
// the lead-in; beat zero lands at LeadInTime().
type Timeline struct {
	points  []game.TimingPoint
	beats   []float64 // Absolute beat of each point
	seconds []float64 // Seconds from beat zero to each point
	leadIn  float64
}

func New(points []game.TimingPoint, leadInMeasures int) (*Timeline, error) {
	if err := validate(points); nil != err {
		return nil, err
	}
	if leadInMeasures <= 0 {
		leadInMeasures = 1
	}

	t := &Timeline{
		points:  append([]game.TimingPoint(nil), points...),
		beats:   make([]float64, len(points)),
		seconds: make([]float64, len(points)),
	}
	for i, p := range t.points {
		t.beats[i] = t.BeatsAt(p.Measure, p.Beat)
		if length := t.BeatsAt(p.Measure+1, 0) - t.BeatsAt(p.Measure, 0); p.Beat >= length {
			return nil, &ConfigurationError{Index: i, Reason: fmt.Sprintf("beat %v overruns measure %d", p.Beat, p.Measure)}
		}
		if i > 0 && t.beats[i] <= t.beats[i-1] {
			return nil, &ConfigurationError{Index: i, Reason: fmt.Sprintf("position %d:%v repeats absolute beat %v", p.Measure, p.Beat, t.beats[i])}
		}
	}
	for i := 1; i < len(t.points); i++ {
		t.seconds[i] = t.seconds[i-1] + (t.beats[i]-t.beats[i-1])*secondsPerBeat(t.points[i-1].BPM)
	}

	first := t.points[0]
	t.leadIn = float64(leadInMeasures) * first.TimeSignature.BeatsPerMeasure() * secondsPerBeat(first.BPM)
	return t, nil
}

func validate(points []game.TimingPoint) error {
	if len(points) == 0 {
		return &ConfigurationError{Index: -1, Reason: "no timing points"}
	}
	origin := false
	for i, p := range points {
		if p.Measure < 1 || !(p.Beat >= 0) {
			return &ConfigurationError{Index: i, Reason: fmt.Sprintf("position %d:%v is before the chart start", p.Measure, p.Beat)}
		}
		if !(p.BPM > 0) || math.IsInf(p.BPM, 0) {
			return &ConfigurationError{Index: i, Reason: fmt.Sprintf("bpm %v must be positive", p.BPM)}
		}
		if p.TimeSignature.Numerator <= 0 || p.TimeSignature.Denominator <= 0 {
			return &ConfigurationError{Index: i, Reason: fmt.Sprintf("time signature %v must be positive", p.TimeSignature)}
		}
		if p.Measure == 1 && p.Beat == 0 {
			origin = true
		}
		if i == 0 {
			continue
		}
		prev := points[i-1]
		if prev.Measure == p.Measure && prev.Beat == p.Beat {
			return &ConfigurationError{Index: i, Reason: fmt.Sprintf("duplicate position %d:%v", p.Measure, p.Beat)}
		}
		if p.Measure < prev.Measure || (p.Measure == prev.Measure && p.Beat < prev.Beat) {
			return &ConfigurationError{Index: i, Reason: "timing points are not sorted"}
		}
	}
	if !origin {
		return &ConfigurationError{Index: -1, Reason: "missing timing point at measure 1 beat 0"}
	}
	return nil
}

func secondsPerBeat(bpm float64) float64 {
	return 60 / bpm
}

// Duration converts seconds to the nearest nanosecond.
func Duration(seconds float64) time.Duration {
	return time.Duration(math.Round(seconds * float64(time.Second)))
}

func (t *Timeline) Points() []game.TimingPoint {
	return t.points
}

// BeatsAt returns the absolute beat, in quarter notes from the start of
// measure 1, of the given position.
func (t *Timeline) BeatsAt(measure int, beat float64) float64 {
	total := 0.0
	idx := 0
	ts := t.points[0].TimeSignature
	for m := 1; m < measure; m++ {
		for idx < len(t.points) && t.points[idx].Measure <= m {
			if t.points[idx].Measure == m && t.points[idx].Beat > 0 {
				break
			}
			ts = t.points[idx].TimeSignature
			idx++
		}
		total += ts.BeatsPerMeasure()
	}
	return total + beat
}

// TimeAt returns the song time in seconds of an absolute beat, lead-in included.
func (t *Timeline) TimeAt(absBeat float64) float64 {
	i := t.segment(absBeat)
	return t.leadIn + t.seconds[i] + (absBeat-t.beats[i])*secondsPerBeat(t.points[i].BPM)
}

// segment is the last point at or before absBeat, the first point otherwise.
func (t *Timeline) segment(absBeat float64) int {
	i := 0
	for j := 1; j < len(t.points) && t.beats[j] <= absBeat; j++ {
		i = j
	}
	return i
}

func (t *Timeline) LeadInTime() float64 {
	return t.leadIn
}

// TempoAt returns the bpm and meter in effect at songTime.
// During the lead-in the first point applies.
func (t *Timeline) TempoAt(songTime float64) (float64, game.TimeSignature) {
	adjusted := songTime - t.leadIn
	sel := 0
	for i := range t.points {
		if t.seconds[i] > adjusted {
			break
		}
		sel = i
	}
	p := t.points[sel]
	return p.BPM, p.TimeSignature
}

// MeasureStartTime is the song time in seconds at which measure starts.
func (t *Timeline) MeasureStartTime(measure int) float64 {
	return t.TimeAt(t.BeatsAt(measure, 0))
}

// HitTime is the song time of a chart position.
func (t *Timeline) HitTime(measure int, beat float64) time.Duration {
	return Duration(t.TimeAt(t.BeatsAt(measure, beat)))
}
