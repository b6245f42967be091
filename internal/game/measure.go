package game

import (
	"encoding/json"
	"fmt"
	"time"
)

type TimeSignature struct {
	Numerator   int
	Denominator int
}

// BeatsPerMeasure is the measure length in quarter notes.
func (ts TimeSignature) BeatsPerMeasure() float64 {
	return float64(ts.Numerator) * (4 / float64(ts.Denominator))
}

func (ts TimeSignature) String() string {
	return fmt.Sprintf("%d/%d", ts.Numerator, ts.Denominator)
}

type TimingPoint struct {
	Measure       int           `json:"measure"`
	Beat          float64       `json:"beat"`
	BPM           float64       `json:"bpm"`
	TimeSignature TimeSignature `json:"timeSignature"`
}

// Measure is a bar line that has entered the look-ahead window.
type Measure struct {
	Number int           // The chart measure starting here
	Time   time.Duration // The time the measure starts
}

// MarshalJSON writes the signature as a [numerator, denominator] pair.
func (ts TimeSignature) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{ts.Numerator, ts.Denominator})
}

func (ts *TimeSignature) UnmarshalJSON(data []byte) error {
	var pair []int
	if err := json.Unmarshal(data, &pair); nil != err {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("time signature needs 2 values, got %d", len(pair))
	}
	ts.Numerator, ts.Denominator = pair[0], pair[1]
	return nil
}
