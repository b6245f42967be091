package score

import (
	"time"

	"github.com/matsuokaju/rhythm-game/internal/game"
)

type Store interface {
	Init(path string) error
	Deinit()

	// Save the result of this performance
	Save(chart *game.Chart, state State, accuracy float64) error

	// Load up previous results for the chart, oldest first
	Load(chart *game.Chart) ([]History, error)
}

type Counts struct {
	Perfect int
	Good    int
	Bad     int
	Miss    int
}

func (c Counts) Total() int {
	return c.Perfect + c.Good + c.Bad + c.Miss
}

// State is a snapshot of the running score.
type State struct {
	Score    int64
	Combo    int
	MaxCombo int
	Tap      Counts // Taps and hold starts
	Hold     Counts // Hold segments, Perfect or Miss only
}

type History struct {
	ID       int64
	Run      string // Unique id of the play
	Sum      string
	Played   time.Time
	Accuracy float64
	State    State
}
