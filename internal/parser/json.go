package parser

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/matsuokaju/rhythm-game/internal/game"
)

// JSONParser reads a single chart in the songInfo/timingPoints/notes format.
type JSONParser struct{}

func (p *JSONParser) Parse(file string) ([]*game.Chart, error) {
	data, err := os.ReadFile(file)
	if nil != err {
		return nil, err
	}

	chart := game.Chart{
		SongInfo: game.SongInfo{
			Title:         "Unknown",
			Artist:        "Unknown",
			Volume:        1,
			Difficulty:    "Normal",
			Level:         1,
			EmptyMeasures: 1,
		},
	}
	if err := json.Unmarshal(data, &chart); nil != err {
		return nil, fmt.Errorf("unable to decode %s: %w", file, err)
	}

	for i := range chart.TimingPoints {
		if chart.TimingPoints[i].TimeSignature == (game.TimeSignature{}) {
			chart.TimingPoints[i].TimeSignature = game.TimeSignature{Numerator: 4, Denominator: 4}
		}
	}
	for i, n := range chart.Notes {
		if nil == n {
			return nil, fmt.Errorf("%s: note %d is empty", file, i)
		}
		switch n.Type {
		case "":
			n.Type = game.Tap
		case game.Tap, game.Hold:
		default:
			return nil, fmt.Errorf("%s: note %d has unknown type %q", file, i, n.Type)
		}
	}

	if err := finish(&chart); nil != err {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return []*game.Chart{&chart}, nil
}
