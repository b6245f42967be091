package testdata

import (
	_ "embed"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/matsuokaju/rhythm-game/internal/game"
)

//go:embed chart.json
var data []byte

//go:embed song.sm
var stepfile []byte

// GetChart decodes the sample chart. Notes are in chart order.
func GetChart() (*game.Chart, error) {
	var chart game.Chart
	if err := json.Unmarshal(data, &chart); nil != err {
		return nil, err
	}
	chart.Count()
	return &chart, nil
}

// WriteChart writes the sample chart into dir and returns its path.
func WriteChart(dir string) (string, error) {
	return write(dir, "chart.json", data)
}

// WriteStepfile writes the sample StepMania file into dir and returns its path.
func WriteStepfile(dir string) (string, error) {
	return write(dir, "song.sm", stepfile)
}

func write(dir, name string, content []byte) (string, error) {
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, content, 0o644); nil != err {
		return "", err
	}
	return p, nil
}
