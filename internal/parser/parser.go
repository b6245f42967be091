package parser

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/matsuokaju/rhythm-game/internal/game"
	"github.com/matsuokaju/rhythm-game/internal/timeline"
)

type Parser interface {
	// Parse returns every playable chart in file.
	Parse(file string) ([]*game.Chart, error)
}

// ForFile picks a parser by file extension.
func ForFile(file string) (Parser, error) {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".json":
		return &JSONParser{}, nil
	case ".sm":
		return &SMParser{}, nil
	}
	return nil, fmt.Errorf("no parser for %s", file)
}

// finish sorts notes into chart order, refreshes the counters and checks the
// timing points.
func finish(c *game.Chart) error {
	sort.SliceStable(c.Notes, func(i, j int) bool {
		return c.Notes[i].Before(c.Notes[j])
	})
	c.Count()
	_, err := timeline.New(c.TimingPoints, c.LeadInMeasures())
	return err
}
