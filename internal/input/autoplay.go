package input

import (
	"math/rand"
	"sort"
	"time"

	"github.com/matsuokaju/rhythm-game/internal/game"
	"github.com/matsuokaju/rhythm-game/internal/timeline"
)

// TapLength is how long autoplay keeps a tap pressed.
const TapLength = 50 * time.Millisecond

// Target is one note as autoplay sees it.
type Target struct {
	Lane  int
	Start time.Duration
	End   time.Duration // Release time for holds, Start for taps
	Hold  bool
}

// Plan lists the playable notes of chart in chart order. Hold lengths use
// the tempo at activation, one look-ahead before the note, the same way the
// session measures them.
func Plan(chart *game.Chart, tl *timeline.Timeline, offset, lookAhead time.Duration) []Target {
	plan := []Target{}
	for _, n := range chart.Notes {
		if !game.ValidLane(n.Lane) {
			continue
		}
		start := timeline.Duration(tl.TimeAt(tl.BeatsAt(n.Measure, n.Beat))) + offset
		target := Target{Lane: n.Lane, Start: start, End: start}
		if n.IsHold() && n.Duration > 0 {
			bpm, _ := tl.TempoAt((start - lookAhead).Seconds())
			target.End = start + timeline.Duration(n.Duration*60/bpm)
			target.Hold = true
		}
		plan = append(plan, target)
	}
	sort.SliceStable(plan, func(i, j int) bool {
		return plan[i].Start < plan[j].Start
	})
	return plan
}

// Autoplay turns a plan into edges ordered by time. Each press lands up to
// jitter either side of its note; releases never cross the next press in
// the lane.
func Autoplay(plan []Target, jitter time.Duration, r *rand.Rand) []game.Edge {
	lanes := make([][]Target, game.Lanes)
	for _, t := range plan {
		if game.ValidLane(t.Lane) {
			lanes[t.Lane] = append(lanes[t.Lane], t)
		}
	}

	offset := func() time.Duration {
		if jitter <= 0 {
			return 0
		}
		return time.Duration(r.Int63n(int64(2*jitter)+1)) - jitter
	}

	edges := []game.Edge{}
	for lane, targets := range lanes {
		presses := make([]time.Duration, len(targets))
		for i, t := range targets {
			presses[i] = t.Start + offset()
		}

		free := time.Duration(-1 << 62)
		for i, t := range targets {
			press := presses[i]
			if press <= free {
				press = free + 1
			}
			release := press + TapLength
			if t.Hold {
				release = t.End
				if release <= press {
					release = press + 1
				}
			}
			if i+1 < len(targets) && release >= presses[i+1] {
				release = press + (presses[i+1]-press)/2
				if release <= press {
					release = press + 1
				}
			}
			edges = append(edges,
				game.Edge{Lane: lane, Pressed: true, Time: press},
				game.Edge{Lane: lane, Pressed: false, Time: release},
			)
			free = release
		}
	}

	sort.SliceStable(edges, func(i, j int) bool {
		return edges[i].Time < edges[j].Time
	})
	return edges
}
