package judge

import (
	"log/slog"
	"time"

	"github.com/matsuokaju/rhythm-game/internal/game"
	"github.com/matsuokaju/rhythm-game/internal/schedule"
)

// Engine judges tap notes. Hold notes in the active set are left to their
// own state machines.
type Engine struct {
	active   *schedule.Active
	windows  game.Windows
	reporter game.Reporter
	log      *slog.Logger
}

func New(active *schedule.Active, windows game.Windows, reporter game.Reporter, log *slog.Logger) *Engine {
	if nil == log {
		log = slog.Default()
	}
	return &Engine{
		active:   active,
		windows:  windows,
		reporter: reporter,
		log:      log,
	}
}

// OnPress judges the earliest live tap in lane that t falls within the miss
// window of. It returns false when no note was judged.
func (e *Engine) OnPress(lane int, t time.Duration) bool {
	for _, n := range e.active.Lane(lane, game.Tap) {
		result, timing := e.windows.Judge(t - n.HitTime)
		if result == game.None {
			continue
		}
		e.active.Remove(n)
		e.reporter.Report(game.Event{
			Kind:    game.TapEvent,
			Result:  result,
			Timing:  timing,
			Lane:    lane,
			Time:    t,
			HitTime: n.HitTime,
			Segment: -1,
		})
		e.log.Debug("tap judged", "lane", lane, "at", t, "hitTime", n.HitTime, "result", result, "timing", timing)
		return true
	}
	e.log.Debug("press unhandled", "lane", lane, "at", t)
	return false
}

// SweepMisses resolves every tap that can no longer be hit at now.
func (e *Engine) SweepMisses(now time.Duration) int {
	missed := 0
	for _, n := range e.active.Snapshot() {
		if n.Type != game.Tap || now-n.HitTime <= e.windows.Miss() {
			continue
		}
		e.active.Remove(n)
		e.reporter.Report(game.Event{
			Kind:    game.TapEvent,
			Result:  game.Miss,
			Lane:    n.Lane,
			Time:    now,
			HitTime: n.HitTime,
			Segment: -1,
		})
		missed++
		e.log.Debug("tap missed", "lane", n.Lane, "at", now, "hitTime", n.HitTime)
	}
	return missed
}
