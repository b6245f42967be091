package score

import "github.com/matsuokaju/rhythm-game/internal/game"

var tierValues = map[game.Result]int64{
	game.Perfect: 300,
	game.Good:    200,
	game.Bad:     50,
	game.Miss:    0,
}

// Accumulator folds judgments into a score. Nothing it holds is read back by
// the judging code.
type Accumulator struct {
	state State
}

func (a *Accumulator) AddJudgment(result game.Result, isHold bool) {
	if isHold {
		a.addHold(result)
		return
	}
	switch result {
	case game.Perfect:
		a.state.Tap.Perfect++
	case game.Good:
		a.state.Tap.Good++
	case game.Bad:
		a.state.Tap.Bad++
	case game.Miss:
		a.state.Tap.Miss++
	default:
		return
	}
	a.fold(result)
}

// Holds have no Good or Bad tier.
func (a *Accumulator) addHold(result game.Result) {
	switch result {
	case game.Perfect:
		a.state.Hold.Perfect++
	case game.Miss:
		a.state.Hold.Miss++
	default:
		return
	}
	a.fold(result)
}

func (a *Accumulator) fold(result game.Result) {
	a.state.Score += tierValues[result]
	if result == game.Perfect || result == game.Good {
		a.state.Combo++
		if a.state.Combo > a.state.MaxCombo {
			a.state.MaxCombo = a.state.Combo
		}
	} else {
		a.state.Combo = 0
	}
}

// Report adds a judgment event, hold segments counting as holds.
func (a *Accumulator) Report(ev game.Event) {
	a.AddJudgment(ev.Result, ev.Kind == game.HoldSegmentEvent)
}

func (a *Accumulator) State() State {
	return a.state
}

// Accuracy is the share of Perfect and Good judgments, 0 before any.
func (a *Accumulator) Accuracy() float64 {
	total := a.state.Tap.Total() + a.state.Hold.Total()
	if total == 0 {
		return 0
	}
	return float64(a.state.Tap.Perfect+a.state.Tap.Good+a.state.Hold.Perfect) / float64(total)
}

func (a *Accumulator) TapAccuracy() float64 {
	if a.state.Tap.Total() == 0 {
		return 0
	}
	return float64(a.state.Tap.Perfect+a.state.Tap.Good) / float64(a.state.Tap.Total())
}

func (a *Accumulator) HoldAccuracy() float64 {
	if a.state.Hold.Total() == 0 {
		return 0
	}
	return float64(a.state.Hold.Perfect) / float64(a.state.Hold.Total())
}

func (a *Accumulator) Reset() {
	a.state = State{}
}
