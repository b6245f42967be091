package judge

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/matsuokaju/rhythm-game/internal/game"
	"github.com/matsuokaju/rhythm-game/internal/schedule"
)

type recorder struct {
	events []game.Event
}

func (r *recorder) Report(ev game.Event) {
	r.events = append(r.events, ev)
}

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}

func note(hit, lane int, t game.NoteType) *schedule.ActiveNote {
	return &schedule.ActiveNote{Key: schedule.Key{HitTime: ms(hit), Lane: lane, Type: t}}
}

func newEngine(notes ...*schedule.ActiveNote) (*Engine, *schedule.Active, *recorder) {
	active := schedule.NewActive()
	for _, n := range notes {
		active.Add(n)
	}
	r := &recorder{}
	return New(active, game.DefaultWindows, r, nil), active, r
}

var pressTests = map[time.Duration]struct {
	result game.Result
	timing game.Timing
}{
	0:              {game.Perfect, game.OnTime},
	ms(-33):        {game.Perfect, game.OnTime},
	ms(33):         {game.Perfect, game.OnTime},
	ms(-40):        {game.Good, game.Fast},
	ms(60):         {game.Good, game.Late},
	ms(-100):       {game.Bad, game.Fast},
	ms(90):         {game.Bad, game.Late},
	ms(-150):       {game.Miss, game.Fast},
	ms(200):        {game.Miss, game.Late},
	ms(67) + 1:     {game.Bad, game.Late},
	-ms(100) - 1:   {game.Miss, game.Fast},
	ms(33) + 330e3: {game.Perfect, game.OnTime},
}

func TestOnPressTiers(t *testing.T) {
	for diff, expected := range pressTests {
		e, active, r := newEngine(note(1000, 2, game.Tap))
		if !e.OnPress(2, ms(1000)+diff) {
			t.Errorf("%v: press unhandled", diff)
			continue
		}
		ev := r.events[0]
		if ev.Result != expected.result || ev.Timing != expected.timing {
			t.Errorf("%v: got %v %q, expected %v %q", diff, ev.Result, ev.Timing, expected.result, expected.timing)
		}
		if ev.Kind != game.TapEvent || ev.HitTime != ms(1000) || ev.IsHold() {
			t.Errorf("%v: unexpected event %+v", diff, ev)
		}
		if active.Len() != 0 {
			t.Errorf("%v: judged note still active", diff)
		}
	}
}

func TestOnPressOutsideWindow(t *testing.T) {
	e, active, r := newEngine(note(1000, 2, game.Tap))
	for _, at := range []time.Duration{ms(799), ms(1201)} {
		if e.OnPress(2, at) {
			t.Errorf("press at %v should be unhandled", at)
		}
	}
	if e.OnPress(3, ms(1000)) {
		t.Error("a press in another lane was handled")
	}
	if active.Len() != 1 || len(r.events) != 0 {
		t.Error("an unhandled press must not touch the note")
	}
}

func TestOnPressEarliestFirst(t *testing.T) {
	first := note(1000, 0, game.Tap)
	second := note(1150, 0, game.Tap)
	e, active, r := newEngine(second, first)

	// Nearer to the second note, but the first is still judgeable.
	if !e.OnPress(0, ms(1140)) {
		t.Fatal("press unhandled")
	}
	if r.events[0].HitTime != ms(1000) || r.events[0].Result != game.Miss || r.events[0].Timing != game.Late {
		t.Errorf("expected a late miss on the first note, got %+v", r.events[0])
	}
	if !active.Contains(second.Key) {
		t.Error("the second note should still be live")
	}
}

func TestHoldsIgnored(t *testing.T) {
	e, active, r := newEngine(note(1000, 0, game.Hold))
	if e.OnPress(0, ms(1000)) {
		t.Error("a hold was judged as a tap")
	}
	e.SweepMisses(time.Hour)
	if active.Len() != 1 || len(r.events) != 0 {
		t.Error("holds belong to their state machine")
	}
}

func TestSweepMisses(t *testing.T) {
	e, active, r := newEngine(note(1000, 0, game.Tap), note(1100, 1, game.Tap))

	if n := e.SweepMisses(ms(1200)); n != 0 {
		t.Errorf("swept %d notes at exactly the miss window", n)
	}
	if n := e.SweepMisses(ms(1201)); n != 1 {
		t.Errorf("expected one miss, got %d", n)
	}
	if n := e.SweepMisses(ms(1201)); n != 0 {
		t.Errorf("a note was swept twice")
	}
	if n := e.SweepMisses(ms(2000)); n != 1 {
		t.Errorf("expected the second miss, got %d", n)
	}

	if len(r.events) != 2 || active.Len() != 0 {
		t.Fatalf("expected 2 misses and an empty set, got %d events, %d live", len(r.events), active.Len())
	}
	for _, ev := range r.events {
		if ev.Result != game.Miss || ev.Timing != game.OnTime {
			t.Errorf("sweeps carry no timing, got %+v", ev)
		}
	}
}

func TestPressProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 500

	properties := gopter.NewProperties(parameters)
	w := game.DefaultWindows

	properties.Property("presses are judged on the tier their offset falls in", prop.ForAll(
		func(offset int64) bool {
			e, active, r := newEngine(note(1000, 4, game.Tap))
			diff := time.Duration(offset)
			handled := e.OnPress(4, ms(1000)+diff)

			d := diff
			if d < 0 {
				d = -d
			}
			if d > w.Miss() {
				return !handled && active.Len() == 1 && len(r.events) == 0
			}
			if !handled || len(r.events) != 1 {
				return false
			}
			ev := r.events[0]
			switch {
			case d <= w[0].Time:
				return ev.Result == game.Perfect && ev.Timing == game.OnTime
			case d <= w[1].Time:
				if ev.Result != game.Good {
					return false
				}
			case d <= w[2].Time:
				if ev.Result != game.Bad {
					return false
				}
			default:
				if ev.Result != game.Miss {
					return false
				}
			}
			if diff < 0 {
				return ev.Timing == game.Fast
			}
			return ev.Timing == game.Late
		},
		gen.Int64Range(-int64(300*time.Millisecond), int64(300*time.Millisecond)),
	))

	properties.Property("an unpressed tap is missed once, never early", prop.ForAll(
		func(hit int, step int) bool {
			e, _, r := newEngine(note(hit, 0, game.Tap))
			for now := time.Duration(0); now < ms(hit)+time.Second; now += ms(step) {
				e.SweepMisses(now)
				if len(r.events) == 1 && now-ms(hit) <= w.Miss() {
					return false
				}
			}
			return len(r.events) == 1
		},
		gen.IntRange(0, 5000),
		gen.IntRange(1, 50),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
