package input

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/eiannone/keyboard"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/matsuokaju/rhythm-game/internal/game"
	"github.com/matsuokaju/rhythm-game/internal/testdata"
	"github.com/matsuokaju/rhythm-game/internal/timeline"
)

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}

func TestLanes(t *testing.T) {
	lanes, err := Lanes("sdfjkl")
	if nil != err {
		t.Fatal(err)
	}
	for i, r := range "sdfjkl" {
		if lanes[r] != i {
			t.Errorf("%q on lane %d, expected %d", r, lanes[r], i)
		}
	}
	for _, keys := range []string{"sdf", "sdfjklm", "sdfjks"} {
		if _, err := Lanes(keys); nil == err {
			t.Errorf("%q: expected an error", keys)
		}
	}
}

func TestEvdevKeymap(t *testing.T) {
	keymap, err := EvdevKeymap("sdfjkl")
	if nil != err {
		t.Fatal(err)
	}
	expected := map[uint16]int{31: 0, 32: 1, 33: 2, 36: 3, 37: 4, 38: 5}
	for code, lane := range expected {
		if keymap[code] != lane {
			t.Errorf("code %d on lane %d, expected %d", code, keymap[code], lane)
		}
	}
	if _, err := EvdevKeymap("sdfjk1"); nil == err {
		t.Error("expected an error for a key without a code")
	}
}

func TestSongClock(t *testing.T) {
	origin := time.Unix(100, 0)
	clock := SongClock(origin, ms(4000))
	if at := clock(origin.Add(ms(250))); at != ms(4250) {
		t.Errorf("got %v, expected 4.25s", at)
	}
}

func TestKeyboardForward(t *testing.T) {
	k, err := NewKeyboard("sdfjkl", func(time.Time) time.Duration { return ms(1234) })
	if nil != err {
		t.Fatal(err)
	}
	keys := make(chan keyboard.KeyEvent, 4)
	out := make(chan game.Edge, 8)
	keys <- keyboard.KeyEvent{Rune: 'j'}
	keys <- keyboard.KeyEvent{Rune: 'x'}
	keys <- keyboard.KeyEvent{Key: keyboard.KeyEsc}

	if err := k.forward(context.Background(), keys, out); !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected escape to cancel, got %v", err)
	}
	close(out)
	edges := []game.Edge{}
	for e := range out {
		edges = append(edges, e)
	}
	if len(edges) != 2 {
		t.Fatalf("expected a press and a release, got %+v", edges)
	}
	if edges[0] != (game.Edge{Lane: 3, Pressed: true, Time: ms(1234)}) || edges[1].Pressed || edges[1].Lane != 3 {
		t.Errorf("unexpected edges %+v", edges)
	}
}

func TestKeyboardStopsWithContext(t *testing.T) {
	k, _ := NewKeyboard("sdfjkl", func(time.Time) time.Duration { return 0 })
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := k.forward(ctx, make(chan keyboard.KeyEvent), make(chan game.Edge))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestPlan(t *testing.T) {
	chart, err := testdata.GetChart()
	if nil != err {
		t.Fatal(err)
	}
	tl, err := timeline.New(chart.TimingPoints, chart.LeadInMeasures())
	if nil != err {
		t.Fatal(err)
	}
	plan := Plan(chart, tl, ms(10), 2*time.Second)
	if len(plan) != len(chart.Notes) {
		t.Fatalf("expected %d targets, got %d", len(chart.Notes), len(plan))
	}
	if plan[0].Start != ms(2010) || plan[0].Hold {
		t.Errorf("unexpected first target %+v", plan[0])
	}
	holds := 0
	for i, target := range plan {
		if i > 0 && target.Start < plan[i-1].Start {
			t.Errorf("target %d out of order", i)
		}
		if target.Hold {
			holds++
			if target.End <= target.Start {
				t.Errorf("hold %d ends at %v before it starts", i, target.End)
			}
		}
	}
	if holds != 6 {
		t.Errorf("expected 6 holds, got %d", holds)
	}
	// The measure 2 hold lasts 2 beats at 120bpm.
	for _, target := range plan {
		if target.Hold && target.Start == ms(4010) && target.End != ms(5010) {
			t.Errorf("unexpected hold %+v", target)
		}
	}
}

func TestAutoplayExact(t *testing.T) {
	plan := []Target{
		{Lane: 0, Start: ms(1000), End: ms(1000)},
		{Lane: 0, Start: ms(1040), End: ms(1040)},
		{Lane: 2, Start: ms(1000), End: ms(2000), Hold: true},
	}
	edges := Autoplay(plan, 0, rand.New(rand.NewSource(1)))
	expected := []game.Edge{
		{Lane: 0, Pressed: true, Time: ms(1000)},
		{Lane: 2, Pressed: true, Time: ms(1000)},
		{Lane: 0, Pressed: false, Time: ms(1020)},
		{Lane: 0, Pressed: true, Time: ms(1040)},
		{Lane: 0, Pressed: false, Time: ms(1090)},
		{Lane: 2, Pressed: false, Time: ms(2000)},
	}
	if len(edges) != len(expected) {
		t.Fatalf("got %+v", edges)
	}
	for i := range expected {
		if edges[i] != expected[i] {
			t.Errorf("edge %d is %+v, expected %+v", i, edges[i], expected[i])
		}
	}
}

func TestAutoplayProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("edges alternate per lane and stay within jitter", prop.ForAll(
		func(starts []int, lanes []int, jitter int, seed int64) bool {
			plan := []Target{}
			for i := range starts {
				plan = append(plan, Target{Lane: lanes[i], Start: ms(starts[i]), End: ms(starts[i])})
			}
			edges := Autoplay(plan, ms(jitter), rand.New(rand.NewSource(seed)))
			if len(edges) != 2*len(plan) {
				return false
			}

			pressed := [game.Lanes]bool{}
			last := [game.Lanes]time.Duration{}
			for i, e := range edges {
				if i > 0 && e.Time < edges[i-1].Time {
					return false
				}
				if pressed[e.Lane] == e.Pressed || (e.Pressed && i > 0 && e.Time <= last[e.Lane] && last[e.Lane] != 0) {
					return false
				}
				pressed[e.Lane] = e.Pressed
				last[e.Lane] = e.Time
			}
			return true
		},
		gen.SliceOfN(20, gen.IntRange(0, 3000)),
		gen.SliceOfN(20, gen.IntRange(0, game.Lanes-1)),
		gen.IntRange(0, 100),
		gen.Int64(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
