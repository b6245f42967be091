package theme

import (
	"strings"
	"testing"

	"github.com/matsuokaju/rhythm-game/internal/game"
)

func TestRenderJudgement(t *testing.T) {
	var th Theme = &DefaultTheme{}
	if s := th.RenderJudgement(game.Good, game.Late); !strings.Contains(s, "GOOD") || !strings.Contains(s, "LATE") {
		t.Errorf("unexpected judgement %q", s)
	}
	if s := th.RenderJudgement(game.Perfect, game.OnTime); strings.Contains(s, "FAST") || strings.Contains(s, "LATE") {
		t.Errorf("perfect carries no timing, got %q", s)
	}
	if s := th.RenderJudgement(game.None, game.OnTime); s != "" {
		t.Errorf("nothing to render for None, got %q", s)
	}
}

func TestRenderLanes(t *testing.T) {
	var th Theme = &DefaultTheme{}
	if th.RenderHitField(0, false) != barSym {
		t.Error("an idle lane renders the bar")
	}
	if !strings.Contains(th.RenderHitField(2, true), pressedSym) {
		t.Error("a pressed lane renders the pressed symbol")
	}
	if !strings.Contains(th.RenderNote(9, false), "255;255;255") {
		t.Error("unknown lanes render white")
	}
	if !strings.Contains(th.RenderNote(1, true), holdSym) {
		t.Error("hold heads use the hold symbol")
	}
}
