package theme

import "github.com/matsuokaju/rhythm-game/internal/game"

type Theme interface {
	RenderNote(lane int, hold bool) string
	RenderHoldBody(lane int) string
	RenderHitField(lane int, pressed bool) string
	RenderBar() string
	RenderJudgement(result game.Result, timing game.Timing) string
}
