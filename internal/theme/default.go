package theme

import (
	"fmt"
	"image/color"

	"github.com/matsuokaju/rhythm-game/internal/game"
)

type DefaultTheme struct{}

func (t *DefaultTheme) RenderNote(lane int, hold bool) string {
	sym := noteSym
	if hold {
		sym = holdSym
	}
	return paint(laneColor(lane), sym)
}

func (t *DefaultTheme) RenderHoldBody(lane int) string {
	return paint(laneColor(lane), holdBodySym)
}

func (t *DefaultTheme) RenderHitField(lane int, pressed bool) string {
	if pressed {
		return paint(laneColor(lane), pressedSym)
	}
	return barSym
}

func (t *DefaultTheme) RenderBar() string {
	return "\033[2m" + measureSym + "\033[0m"
}

func (t *DefaultTheme) RenderJudgement(result game.Result, timing game.Timing) string {
	c, ok := resultColors[result]
	if !ok {
		return ""
	}
	name := fmt.Sprintf("%-7v", result)
	if timing != game.OnTime {
		name = fmt.Sprintf("%-7v %v", result, timing)
	}
	return paint(c, name)
}

const (
	noteSym     = "⬤"
	holdSym     = "◆"
	holdBodySym = "┃"
	pressedSym  = "▀"
	barSym      = "-"
	measureSym  = "─"
)

var laneColors = [game.Lanes]color.RGBA{
	{236, 30, 0, 255},  // red
	{0, 118, 236, 255}, // blue
	{236, 195, 0, 255}, // yellow
	{236, 195, 0, 255}, // yellow
	{0, 118, 236, 255}, // blue
	{236, 30, 0, 255},  // red
}

var resultColors = map[game.Result]color.RGBA{
	game.Perfect: {173, 236, 236, 255}, // light blue
	game.Good:    {0, 236, 128, 255},   // green
	game.Bad:     {236, 128, 0, 255},   // orange
	game.Miss:    {236, 30, 0, 255},    // red
}

var white = color.RGBA{255, 255, 255, 255}

func laneColor(lane int) color.RGBA {
	if !game.ValidLane(lane) {
		return white
	}
	return laneColors[lane]
}

func paint(c color.RGBA, s string) string {
	return fmt.Sprintf("\033[38;2;%v;%v;%vm%v\033[0m", c.R, c.G, c.B, s)
}
