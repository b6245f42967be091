package render

import (
	"image/color"
	"time"

	"github.com/matsuokaju/rhythm-game/internal/game"
	"github.com/matsuokaju/rhythm-game/internal/score"
)

type Renderer interface {
	Init() error
	Deinit() error
	AddDecoration(col, row uint16, content string, frames int)
	Fill(row, column uint16, message string)
	FillColor(row, column uint16, color color.RGBA, message string)
	Draw(view *View)
}

type NoteView struct {
	Lane    int
	HitTime time.Duration
	End     time.Duration // Equal to HitTime for taps
	Hold    bool
}

// View is everything drawn in one frame.
type View struct {
	Now      time.Duration
	Notes    []NoteView
	Bars     []time.Duration
	Pressed  [game.Lanes]bool
	Last     []game.Event // Judgments since the previous frame
	State    score.State
	Accuracy float64
	BPM      float64
	Meter    game.TimeSignature
}
