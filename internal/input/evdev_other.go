//go:build !linux

package input

import (
	"context"
	"errors"

	"github.com/matsuokaju/rhythm-game/internal/game"
)

func ReadEvdev(ctx context.Context, device string, keymap map[uint16]int, clock Clock, out chan<- game.Edge) error {
	return errors.New("evdev input is only available on linux")
}
