package input

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/eiannone/keyboard"
	"github.com/matsuokaju/rhythm-game/internal/game"
)

// ErrCancelled is returned when the player presses escape.
var ErrCancelled = errors.New("cancelled")

// Keyboard reads the terminal. A terminal only reports key presses, so each
// press becomes a press edge followed by an immediate release: taps work,
// holds do not.
type Keyboard struct {
	lanes map[rune]int
	clock Clock
	now   func() time.Time
}

func NewKeyboard(keys string, clock Clock) (*Keyboard, error) {
	lanes, err := Lanes(keys)
	if nil != err {
		return nil, err
	}
	return &Keyboard{lanes: lanes, clock: clock, now: time.Now}, nil
}

// Run forwards edges until ctx is done, escape is pressed or the terminal
// fails.
func (k *Keyboard) Run(ctx context.Context, out chan<- game.Edge) error {
	keyChannel, err := keyboard.GetKeys(128)
	if nil != err {
		return fmt.Errorf("unable to open keyboard: %w", err)
	}
	defer func() {
		if err := keyboard.Close(); nil != err {
			slog.Warn("unable to close keyboard", "err", err)
		}
	}()
	return k.forward(ctx, keyChannel, out)
}

func (k *Keyboard) forward(ctx context.Context, keys <-chan keyboard.KeyEvent, out chan<- game.Edge) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case key, ok := <-keys:
			if !ok {
				return nil
			}
			if nil != key.Err {
				return fmt.Errorf("unable to read keyboard: %w", key.Err)
			}
			if key.Key == keyboard.KeyEsc || key.Key == keyboard.KeyCtrlC {
				return ErrCancelled
			}
			lane, ok := k.lanes[key.Rune]
			if !ok {
				continue
			}
			at := k.clock(k.now())
			for _, pressed := range []bool{true, false} {
				select {
				case out <- game.Edge{Lane: lane, Pressed: pressed, Time: at}:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	}
}
