//go:build linux

package input

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"syscall"
	"time"

	"github.com/matsuokaju/rhythm-game/internal/game"
)

// https://github.com/torvalds/linux/blob/master/include/uapi/linux/input-event-codes.h
const evKey = 0x01

type keyEvent struct {
	Time  syscall.Timeval
	Type  uint16
	Code  uint16
	Value int32
}

// Key values; 2 is autorepeat and never changes the lane state.
const (
	keyReleased = 0
	keyPressed  = 1
)

// ReadEvdev reads key events from an evdev device such as
// /dev/input/by-id/...-event-kbd until ctx is done or the device fails.
// Edges carry the kernel timestamp converted by clock.
func ReadEvdev(ctx context.Context, device string, keymap map[uint16]int, clock Clock, out chan<- game.Edge) error {
	file, err := os.Open(device)
	if nil != err {
		return fmt.Errorf("unable to open %s: %w", device, err)
	}
	go func() {
		<-ctx.Done()
		file.Close()
	}()

	err = decode(ctx, file, keymap, clock, out)
	if nil != ctx.Err() {
		return ctx.Err()
	}
	return err
}

func decode(ctx context.Context, r io.Reader, keymap map[uint16]int, clock Clock, out chan<- game.Edge) error {
	var ev keyEvent
	for {
		if err := binary.Read(r, binary.LittleEndian, &ev); nil != err {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("unable to read keyboard input: %w", err)
		}
		if ev.Type != evKey || (ev.Value != keyPressed && ev.Value != keyReleased) {
			continue
		}
		lane, ok := keymap[ev.Code]
		if !ok {
			continue
		}
		at := time.Unix(int64(ev.Time.Sec), int64(ev.Time.Usec)*int64(time.Microsecond))
		edge := game.Edge{Lane: lane, Pressed: ev.Value == keyPressed, Time: clock(at)}
		select {
		case out <- edge:
		case <-ctx.Done():
			return ctx.Err()
		}
		slog.Debug("evdev edge", "code", ev.Code, "lane", lane, "pressed", edge.Pressed, "at", edge.Time)
	}
}
