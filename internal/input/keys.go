package input

import (
	"fmt"
	"time"

	"github.com/matsuokaju/rhythm-game/internal/game"
)

// Clock maps a wall clock instant to song time.
type Clock func(at time.Time) time.Duration

// SongClock returns a clock where start is the song time at wall time origin.
func SongClock(origin time.Time, start time.Duration) Clock {
	return func(at time.Time) time.Duration {
		return at.Sub(origin) + start
	}
}

// Lanes maps each rune of keys to its lane, one rune per lane.
func Lanes(keys string) (map[rune]int, error) {
	runes := []rune(keys)
	if len(runes) != game.Lanes {
		return nil, fmt.Errorf("need %d lane keys, got %q", game.Lanes, keys)
	}
	lanes := make(map[rune]int, len(runes))
	for i, r := range runes {
		if _, ok := lanes[r]; ok {
			return nil, fmt.Errorf("key %q is bound twice", r)
		}
		lanes[r] = i
	}
	return lanes, nil
}

// Linux key codes of the main block, qwerty layout.
var keyCodes = map[rune]uint16{
	'q': 16, 'w': 17, 'e': 18, 'r': 19, 't': 20, 'y': 21, 'u': 22, 'i': 23, 'o': 24, 'p': 25,
	'a': 30, 's': 31, 'd': 32, 'f': 33, 'g': 34, 'h': 35, 'j': 36, 'k': 37, 'l': 38, ';': 39,
	'z': 44, 'x': 45, 'c': 46, 'v': 47, 'b': 48, 'n': 49, 'm': 50, ',': 51, '.': 52, '/': 53,
	' ': 57,
}

// EvdevKeymap maps the key codes of keys to lanes.
func EvdevKeymap(keys string) (map[uint16]int, error) {
	lanes, err := Lanes(keys)
	if nil != err {
		return nil, err
	}
	keymap := make(map[uint16]int, len(lanes))
	for r, lane := range lanes {
		code, ok := keyCodes[r]
		if !ok {
			return nil, fmt.Errorf("no key code for %q", r)
		}
		keymap[code] = lane
	}
	return keymap, nil
}
