package schedule

import (
	"sort"
	"time"

	"github.com/matsuokaju/rhythm-game/internal/game"
	"github.com/matsuokaju/rhythm-game/internal/hold"
)

// Key identifies an active note. No two active notes share a key.
type Key struct {
	HitTime time.Duration
	Lane    int
	Type    game.NoteType
}

// ActiveNote is a scheduled note that can still be judged.
type ActiveNote struct {
	Key
	Note  *game.Note
	Index int           // Position in the scheduling order
	Hold  *hold.Machine // Nil for taps
}

// Active is the set of live notes ordered by hit time, ties kept in
// insertion order. It is owned by a single goroutine.
type Active struct {
	notes []*ActiveNote
}

func NewActive() *Active {
	return &Active{}
}

// Add inserts n, returning false when a note with the same key is live.
func (a *Active) Add(n *ActiveNote) bool {
	if a.Contains(n.Key) {
		return false
	}
	i := sort.Search(len(a.notes), func(i int) bool {
		return a.notes[i].HitTime > n.HitTime
	})
	a.notes = append(a.notes, nil)
	copy(a.notes[i+1:], a.notes[i:])
	a.notes[i] = n
	return true
}

// Remove deletes n, reporting whether it was present.
func (a *Active) Remove(n *ActiveNote) bool {
	for i, o := range a.notes {
		if o == n {
			a.notes = append(a.notes[:i], a.notes[i+1:]...)
			return true
		}
	}
	return false
}

func (a *Active) Contains(k Key) bool {
	for _, n := range a.notes {
		if n.Key == k {
			return true
		}
	}
	return false
}

// Snapshot copies the live notes so callers may remove while iterating.
func (a *Active) Snapshot() []*ActiveNote {
	return append([]*ActiveNote(nil), a.notes...)
}

// Lane returns the live notes of type t in lane, earliest hit time first.
func (a *Active) Lane(lane int, t game.NoteType) []*ActiveNote {
	out := []*ActiveNote{}
	for _, n := range a.notes {
		if n.Lane == lane && n.Type == t {
			out = append(out, n)
		}
	}
	return out
}

func (a *Active) Len() int {
	return len(a.notes)
}

func (a *Active) Clear() {
	a.notes = nil
}
