package game

// Lanes is the number of playable columns.
const Lanes = 6

type NoteType string

const (
	Tap  NoteType = "tap"
	Hold NoteType = "hold"
)

type Note struct {
	Measure  int      `json:"measure"`  // 1-based measure
	Beat     float64  `json:"beat"`     // Offset into the measure, in quarter notes
	Lane     int      `json:"lane"`     // The chart column
	Type     NoteType `json:"type"`     // tap or hold
	Duration float64  `json:"duration"` // Hold length in quarter notes
}

// ValidLane reports whether l addresses a playable column.
func ValidLane(l int) bool {
	return l >= 0 && l < Lanes
}

// IsHold reports whether the note should be judged as a hold.
func (n *Note) IsHold() bool {
	return n.Type == Hold
}

// Before orders notes by chart position.
func (n *Note) Before(o *Note) bool {
	if n.Measure != o.Measure {
		return n.Measure < o.Measure
	}
	return n.Beat < o.Beat
}
