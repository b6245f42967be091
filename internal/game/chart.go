package game

type SongInfo struct {
	Title         string  `json:"title"`
	Artist        string  `json:"artist"`
	AudioFile     string  `json:"audioFile"`
	AudioOffset   float64 `json:"audioOffset"` // Seconds, shifts audio start only
	Volume        float64 `json:"volume"`
	PreviewTime   float64 `json:"previewTime"`
	Difficulty    string  `json:"difficulty"`
	Level         int     `json:"level"`
	EmptyMeasures int     `json:"emptyMeasures"` // Lead-in measures before beat 0
}

type Chart struct {
	SongInfo     SongInfo      `json:"songInfo"`
	TimingPoints []TimingPoint `json:"timingPoints"`
	Notes        []*Note       `json:"notes"`

	NoteCount int64 `json:"-"`
	HoldCount int64 `json:"-"`
}

// LeadInMeasures returns the configured lead-in, defaulting to one measure.
func (c *Chart) LeadInMeasures() int {
	if c.SongInfo.EmptyMeasures <= 0 {
		return 1
	}
	return c.SongInfo.EmptyMeasures
}

// Count refreshes NoteCount and HoldCount from Notes.
func (c *Chart) Count() {
	c.NoteCount, c.HoldCount = 0, 0
	for _, n := range c.Notes {
		c.NoteCount++
		if n.IsHold() {
			c.HoldCount++
		}
	}
}
