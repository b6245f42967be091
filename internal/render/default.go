package render

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/matsuokaju/rhythm-game/internal/game"
	"github.com/matsuokaju/rhythm-game/internal/theme"
	"golang.org/x/term"
)

type DefaultRenderer struct {
	Theme       theme.Theme
	ScrollSpeed time.Duration // Time a note takes to fall one row
	Spacing     uint16        // Columns between lanes

	out          io.Writer
	fd           int
	tty          bool
	rows, cols   uint16
	buffer       strings.Builder
	restoreState *term.State
	decorations  []*decoration
	drawn        []position
}

type decoration struct {
	X, Y    uint16
	Content string
	Frames  int // remaining frames until removed
}

type position struct {
	row, col uint16
}

func NewDefaultRenderer(f *os.File, th theme.Theme) *DefaultRenderer {
	return &DefaultRenderer{
		Theme:       th,
		ScrollSpeed: 20 * time.Millisecond,
		Spacing:     4,
		out:         f,
		fd:          int(f.Fd()),
		rows:        24,
		cols:        80,
	}
}

// Init takes over the terminal. Without one nothing is drawn.
func (r *DefaultRenderer) Init() error {
	r.tty = term.IsTerminal(r.fd)
	if !r.tty {
		return nil
	}
	cols, rows, err := term.GetSize(r.fd)
	if nil != err {
		return fmt.Errorf("unable to get terminal size: %w", err)
	}
	r.rows, r.cols = uint16(rows), uint16(cols)

	state, err := term.MakeRaw(r.fd)
	if nil != err {
		return err
	}
	r.restoreState = state

	fmt.Fprintf(r.out, "%s%s%s",
		"\033[?1049h", // Enable alternate buffer
		"\033[?25l",   // Make the cursor invisible
		"\033[J",      // Clear the screen
	)
	return nil
}

func (r *DefaultRenderer) Deinit() error {
	if !r.tty {
		return nil
	}
	fmt.Fprintf(r.out, "%s%s",
		"\033[?1049l", // Disable alternate buffer
		"\033[?25h",   // Make the cursor visible
	)
	if nil == r.restoreState {
		return nil
	}
	return term.Restore(r.fd, r.restoreState)
}

func (r *DefaultRenderer) AddDecoration(col, row uint16, content string, frames int) {
	r.decorations = append(r.decorations, &decoration{
		X:       col,
		Y:       row,
		Content: content,
		Frames:  frames,
	})
	r.Fill(row, col, content)
}

func (r *DefaultRenderer) tickDecorations() {
	nd := make([]*decoration, 0, len(r.decorations))
	for _, d := range r.decorations {
		if d.Frames == 0 {
			r.Fill(d.Y, d.X, " ")
			continue
		}
		nd = append(nd, d)
		d.Frames--
	}
	r.decorations = nd
}

func (r *DefaultRenderer) Fill(row, column uint16, message string) {
	r.buffer.WriteString("\033[")
	r.buffer.WriteString(strconv.FormatInt(int64(row), 10))
	r.buffer.WriteString(";")
	r.buffer.WriteString(strconv.FormatInt(int64(column), 10))
	r.buffer.WriteString("H")
	r.buffer.WriteString(message)
}

func (r *DefaultRenderer) FillColor(row, column uint16, c color.RGBA, message string) {
	r.buffer.WriteString("\033[")
	r.buffer.WriteString(strconv.FormatInt(int64(row), 10))
	r.buffer.WriteString(";")
	r.buffer.WriteString(strconv.FormatInt(int64(column), 10))
	r.buffer.WriteString("H\033[38;2;")
	r.buffer.WriteString(strconv.FormatInt(int64(c.R), 10))
	r.buffer.WriteString(";")
	r.buffer.WriteString(strconv.FormatInt(int64(c.G), 10))
	r.buffer.WriteString(";")
	r.buffer.WriteString(strconv.FormatInt(int64(c.B), 10))
	r.buffer.WriteString("m")
	r.buffer.WriteString(message)
	r.buffer.WriteString("\033[0m")
}

func (r *DefaultRenderer) flush() {
	r.out.Write([]byte(r.buffer.String()))
	r.buffer.Reset()
}

// hitRow is where notes are judged, a few rows above the bottom.
func (r *DefaultRenderer) hitRow() uint16 {
	if r.rows > 8 {
		return r.rows - 4
	}
	return r.rows
}

func (r *DefaultRenderer) column(lane int) uint16 {
	width := uint16(game.Lanes-1) * r.Spacing
	left := uint16(1)
	if r.cols > width {
		left = (r.cols - width) / 2
	}
	return left + uint16(lane)*r.Spacing
}

// row places t on screen; ok is false when it is off the field.
func (r *DefaultRenderer) row(now, t time.Duration) (uint16, bool) {
	hit := int64(r.hitRow())
	row := hit - int64((t-now)/r.ScrollSpeed)
	if row < 1 || row > hit {
		return 0, false
	}
	return uint16(row), true
}

func (r *DefaultRenderer) put(row, col uint16, s string) {
	r.Fill(row, col, s)
	r.drawn = append(r.drawn, position{row, col})
}

// Draw renders one frame of the note field and the status line.
func (r *DefaultRenderer) Draw(v *View) {
	if !r.tty {
		return
	}
	for _, p := range r.drawn {
		r.Fill(p.row, p.col, " ")
	}
	r.drawn = r.drawn[:0]

	for _, bar := range v.Bars {
		if row, ok := r.row(v.Now, bar); ok {
			for lane := 0; lane < game.Lanes; lane++ {
				r.put(row, r.column(lane), r.Theme.RenderBar())
			}
		}
	}
	for _, n := range v.Notes {
		col := r.column(n.Lane)
		if n.Hold {
			for t := n.End; t > n.HitTime; t -= r.ScrollSpeed {
				if row, ok := r.row(v.Now, t); ok {
					r.put(row, col, r.Theme.RenderHoldBody(n.Lane))
				}
			}
		}
		if row, ok := r.row(v.Now, n.HitTime); ok {
			r.put(row, col, r.Theme.RenderNote(n.Lane, n.Hold))
		}
	}
	for lane := 0; lane < game.Lanes; lane++ {
		r.Fill(r.hitRow(), r.column(lane), r.Theme.RenderHitField(lane, v.Pressed[lane]))
	}
	for _, ev := range v.Last {
		r.AddDecoration(r.column(0), r.hitRow()+2, "\033[2K"+r.Theme.RenderJudgement(ev.Result, ev.Timing), 60)
	}

	r.Fill(1, 1, "\033[2K")
	r.FillColor(1, 1, statusColor, StatusLine(v))
	r.tickDecorations()
	r.flush()
}

var statusColor = color.RGBA{200, 200, 200, 255}

// StatusLine summarises the score and tempo on one line.
func StatusLine(v *View) string {
	return fmt.Sprintf("%8d  combo %4d (max %4d)  acc %6.2f%%  %6.2f bpm %v  P %d G %d B %d M %d  hold %d/%d",
		v.State.Score, v.State.Combo, v.State.MaxCombo, v.Accuracy*100, v.BPM, v.Meter,
		v.State.Tap.Perfect, v.State.Tap.Good, v.State.Tap.Bad, v.State.Tap.Miss,
		v.State.Hold.Perfect, v.State.Hold.Total())
}
