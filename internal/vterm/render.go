package vterm

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// renderCache keeps the rendered form of each screen row until the row is
// touched.
type renderCache struct {
	lines []string
	valid []bool
}

func (c *renderCache) reset(rows int) {
	c.lines = make([]string, rows)
	c.valid = make([]bool, rows)
}

func (c *renderCache) invalidate(start, end int) {
	if start < 0 {
		start = 0
	}
	if end >= len(c.valid) {
		end = len(c.valid) - 1
	}
	for y := start; y <= end; y++ {
		c.valid[y] = false
	}
}

// RenderLines returns the visible screen as one ANSI-styled string per row.
func (v *VTerm) RenderLines() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.renderScreenLocked()
}

func (v *VTerm) renderScreenLocked() []string {
	if len(v.render.lines) != v.rows {
		v.render.reset(v.rows)
	}
	out := make([]string, v.rows)
	for y := 0; y < v.rows; y++ {
		if !v.render.valid[y] {
			v.render.lines[y] = RenderCells(v.screen[y])
			v.render.valid[y] = true
		}
		out[y] = v.render.lines[y]
	}
	return out
}

// RenderView returns rows lines of output scrolled offset rows back into
// history. Offset 0 is the live screen.
func (v *VTerm) RenderView(offset int) []string {
	v.mu.Lock()
	defer v.mu.Unlock()

	screen := v.renderScreenLocked()
	sbLen := v.scrollback.Len()
	offset = clamp(offset, 0, sbLen)
	if offset == 0 {
		return screen
	}

	out := make([]string, 0, v.rows)
	start := sbLen - offset
	for i := 0; i < v.rows; i++ {
		idx := start + i
		if idx < sbLen {
			out = append(out, RenderCells(fitLine(v.scrollback.Line(idx), v.cols)))
			continue
		}
		out = append(out, screen[idx-sbLen])
	}
	return out
}

// RenderCells renders a row to text with SGR sequences, ending with a reset.
func RenderCells(line []Cell) string {
	var buf strings.Builder
	buf.Grow(len(line) + 16)

	var last Style
	for _, cell := range line {
		if cell.Width == 0 {
			continue
		}
		if cell.Style != last {
			buf.WriteString(styleSequence(cell.Style))
			last = cell.Style
		}
		if cell.Rune == 0 {
			buf.WriteByte(' ')
		} else {
			buf.WriteRune(cell.Rune)
		}
	}
	if last != (Style{}) {
		buf.WriteString(ansi.ResetStyle)
	}
	return buf.String()
}

// styleSequence returns the SGR sequence selecting s from any prior state.
func styleSequence(s Style) string {
	st := ansi.Style{}.Reset()
	if s.Bold {
		st = st.Bold()
	}
	if s.Dim {
		st = st.Faint()
	}
	if s.Italic {
		st = st.Italic(true)
	}
	if s.Underline {
		st = st.Underline(true)
	}
	if s.Blink {
		st = st.Blink(true)
	}
	if s.Reverse {
		st = st.Reverse(true)
	}
	if s.Hidden {
		st = st.Conceal(true)
	}
	if s.Strike {
		st = st.Strikethrough(true)
	}
	if c := ansiColor(s.Fg); c != nil {
		st = st.ForegroundColor(c)
	}
	if c := ansiColor(s.Bg); c != nil {
		st = st.BackgroundColor(c)
	}
	return st.String()
}

func ansiColor(c Color) ansi.Color {
	switch c.Type {
	case ColorIndexed:
		if c.Value < 16 {
			return ansi.BasicColor(c.Value)
		}
		return ansi.IndexedColor(c.Value)
	case ColorRGB:
		return ansi.RGBColor{R: uint8(c.Value >> 16), G: uint8(c.Value >> 8), B: uint8(c.Value)}
	}
	return nil
}
