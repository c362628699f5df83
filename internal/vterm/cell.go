package vterm

// Color is a cell foreground or background color.
type Color struct {
	Type  ColorType
	Value uint32 // Indexed: 0-255, RGB: 0xRRGGBB
}

// ColorType says how Color.Value is interpreted.
type ColorType uint8

const (
	ColorDefault ColorType = iota
	ColorIndexed
	ColorRGB
)

// IndexedColor returns a palette color (0-255).
func IndexedColor(i int) Color {
	return Color{Type: ColorIndexed, Value: uint32(i & 0xff)}
}

// RGBColor returns a 24-bit color.
func RGBColor(r, g, b int) Color {
	return Color{Type: ColorRGB, Value: uint32(r&0xff)<<16 | uint32(g&0xff)<<8 | uint32(b&0xff)}
}

// Style is the attribute set applied to written cells.
type Style struct {
	Fg        Color
	Bg        Color
	Bold      bool
	Dim       bool
	Italic    bool
	Underline bool
	Blink     bool
	Reverse   bool
	Hidden    bool
	Strike    bool
}

// Cell is one character position on the grid.
type Cell struct {
	Rune  rune
	Style Style
	Width int // 1 normal, 2 wide, 0 continuation
}

// DefaultCell returns a blank cell with the default style.
func DefaultCell() Cell {
	return Cell{Rune: ' ', Width: 1}
}

// IsBlank reports whether c is a default blank.
func (c Cell) IsBlank() bool {
	return c == DefaultCell()
}

// MakeBlankLine returns width default cells.
func MakeBlankLine(width int) []Cell {
	line := make([]Cell, width)
	for i := range line {
		line[i] = DefaultCell()
	}
	return line
}

// CopyLine deep copies a line.
func CopyLine(src []Cell) []Cell {
	dst := make([]Cell, len(src))
	copy(dst, src)
	return dst
}

// fitLine returns src cut or padded to width. Wide runes split by the cut are
// blanked.
func fitLine(src []Cell, width int) []Cell {
	line := MakeBlankLine(width)
	copy(line, src)
	normalizeLine(line)
	return line
}

// normalizeLine repairs wide-rune pairs broken by truncation or overwrites.
func normalizeLine(line []Cell) {
	for x := 0; x < len(line); x++ {
		switch line[x].Width {
		case 2:
			if x+1 >= len(line) || line[x+1].Width != 0 {
				line[x] = Cell{Rune: ' ', Style: line[x].Style, Width: 1}
				continue
			}
			x++
		case 0:
			// continuation with no wide rune to its left
			line[x] = Cell{Rune: ' ', Style: line[x].Style, Width: 1}
		}
	}
}

// lineText returns the visible text of a line with trailing blanks removed.
func lineText(line []Cell) string {
	end := len(line)
	for end > 0 && (line[end-1].Rune == ' ' || line[end-1].Rune == 0) && line[end-1].Width != 0 {
		end--
	}
	buf := make([]rune, 0, end)
	for _, c := range line[:end] {
		if c.Width == 0 {
			continue
		}
		r := c.Rune
		if r == 0 {
			r = ' '
		}
		buf = append(buf, r)
	}
	return string(buf)
}
