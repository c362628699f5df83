package vterm

import "strings"

// CursorState is the cursor as seen by a renderer.
type CursorState struct {
	Row     int
	Col     int
	Visible bool
	Style   Style
}

// Snapshot is an immutable copy of the visible screen.
type Snapshot struct {
	Rows          int
	Cols          int
	Cells         [][]Cell
	Cursor        CursorState
	Modes         Modes
	Title         string
	ScrollbackLen int
}

// Snapshot returns a deep copy of the screen, cursor, modes and title.
func (v *VTerm) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	cells := make([][]Cell, v.rows)
	for y := range cells {
		cells[y] = CopyLine(v.screen[y])
	}
	return Snapshot{
		Rows:          v.rows,
		Cols:          v.cols,
		Cells:         cells,
		Cursor:        v.cursorLocked(),
		Modes:         v.modesLocked(),
		Title:         v.title,
		ScrollbackLen: v.scrollback.Len(),
	}
}

// Cursor returns the cursor without copying the grid.
func (v *VTerm) Cursor() CursorState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cursorLocked()
}

func (v *VTerm) cursorLocked() CursorState {
	return CursorState{
		Row:     v.cur.row,
		Col:     v.cur.col,
		Visible: v.cur.visible,
		Style:   v.cur.style,
	}
}

// Cell returns the cell at (row, col), or a default cell when out of range.
func (s Snapshot) Cell(row, col int) Cell {
	if row < 0 || row >= len(s.Cells) || col < 0 || col >= len(s.Cells[row]) {
		return DefaultCell()
	}
	return s.Cells[row][col]
}

// Line returns the text of one row without trailing blanks.
func (s Snapshot) Line(row int) string {
	if row < 0 || row >= len(s.Cells) {
		return ""
	}
	return lineText(s.Cells[row])
}

// Text returns the screen as plain text, one line per row, with trailing
// blank rows removed.
func (s Snapshot) Text() string {
	lines := make([]string, len(s.Cells))
	for y := range s.Cells {
		lines[y] = lineText(s.Cells[y])
	}
	end := len(lines)
	for end > 0 && lines[end-1] == "" {
		end--
	}
	return strings.Join(lines[:end], "\n")
}

// LineText returns the text of a scrollback or screen row without trailing
// blanks.
func LineText(line []Cell) string {
	return lineText(line)
}
