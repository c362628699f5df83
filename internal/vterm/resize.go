package vterm

// Resize changes the grid to rows x cols. Content stays anchored top-left and
// the cursor is clamped. If shrinking would leave the cursor below the last
// row, rows above it move into scrollback; a later grow pulls those rows
// back. Rows below the cursor and columns past the new width are truncated.
func (v *VTerm) Resize(rows, cols int) {
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if rows == v.rows && cols == v.cols {
		return
	}

	screen := v.screen
	curRow := v.cur.row
	savedShift := 0

	if !v.altScreen {
		if overflow := curRow - (rows - 1); overflow > 0 {
			for i := 0; i < overflow; i++ {
				v.scrollback.Push(screen[i])
			}
			screen = screen[overflow:]
			curRow -= overflow
			savedShift -= overflow
			v.resizePushed += overflow
		} else if grow := rows - v.rows; grow > 0 && v.resizePushed > 0 {
			pull := min(grow, v.resizePushed, v.scrollback.Len())
			pulled := make([][]Cell, pull)
			for i := pull - 1; i >= 0; i-- {
				pulled[i] = v.scrollback.PopNewest()
			}
			screen = append(pulled, screen...)
			curRow += pull
			savedShift += pull
			v.resizePushed -= pull
		}
	} else if curRow >= rows {
		curRow = rows - 1
	}

	v.screen = fitScreen(screen, rows, cols)
	if v.primary != nil {
		v.primary = fitScreen(v.primary, rows, cols)
	}

	v.rows, v.cols = rows, cols
	v.scrollTop, v.scrollBottom = 0, rows
	v.resizeTabStops(cols)

	v.cur.row = curRow
	if v.cur.col >= cols {
		v.cur.col = cols - 1
		v.cur.wrapPending = false
	}
	v.clampCursor()

	if v.saved.valid {
		v.saved.row = clamp(v.saved.row+savedShift, 0, rows-1)
		v.saved.col = clamp(v.saved.col, 0, cols-1)
	}
	if v.primaryCursor.valid {
		v.primaryCursor.row = clamp(v.primaryCursor.row, 0, rows-1)
		v.primaryCursor.col = clamp(v.primaryCursor.col, 0, cols-1)
	}

	v.touchAll()
}

// fitScreen returns a rows x cols grid holding the top-left part of src.
func fitScreen(src [][]Cell, rows, cols int) [][]Cell {
	screen := make([][]Cell, rows)
	for y := range screen {
		if y < len(src) {
			screen[y] = fitLine(src[y], cols)
		} else {
			screen[y] = MakeBlankLine(cols)
		}
	}
	return screen
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
