package vterm

// setCursor moves the cursor to an absolute 0-indexed position, clamped to
// the screen (or to the scroll region in origin mode).
func (v *VTerm) setCursor(row, col int) {
	prevRow := v.cur.row
	v.cur.row, v.cur.col = row, col
	v.cur.wrapPending = false
	v.clampCursor()
	v.damage.mark(prevRow, v.cur.row)
}

func (v *VTerm) clampCursor() {
	if v.cur.col < 0 {
		v.cur.col = 0
	}
	if v.cur.col >= v.cols {
		v.cur.col = v.cols - 1
	}

	top, bottom := 0, v.rows
	if v.modes.originMode {
		top, bottom = v.scrollTop, v.scrollBottom
	}
	if v.cur.row < top {
		v.cur.row = top
	}
	if v.cur.row >= bottom {
		v.cur.row = bottom - 1
	}
}

// setCursorPos handles CUP/HVP (1-indexed, origin-relative in DECOM).
func (v *VTerm) setCursorPos(row, col int) {
	if v.modes.originMode {
		row += v.scrollTop
	}
	v.setCursor(row-1, col-1)
}

// moveCursorV moves up (negative) or down. Outside origin mode the move
// stops at the scroll margin when starting inside the region.
func (v *VTerm) moveCursorV(dy int) {
	row := v.cur.row + dy
	if v.cur.row >= v.scrollTop && v.cur.row < v.scrollBottom {
		if row < v.scrollTop {
			row = v.scrollTop
		}
		if row >= v.scrollBottom {
			row = v.scrollBottom - 1
		}
	}
	v.setCursor(row, v.cur.col)
}

func (v *VTerm) moveCursorH(dx int) {
	v.setCursor(v.cur.row, v.cur.col+dx)
}

// saveCursor implements DECSC.
func (v *VTerm) saveCursor() {
	v.saved = v.snapshotCursor()
}

func (v *VTerm) snapshotCursor() savedCursor {
	return savedCursor{
		row:         v.cur.row,
		col:         v.cur.col,
		style:       v.cur.style,
		originMode:  v.modes.originMode,
		wrapPending: v.cur.wrapPending,
		valid:       true,
	}
}

// restoreCursor implements DECRC. Without a prior save it homes the cursor
// and resets attributes.
func (v *VTerm) restoreCursor() {
	v.restoreFrom(v.saved)
}

func (v *VTerm) restoreFrom(s savedCursor) {
	if !s.valid {
		v.modes.originMode = false
		v.cur.style = Style{}
		v.setCursor(0, 0)
		return
	}
	v.modes.originMode = s.originMode
	v.cur.style = s.style
	v.setCursor(s.row, s.col)
	v.cur.wrapPending = s.wrapPending && v.cur.col == s.col
}

func (v *VTerm) resetTabStops() {
	v.tabStops = make([]bool, v.cols)
	for i := 8; i < v.cols; i += 8 {
		v.tabStops[i] = true
	}
}

func (v *VTerm) resizeTabStops(cols int) {
	stops := make([]bool, cols)
	copy(stops, v.tabStops)
	for i := len(v.tabStops); i < cols; i++ {
		stops[i] = i%8 == 0 && i > 0
	}
	v.tabStops = stops
}

// tab moves forward n tab stops, stopping at the last column.
func (v *VTerm) tab(n int) {
	col := v.cur.col
	for ; n > 0 && col < v.cols-1; n-- {
		col++
		for col < v.cols-1 && !v.tabStops[col] {
			col++
		}
	}
	v.setCursor(v.cur.row, col)
}

// backTab moves back n tab stops, stopping at column 0.
func (v *VTerm) backTab(n int) {
	col := v.cur.col
	for ; n > 0 && col > 0; n-- {
		col--
		for col > 0 && !v.tabStops[col] {
			col--
		}
	}
	v.setCursor(v.cur.row, col)
}

func (v *VTerm) setTabStop() {
	v.tabStops[v.cur.col] = true
}

// clearTabStops handles TBC: 0 clears the stop at the cursor, 3 clears all.
func (v *VTerm) clearTabStops(mode int) {
	switch mode {
	case 0:
		v.tabStops[v.cur.col] = false
	case 3:
		for i := range v.tabStops {
			v.tabStops[i] = false
		}
	}
}
