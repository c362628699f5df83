package vterm

// scrollUp scrolls the scroll region up by n rows. Rows leaving the top of
// the main screen go to scrollback when the region starts at row 0.
func (v *VTerm) scrollUp(n int) {
	top, bottom := v.scrollTop, v.scrollBottom
	if n <= 0 || top >= bottom {
		return
	}
	if height := bottom - top; n > height {
		n = height
	}

	if !v.altScreen && top == 0 {
		for i := 0; i < n; i++ {
			v.scrollback.Push(v.screen[i])
		}
		// Rows parked by a shrink are now buried under real history.
		v.resizePushed = 0
	}

	copy(v.screen[top:bottom-n], v.screen[top+n:bottom])
	for i := bottom - n; i < bottom; i++ {
		v.screen[i] = MakeBlankLine(v.cols)
	}
	v.touch(top, bottom-1)
}

// scrollDown scrolls the scroll region down by n rows, discarding rows that
// leave the bottom.
func (v *VTerm) scrollDown(n int) {
	top, bottom := v.scrollTop, v.scrollBottom
	if n <= 0 || top >= bottom {
		return
	}
	if height := bottom - top; n > height {
		n = height
	}

	copy(v.screen[top+n:bottom], v.screen[top:bottom-n])
	for i := top; i < top+n; i++ {
		v.screen[i] = MakeBlankLine(v.cols)
	}
	v.touch(top, bottom-1)
}

// setScrollRegion implements DECSTBM (1-indexed, bottom inclusive). An
// invalid region is ignored. The cursor homes on success.
func (v *VTerm) setScrollRegion(top, bottom int) {
	if top < 1 {
		top = 1
	}
	if bottom < 1 || bottom > v.rows {
		bottom = v.rows
	}
	if top >= bottom {
		return
	}
	v.scrollTop = top - 1
	v.scrollBottom = bottom
	v.setCursorPos(1, 1)
}

// index moves the cursor down one row, scrolling at the bottom margin.
func (v *VTerm) index() {
	v.cur.wrapPending = false
	switch {
	case v.cur.row == v.scrollBottom-1:
		v.scrollUp(1)
	case v.cur.row < v.rows-1:
		v.setCursor(v.cur.row+1, v.cur.col)
	}
}

// reverseIndex moves the cursor up one row, scrolling at the top margin.
func (v *VTerm) reverseIndex() {
	v.cur.wrapPending = false
	switch {
	case v.cur.row == v.scrollTop:
		v.scrollDown(1)
	case v.cur.row > 0:
		v.setCursor(v.cur.row-1, v.cur.col)
	}
}
