package vterm

import "github.com/mattn/go-runewidth"

// print writes r at the cursor and advances it (parser handler).
func (v *VTerm) print(r rune) {
	width := runewidth.RuneWidth(r)
	if width == 0 {
		// Combining marks and other zero-width runes are not stored.
		return
	}
	if width > v.cols {
		r, width = ' ', 1
	}

	if v.cur.wrapPending && v.modes.autoWrap {
		v.cur.col = 0
		v.index()
	}
	v.cur.wrapPending = false

	if width == 2 && v.cur.col == v.cols-1 {
		if v.modes.autoWrap {
			v.screen[v.cur.row][v.cur.col] = Cell{Rune: ' ', Style: v.cur.style, Width: 1}
			v.touchRow(v.cur.row)
			v.cur.col = 0
			v.index()
		} else {
			v.cur.col--
		}
	}

	row, col := v.cur.row, v.cur.col
	if v.modes.insert {
		v.insertChars(width)
	}
	line := v.screen[row]
	v.clearWideAt(line, col)
	if width == 2 {
		v.clearWideAt(line, col+1)
	}
	line[col] = Cell{Rune: r, Style: v.cur.style, Width: width}
	if width == 2 {
		line[col+1] = Cell{Style: v.cur.style, Width: 0}
	}
	v.touchRow(row)

	if col+width >= v.cols {
		v.cur.col = v.cols - 1
		v.cur.wrapPending = v.modes.autoWrap
		return
	}
	v.cur.col = col + width
}

// clearWideAt blanks the other half of a wide rune overlapping col.
func (v *VTerm) clearWideAt(line []Cell, col int) {
	switch line[col].Width {
	case 0:
		if col > 0 && line[col-1].Width == 2 {
			line[col-1] = DefaultCell()
		}
	case 2:
		if col+1 < len(line) && line[col+1].Width == 0 {
			line[col+1] = DefaultCell()
		}
	}
}

// execute handles a C0 control (parser handler).
func (v *VTerm) execute(b byte) {
	switch b {
	case '\b':
		v.setCursor(v.cur.row, v.cur.col-1)
	case '\t':
		v.tab(1)
	case '\n', '\v', '\f':
		v.index()
	case '\r':
		v.setCursor(v.cur.row, 0)
	}
	// BEL, SO, SI, NUL and the rest are accepted and ignored.
}

// eraseCells blanks [start, end) on row.
func (v *VTerm) eraseCells(row, start, end int) {
	if start < 0 {
		start = 0
	}
	if end > v.cols {
		end = v.cols
	}
	if start >= end {
		return
	}
	line := v.screen[row]
	for x := start; x < end; x++ {
		line[x] = DefaultCell()
	}
	normalizeLine(line)
	v.touchRow(row)
}

// eraseInDisplay implements ED.
func (v *VTerm) eraseInDisplay(mode int) {
	row, col := v.cur.row, v.cur.col
	switch mode {
	case 0:
		v.eraseCells(row, col, v.cols)
		for y := row + 1; y < v.rows; y++ {
			v.eraseCells(y, 0, v.cols)
		}
	case 1:
		for y := 0; y < row; y++ {
			v.eraseCells(y, 0, v.cols)
		}
		v.eraseCells(row, 0, col+1)
	case 2:
		for y := 0; y < v.rows; y++ {
			v.eraseCells(y, 0, v.cols)
		}
	case 3:
		v.scrollback.Clear()
		v.resizePushed = 0
	}
	v.cur.wrapPending = false
}

// eraseInLine implements EL.
func (v *VTerm) eraseInLine(mode int) {
	row, col := v.cur.row, v.cur.col
	switch mode {
	case 0:
		v.eraseCells(row, col, v.cols)
	case 1:
		v.eraseCells(row, 0, col+1)
	case 2:
		v.eraseCells(row, 0, v.cols)
	}
	v.cur.wrapPending = false
}

// eraseChars implements ECH.
func (v *VTerm) eraseChars(n int) {
	v.eraseCells(v.cur.row, v.cur.col, v.cur.col+n)
	v.cur.wrapPending = false
}

// insertChars implements ICH: shift the rest of the line right by n.
func (v *VTerm) insertChars(n int) {
	row, col := v.cur.row, v.cur.col
	if n > v.cols-col {
		n = v.cols - col
	}
	line := v.screen[row]
	copy(line[col+n:], line[col:v.cols-n])
	for x := col; x < col+n; x++ {
		line[x] = DefaultCell()
	}
	normalizeLine(line)
	v.cur.wrapPending = false
	v.touchRow(row)
}

// deleteChars implements DCH: shift the rest of the line left by n.
func (v *VTerm) deleteChars(n int) {
	row, col := v.cur.row, v.cur.col
	if n > v.cols-col {
		n = v.cols - col
	}
	line := v.screen[row]
	copy(line[col:], line[col+n:])
	for x := v.cols - n; x < v.cols; x++ {
		line[x] = DefaultCell()
	}
	normalizeLine(line)
	v.cur.wrapPending = false
	v.touchRow(row)
}

// insertLines implements IL within the scroll region.
func (v *VTerm) insertLines(n int) {
	if v.cur.row < v.scrollTop || v.cur.row >= v.scrollBottom {
		return
	}
	top := v.scrollTop
	v.scrollTop = v.cur.row
	v.scrollDown(n)
	v.scrollTop = top
	v.setCursor(v.cur.row, 0)
}

// deleteLines implements DL within the scroll region. Deleted rows never
// reach scrollback.
func (v *VTerm) deleteLines(n int) {
	row := v.cur.row
	if row < v.scrollTop || row >= v.scrollBottom {
		return
	}
	if height := v.scrollBottom - row; n > height {
		n = height
	}
	copy(v.screen[row:v.scrollBottom-n], v.screen[row+n:v.scrollBottom])
	for i := v.scrollBottom - n; i < v.scrollBottom; i++ {
		v.screen[i] = MakeBlankLine(v.cols)
	}
	v.touch(row, v.scrollBottom-1)
	v.setCursor(row, 0)
}

// alignmentTest implements DECALN: fill the screen with E.
func (v *VTerm) alignmentTest() {
	for y := range v.screen {
		for x := range v.screen[y] {
			v.screen[y][x] = Cell{Rune: 'E', Width: 1}
		}
	}
	v.scrollTop, v.scrollBottom = 0, v.rows
	v.touchAll()
	v.setCursor(0, 0)
}

// fullReset implements RIS. Scrollback survives.
func (v *VTerm) fullReset() {
	v.resetState()
	v.parser.clear()
}

// softReset implements DECSTR.
func (v *VTerm) softReset() {
	v.cur.visible = true
	v.cur.style = Style{}
	v.modes = modes{autoWrap: true, bracketedPaste: v.modes.bracketedPaste}
	v.scrollTop, v.scrollBottom = 0, v.rows
	v.saved = savedCursor{}
	v.cur.wrapPending = false
}

func (v *VTerm) respond(b []byte) {
	v.replies = append(v.replies, b...)
}

func (v *VTerm) takeReplies() []byte {
	if len(v.replies) == 0 {
		return nil
	}
	out := v.replies
	v.replies = nil
	return out
}
