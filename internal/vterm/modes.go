package vterm

import "strconv"

// DEC private mode numbers.
const (
	modeCursorKeys     = 1
	modeOrigin         = 6
	modeAutoWrap       = 7
	modeCursorVisible  = 25
	modeAltScreen      = 47
	modeAltScreen1047  = 1047
	modeSaveCursor     = 1048
	modeAltScreen1049  = 1049
	modeBracketedPaste = 2004

	ansiModeInsert = 4
)

func (v *VTerm) setDECModes(params []int, set bool) {
	for _, mode := range params {
		switch mode {
		case modeCursorKeys:
			v.modes.appCursorKeys = set
		case modeOrigin:
			v.modes.originMode = set
			v.setCursorPos(1, 1)
		case modeAutoWrap:
			v.modes.autoWrap = set
			if !set {
				v.cur.wrapPending = false
			}
		case modeCursorVisible:
			if v.cur.visible != set {
				v.cur.visible = set
				v.damage.mark(v.cur.row, v.cur.row)
			}
		case modeAltScreen, modeAltScreen1047:
			if set {
				v.enterAltScreen(false)
			} else {
				v.exitAltScreen(false)
			}
		case modeSaveCursor:
			if set {
				v.saveCursor()
			} else {
				v.restoreCursor()
			}
		case modeAltScreen1049:
			if set {
				v.enterAltScreen(true)
			} else {
				v.exitAltScreen(true)
			}
		case modeBracketedPaste:
			v.modes.bracketedPaste = set
		}
		// Mouse reporting, focus events, synchronized output and the
		// like are accepted and ignored.
	}
}

func (v *VTerm) setANSIModes(params []int, set bool) {
	for _, mode := range params {
		if mode == ansiModeInsert {
			v.modes.insert = set
		}
	}
}

// decModeState returns the DECRQM status for a private mode: 1 set, 2 reset,
// 0 unknown.
func (v *VTerm) decModeState(mode int) int {
	var on bool
	switch mode {
	case modeCursorKeys:
		on = v.modes.appCursorKeys
	case modeOrigin:
		on = v.modes.originMode
	case modeAutoWrap:
		on = v.modes.autoWrap
	case modeCursorVisible:
		on = v.cur.visible
	case modeAltScreen, modeAltScreen1047, modeAltScreen1049:
		on = v.altScreen
	case modeBracketedPaste:
		on = v.modes.bracketedPaste
	default:
		return 0
	}
	if on {
		return 1
	}
	return 2
}

// reportMode answers DECRQM for ANSI and private modes.
func (v *VTerm) reportMode(seq *csiSequence) {
	mode := seq.param(0, 0)
	var state int
	prefix := "\x1b["
	if seq.Private == '?' {
		prefix = "\x1b[?"
		state = v.decModeState(mode)
	} else if mode == ansiModeInsert {
		state = 2
		if v.modes.insert {
			state = 1
		}
	}
	buf := []byte(prefix)
	buf = strconv.AppendInt(buf, int64(mode), 10)
	buf = append(buf, ';')
	buf = strconv.AppendInt(buf, int64(state), 10)
	buf = append(buf, "$y"...)
	v.respond(buf)
}

// enterAltScreen switches to a blank alternate screen. With saveCursor the
// cursor is saved first (mode 1049).
func (v *VTerm) enterAltScreen(saveCursor bool) {
	if v.altScreen {
		if saveCursor {
			v.eraseInDisplay(2)
		}
		return
	}
	if saveCursor {
		v.primaryCursor = v.snapshotCursor()
	}
	v.primary = v.screen
	v.screen = makeScreen(v.rows, v.cols)
	v.altScreen = true
	v.touchAll()
}

// exitAltScreen returns to the main screen, restoring the cursor saved by
// mode 1049.
func (v *VTerm) exitAltScreen(restoreCursor bool) {
	if !v.altScreen {
		return
	}
	v.screen = v.primary
	v.primary = nil
	v.altScreen = false
	v.touchAll()
	if restoreCursor && v.primaryCursor.valid {
		v.restoreFrom(v.primaryCursor)
		v.primaryCursor = savedCursor{}
	}
}
