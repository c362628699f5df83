package vterm

import (
	"bytes"
	"strconv"
)

// csiDispatch executes a control sequence (parser handler).
func (v *VTerm) csiDispatch(seq *csiSequence) bool {
	switch len(seq.Intermediate) {
	case 0:
	case 1:
		return v.csiIntermediate(seq)
	default:
		return false
	}

	if seq.Private != 0 {
		return v.csiPrivate(seq)
	}

	n := seq.param(0, 1)
	switch seq.Final {
	case 'A': // CUU
		v.moveCursorV(-n)
	case 'B', 'e': // CUD, VPR
		v.moveCursorV(n)
	case 'C', 'a': // CUF, HPR
		v.moveCursorH(n)
	case 'D': // CUB
		v.moveCursorH(-n)
	case 'E': // CNL
		v.moveCursorV(n)
		v.setCursor(v.cur.row, 0)
	case 'F': // CPL
		v.moveCursorV(-n)
		v.setCursor(v.cur.row, 0)
	case 'G', '`': // CHA, HPA
		v.setCursor(v.cur.row, n-1)
	case 'd': // VPA
		if v.modes.originMode {
			n += v.scrollTop
		}
		v.setCursor(n-1, v.cur.col)
	case 'H', 'f': // CUP, HVP
		v.setCursorPos(seq.param(0, 1), seq.param(1, 1))
	case 'I': // CHT
		v.tab(n)
	case 'Z': // CBT
		v.backTab(n)
	case 'J': // ED
		v.eraseInDisplay(seq.param(0, 0))
	case 'K': // EL
		v.eraseInLine(seq.param(0, 0))
	case 'X': // ECH
		v.eraseChars(n)
	case '@': // ICH
		v.insertChars(n)
	case 'P': // DCH
		v.deleteChars(n)
	case 'L': // IL
		v.insertLines(n)
	case 'M': // DL
		v.deleteLines(n)
	case 'S': // SU
		v.scrollUp(n)
	case 'T': // SD
		v.scrollDown(n)
	case 'r': // DECSTBM
		v.setScrollRegion(seq.param(0, 1), seq.param(1, v.rows))
	case 'm': // SGR
		v.selectGraphicRendition(seq.Params)
	case 'h': // SM
		v.setANSIModes(seq.Params, true)
	case 'l': // RM
		v.setANSIModes(seq.Params, false)
	case 'g': // TBC
		v.clearTabStops(seq.param(0, 0))
	case 'n': // DSR
		v.deviceStatus(seq.param(0, 0))
	case 'c': // DA1
		if seq.param(0, 0) == 0 {
			v.respond([]byte("\x1b[?62;22c"))
		}
	case 's': // SCOSC
		v.saveCursor()
	case 'u': // SCORC
		v.restoreCursor()
	case 't': // window manipulation, not supported
	default:
		return false
	}
	return true
}

func (v *VTerm) csiPrivate(seq *csiSequence) bool {
	switch {
	case seq.Private == '?' && seq.Final == 'h':
		v.setDECModes(seq.Params, true)
	case seq.Private == '?' && seq.Final == 'l':
		v.setDECModes(seq.Params, false)
	case seq.Private == '?' && seq.Final == 'n':
		v.deviceStatus(seq.param(0, 0))
	case seq.Private == '>' && seq.Final == 'c': // DA2
		v.respond([]byte("\x1b[>1;10;0c"))
	case seq.Private == '>' && (seq.Final == 'm' || seq.Final == 'n'):
		// xterm modifyOtherKeys
	case seq.Private == '?' && seq.Final == 'u',
		seq.Private == '>' && seq.Final == 'u',
		seq.Private == '<' && seq.Final == 'u',
		seq.Private == '=' && seq.Final == 'u':
		// kitty keyboard protocol, legacy encoding only
	default:
		return false
	}
	return true
}

func (v *VTerm) csiIntermediate(seq *csiSequence) bool {
	switch inter := seq.Intermediate[0]; {
	case inter == '!' && seq.Final == 'p' && seq.Private == 0: // DECSTR
		v.softReset()
	case inter == '$' && seq.Final == 'p': // DECRQM
		v.reportMode(seq)
	case inter == ' ' && seq.Final == 'q': // DECSCUSR
	default:
		return false
	}
	return true
}

func (v *VTerm) deviceStatus(n int) {
	switch n {
	case 5:
		v.respond([]byte("\x1b[0n"))
	case 6:
		row := v.cur.row + 1
		if v.modes.originMode {
			row -= v.scrollTop
		}
		var buf []byte
		buf = append(buf, "\x1b["...)
		buf = strconv.AppendInt(buf, int64(row), 10)
		buf = append(buf, ';')
		buf = strconv.AppendInt(buf, int64(v.cur.col+1), 10)
		buf = append(buf, 'R')
		v.respond(buf)
	}
}

// escDispatch executes an escape sequence (parser handler).
func (v *VTerm) escDispatch(intermediate []byte, final byte) bool {
	if len(intermediate) == 1 {
		switch intermediate[0] {
		case '#':
			if final == '8' {
				v.alignmentTest()
				return true
			}
			return false
		case '(', ')', '*', '+', '-', '.', '/':
			// charset designation, only UTF-8 is supported
			return true
		}
		return false
	}
	if len(intermediate) > 1 {
		return false
	}

	switch final {
	case '7': // DECSC
		v.saveCursor()
	case '8': // DECRC
		v.restoreCursor()
	case 'D': // IND
		v.index()
	case 'E': // NEL
		v.setCursor(v.cur.row, 0)
		v.index()
	case 'M': // RI
		v.reverseIndex()
	case 'H': // HTS
		v.setTabStop()
	case 'c': // RIS
		v.fullReset()
	case '=': // DECKPAM
		v.modes.appKeypad = true
	case '>': // DECKPNM
		v.modes.appKeypad = false
	case '\\': // ST, already handled by the string state
	default:
		return false
	}
	return true
}

// oscDispatch handles an operating system command (parser handler).
func (v *VTerm) oscDispatch(data []byte) bool {
	cmd, rest, _ := bytes.Cut(data, []byte{';'})
	n, err := strconv.Atoi(string(cmd))
	if err != nil {
		return false
	}
	switch n {
	case 0, 2:
		v.title = string(bytes.ToValidUTF8(rest, []byte("�")))
	case 1, 4, 7, 8, 10, 11, 12, 52, 104, 110, 111, 112, 133, 633, 1337:
		// icon name, palette, cwd, hyperlinks, colors, clipboard and shell
		// integration marks are accepted and dropped
	default:
		return false
	}
	return true
}
