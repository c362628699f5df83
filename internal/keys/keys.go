// Package keys turns host key presses into the byte sequences an xterm-like
// terminal would send to the program running in the pty.
package keys

import (
	"strconv"
	"strings"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/andyrewlee/ptyhost/internal/logging"
	"github.com/andyrewlee/ptyhost/internal/vterm"
)

const (
	esc = "\x1b"
	csi = "\x1b["
	ss3 = "\x1bO"
)

// Encode converts a key press to terminal input. Cursor keys honor
// application cursor mode. Unknown keys encode to nil.
func Encode(msg tea.KeyPressMsg, modes vterm.Modes) []byte {
	key := msg.Key()
	logging.Debug("keys: code=%d mod=%d str=%q", key.Code, key.Mod, msg.String())

	if b, ok := encodeSpecial(key, modes); ok {
		return b
	}

	if key.Mod&tea.ModCtrl != 0 {
		if c, ok := ctrlByte(key.Code); ok {
			if key.Mod&tea.ModAlt != 0 {
				return []byte{0x1b, c}
			}
			return []byte{c}
		}
	}

	text := key.Text
	if text == "" && key.Code > 0x20 && key.Code != 0x7f && key.Code < tea.KeyExtended {
		text = string(key.Code)
	}
	if text == "" {
		if s := msg.String(); len(s) == 1 {
			text = s
		}
	}
	if text == "" {
		return nil
	}
	if key.Mod&tea.ModAlt != 0 {
		return []byte(esc + text)
	}
	return []byte(text)
}

func encodeSpecial(key tea.Key, modes vterm.Modes) ([]byte, bool) {
	mod := modifierParam(key.Mod)
	alt := key.Mod&tea.ModAlt != 0

	switch key.Code {
	case tea.KeyEnter, tea.KeyKpEnter:
		if key.Mod&tea.ModShift != 0 {
			return []byte(csi + "13;2u"), true
		}
		if key.Code == tea.KeyKpEnter && modes.AppKeypad {
			return []byte(ss3 + "M"), true
		}
		return prefixAlt(alt, "\r"), true
	case tea.KeyBackspace:
		if key.Mod&tea.ModCtrl != 0 {
			return prefixAlt(alt, "\x08"), true
		}
		return prefixAlt(alt, "\x7f"), true
	case tea.KeyTab:
		if key.Mod&tea.ModShift != 0 {
			return []byte(csi + "Z"), true
		}
		return prefixAlt(alt, "\t"), true
	case tea.KeySpace:
		if key.Mod&tea.ModCtrl != 0 {
			return prefixAlt(alt, "\x00"), true
		}
		return prefixAlt(alt, " "), true
	case tea.KeyEscape:
		return prefixAlt(alt, esc), true

	case tea.KeyUp:
		return cursorKey('A', mod, modes), true
	case tea.KeyDown:
		return cursorKey('B', mod, modes), true
	case tea.KeyRight:
		return cursorKey('C', mod, modes), true
	case tea.KeyLeft:
		return cursorKey('D', mod, modes), true
	case tea.KeyHome:
		return cursorKey('H', mod, modes), true
	case tea.KeyEnd:
		return cursorKey('F', mod, modes), true

	case tea.KeyInsert:
		return tildeKey(2, mod), true
	case tea.KeyDelete:
		return tildeKey(3, mod), true
	case tea.KeyPgUp:
		return tildeKey(5, mod), true
	case tea.KeyPgDown:
		return tildeKey(6, mod), true

	case tea.KeyF1:
		return ss3Key('P', mod), true
	case tea.KeyF2:
		return ss3Key('Q', mod), true
	case tea.KeyF3:
		return ss3Key('R', mod), true
	case tea.KeyF4:
		return ss3Key('S', mod), true
	case tea.KeyF5:
		return tildeKey(15, mod), true
	case tea.KeyF6:
		return tildeKey(17, mod), true
	case tea.KeyF7:
		return tildeKey(18, mod), true
	case tea.KeyF8:
		return tildeKey(19, mod), true
	case tea.KeyF9:
		return tildeKey(20, mod), true
	case tea.KeyF10:
		return tildeKey(21, mod), true
	case tea.KeyF11:
		return tildeKey(23, mod), true
	case tea.KeyF12:
		return tildeKey(24, mod), true
	}
	return nil, false
}

// modifierParam returns the xterm modifier parameter, or 0 when no modifier
// applies.
func modifierParam(m tea.KeyMod) int {
	n := 0
	if m&tea.ModShift != 0 {
		n |= 1
	}
	if m&tea.ModAlt != 0 {
		n |= 2
	}
	if m&tea.ModCtrl != 0 {
		n |= 4
	}
	if n == 0 {
		return 0
	}
	return n + 1
}

func cursorKey(final byte, mod int, modes vterm.Modes) []byte {
	if mod != 0 {
		return []byte(csi + "1;" + strconv.Itoa(mod) + string(final))
	}
	if modes.AppCursorKeys {
		return []byte(ss3 + string(final))
	}
	return []byte(csi + string(final))
}

func tildeKey(n, mod int) []byte {
	s := csi + strconv.Itoa(n)
	if mod != 0 {
		s += ";" + strconv.Itoa(mod)
	}
	return []byte(s + "~")
}

func ss3Key(final byte, mod int) []byte {
	if mod != 0 {
		return []byte(csi + "1;" + strconv.Itoa(mod) + string(final))
	}
	return []byte(ss3 + string(final))
}

func prefixAlt(alt bool, s string) []byte {
	if alt {
		return []byte(esc + s)
	}
	return []byte(s)
}

func ctrlByte(code rune) (byte, bool) {
	switch {
	case code >= 'a' && code <= 'z':
		return byte(code-'a') + 1, true
	case code >= 'A' && code <= 'Z':
		return byte(code-'A') + 1, true
	}
	switch code {
	case '@', '2':
		return 0x00, true
	case '[', '3':
		return 0x1b, true
	case '\\', '4':
		return 0x1c, true
	case ']', '5':
		return 0x1d, true
	case '^', '6':
		return 0x1e, true
	case '_', '-', '7':
		return 0x1f, true
	case '?', '8':
		return 0x7f, true
	}
	return 0, false
}

// Paste encodes pasted text. Line endings become CR like a typed Enter. With
// bracketed paste on the text is wrapped in paste markers, and any end marker
// inside the text is removed so the paste cannot terminate early.
func Paste(text string, bracketed bool) []byte {
	text = strings.ReplaceAll(text, "\r\n", "\r")
	text = strings.ReplaceAll(text, "\n", "\r")
	if !bracketed {
		return []byte(text)
	}
	text = strings.ReplaceAll(text, ansi.BracketedPasteEnd, "")
	return []byte(ansi.BracketedPasteStart + text + ansi.BracketedPasteEnd)
}
