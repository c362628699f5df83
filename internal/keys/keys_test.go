package keys

import (
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/andyrewlee/ptyhost/internal/vterm"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.KeyPressMsg
		want string
	}{
		{"text", tea.KeyPressMsg{Code: 'a', Text: "a"}, "a"},
		{"shifted text", tea.KeyPressMsg{Code: 'a', Text: "A", Mod: tea.ModShift}, "A"},
		{"multi rune text", tea.KeyPressMsg{Code: tea.KeyExtended, Text: "é"}, "é"},
		{"code without text", tea.KeyPressMsg{Code: 'x'}, "x"},
		{"alt text", tea.KeyPressMsg{Code: 'f', Text: "f", Mod: tea.ModAlt}, "\x1bf"},
		{"ctrl+c", tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl}, "\x03"},
		{"ctrl+a", tea.KeyPressMsg{Code: 'a', Mod: tea.ModCtrl}, "\x01"},
		{"ctrl+z", tea.KeyPressMsg{Code: 'z', Mod: tea.ModCtrl}, "\x1a"},
		{"ctrl+alt+b", tea.KeyPressMsg{Code: 'b', Mod: tea.ModCtrl | tea.ModAlt}, "\x1b\x02"},
		{"ctrl+backslash", tea.KeyPressMsg{Code: '\\', Mod: tea.ModCtrl}, "\x1c"},
		{"ctrl+space", tea.KeyPressMsg{Code: tea.KeySpace, Mod: tea.ModCtrl}, "\x00"},
		{"enter", tea.KeyPressMsg{Code: tea.KeyEnter}, "\r"},
		{"shift+enter", tea.KeyPressMsg{Code: tea.KeyEnter, Mod: tea.ModShift}, "\x1b[13;2u"},
		{"alt+enter", tea.KeyPressMsg{Code: tea.KeyEnter, Mod: tea.ModAlt}, "\x1b\r"},
		{"tab", tea.KeyPressMsg{Code: tea.KeyTab}, "\t"},
		{"shift+tab", tea.KeyPressMsg{Code: tea.KeyTab, Mod: tea.ModShift}, "\x1b[Z"},
		{"backspace", tea.KeyPressMsg{Code: tea.KeyBackspace}, "\x7f"},
		{"ctrl+backspace", tea.KeyPressMsg{Code: tea.KeyBackspace, Mod: tea.ModCtrl}, "\x08"},
		{"space", tea.KeyPressMsg{Code: tea.KeySpace, Text: " "}, " "},
		{"escape", tea.KeyPressMsg{Code: tea.KeyEscape}, "\x1b"},
		{"up", tea.KeyPressMsg{Code: tea.KeyUp}, "\x1b[A"},
		{"down", tea.KeyPressMsg{Code: tea.KeyDown}, "\x1b[B"},
		{"right", tea.KeyPressMsg{Code: tea.KeyRight}, "\x1b[C"},
		{"left", tea.KeyPressMsg{Code: tea.KeyLeft}, "\x1b[D"},
		{"alt+up", tea.KeyPressMsg{Code: tea.KeyUp, Mod: tea.ModAlt}, "\x1b[1;3A"},
		{"ctrl+left", tea.KeyPressMsg{Code: tea.KeyLeft, Mod: tea.ModCtrl}, "\x1b[1;5D"},
		{"shift+ctrl+right", tea.KeyPressMsg{Code: tea.KeyRight, Mod: tea.ModCtrl | tea.ModShift}, "\x1b[1;6C"},
		{"home", tea.KeyPressMsg{Code: tea.KeyHome}, "\x1b[H"},
		{"end", tea.KeyPressMsg{Code: tea.KeyEnd}, "\x1b[F"},
		{"insert", tea.KeyPressMsg{Code: tea.KeyInsert}, "\x1b[2~"},
		{"delete", tea.KeyPressMsg{Code: tea.KeyDelete}, "\x1b[3~"},
		{"shift+delete", tea.KeyPressMsg{Code: tea.KeyDelete, Mod: tea.ModShift}, "\x1b[3;2~"},
		{"pgup", tea.KeyPressMsg{Code: tea.KeyPgUp}, "\x1b[5~"},
		{"pgdown", tea.KeyPressMsg{Code: tea.KeyPgDown}, "\x1b[6~"},
		{"f1", tea.KeyPressMsg{Code: tea.KeyF1}, "\x1bOP"},
		{"f4", tea.KeyPressMsg{Code: tea.KeyF4}, "\x1bOS"},
		{"shift+f1", tea.KeyPressMsg{Code: tea.KeyF1, Mod: tea.ModShift}, "\x1b[1;2P"},
		{"f5", tea.KeyPressMsg{Code: tea.KeyF5}, "\x1b[15~"},
		{"f10", tea.KeyPressMsg{Code: tea.KeyF10}, "\x1b[21~"},
		{"f12", tea.KeyPressMsg{Code: tea.KeyF12}, "\x1b[24~"},
		{"ctrl+f12", tea.KeyPressMsg{Code: tea.KeyF12, Mod: tea.ModCtrl}, "\x1b[24;5~"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(Encode(tt.msg, vterm.Modes{}))
			if got != tt.want {
				t.Fatalf("Encode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEncodeApplicationModes(t *testing.T) {
	modes := vterm.Modes{AppCursorKeys: true, AppKeypad: true}

	tests := []struct {
		name string
		msg  tea.KeyPressMsg
		want string
	}{
		{"up", tea.KeyPressMsg{Code: tea.KeyUp}, "\x1bOA"},
		{"left", tea.KeyPressMsg{Code: tea.KeyLeft}, "\x1bOD"},
		{"home", tea.KeyPressMsg{Code: tea.KeyHome}, "\x1bOH"},
		{"modified arrows stay CSI", tea.KeyPressMsg{Code: tea.KeyUp, Mod: tea.ModCtrl}, "\x1b[1;5A"},
		{"keypad enter", tea.KeyPressMsg{Code: tea.KeyKpEnter}, "\x1bOM"},
		{"pgup unaffected", tea.KeyPressMsg{Code: tea.KeyPgUp}, "\x1b[5~"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(Encode(tt.msg, modes)); got != tt.want {
				t.Fatalf("Encode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEncodeUnknownKey(t *testing.T) {
	if got := Encode(tea.KeyPressMsg{Code: tea.KeyCapsLock}, vterm.Modes{}); got != nil {
		t.Fatalf("Encode(capslock) = %q, want nil", got)
	}
}

func TestPaste(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		bracketed bool
		want      string
	}{
		{"plain", "ls -la", false, "ls -la"},
		{"newlines become CR", "a\nb\r\nc", false, "a\rb\rc"},
		{"bracketed", "echo hi\n", true, "\x1b[200~echo hi\r\x1b[201~"},
		{"end marker stripped", "x\x1b[201~rm -rf", true, "\x1b[200~xrm -rf\x1b[201~"},
		{"empty bracketed", "", true, "\x1b[200~\x1b[201~"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(Paste(tt.text, tt.bracketed)); got != tt.want {
				t.Fatalf("Paste() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestModifierParam(t *testing.T) {
	tests := []struct {
		mod  tea.KeyMod
		want int
	}{
		{0, 0},
		{tea.ModShift, 2},
		{tea.ModAlt, 3},
		{tea.ModShift | tea.ModAlt, 4},
		{tea.ModCtrl, 5},
		{tea.ModCtrl | tea.ModShift | tea.ModAlt, 8},
	}
	for _, tt := range tests {
		if got := modifierParam(tt.mod); got != tt.want {
			t.Errorf("modifierParam(%d) = %d, want %d", tt.mod, got, tt.want)
		}
	}
}
