// Package keymap holds the host's own key bindings. Keys that match none of
// them are forwarded to the program in the pty.
package keymap

import (
	"strings"

	"charm.land/bubbles/v2/key"

	"github.com/andyrewlee/ptyhost/internal/config"
)

// Action identifies a configurable keybinding.
type Action string

const (
	ActionQuit         Action = "quit"
	ActionCopy         Action = "copy"
	ActionScrollUp     Action = "scroll_up"
	ActionScrollDown   Action = "scroll_down"
	ActionScrollBottom Action = "scroll_bottom"
)

type bindingDef struct {
	action Action
	keys   []string
	desc   string
}

// KeyMap defines all host keybindings.
type KeyMap struct {
	Quit         key.Binding
	Copy         key.Binding
	ScrollUp     key.Binding
	ScrollDown   key.Binding
	ScrollBottom key.Binding
}

// New builds a keymap from defaults, applying any user overrides.
func New(cfg config.KeyMapConfig) KeyMap {
	return KeyMap{
		Quit: bindingFromDef(cfg, bindingDef{
			action: ActionQuit,
			keys:   []string{"ctrl+]"},
			desc:   "quit",
		}),
		Copy: bindingFromDef(cfg, bindingDef{
			action: ActionCopy,
			keys:   []string{"alt+c"},
			desc:   "copy screen",
		}),
		ScrollUp: bindingFromDef(cfg, bindingDef{
			action: ActionScrollUp,
			keys:   []string{"shift+pgup"},
			desc:   "scroll up",
		}),
		ScrollDown: bindingFromDef(cfg, bindingDef{
			action: ActionScrollDown,
			keys:   []string{"shift+pgdown"},
			desc:   "scroll down",
		}),
		ScrollBottom: bindingFromDef(cfg, bindingDef{
			action: ActionScrollBottom,
			keys:   []string{"shift+end"},
			desc:   "live view",
		}),
	}
}

func bindingFromDef(cfg config.KeyMapConfig, def bindingDef) key.Binding {
	keys, ok := cfg.BindingFor(string(def.action))
	if !ok {
		keys = def.keys
	}
	helpKey := strings.Join(keys, "/")
	return key.NewBinding(
		key.WithKeys(keys...),
		key.WithHelp(helpKey, def.desc),
	)
}

// PrimaryKey returns the first key in the binding, if present.
func PrimaryKey(binding key.Binding) string {
	keys := binding.Keys()
	if len(keys) == 0 {
		return ""
	}
	return keys[0]
}

// BindingHint returns a single key hint for a binding, falling back to help text.
func BindingHint(binding key.Binding) string {
	key := PrimaryKey(binding)
	if key == "" {
		return binding.Help().Key
	}
	return key
}

// Hints renders "key desc" pairs for the status bar.
func (km KeyMap) Hints() string {
	var parts []string
	for _, b := range []key.Binding{km.Quit, km.Copy, km.ScrollUp} {
		if !b.Enabled() {
			continue
		}
		parts = append(parts, BindingHint(b)+" "+b.Help().Desc)
	}
	return strings.Join(parts, "  ")
}

// ActionInfo describes a configurable action for UI display.
type ActionInfo struct {
	Action Action
	Desc   string
}

// ActionInfos returns the ordered list of actions for UI display.
func ActionInfos() []ActionInfo {
	return []ActionInfo{
		{Action: ActionQuit, Desc: "Quit and close the session"},
		{Action: ActionCopy, Desc: "Copy visible screen text"},
		{Action: ActionScrollUp, Desc: "Scroll into history"},
		{Action: ActionScrollDown, Desc: "Scroll toward live output"},
		{Action: ActionScrollBottom, Desc: "Return to live output"},
	}
}

// BindingForAction returns the binding for the given action.
func BindingForAction(km KeyMap, action Action) key.Binding {
	switch action {
	case ActionQuit:
		return km.Quit
	case ActionCopy:
		return km.Copy
	case ActionScrollUp:
		return km.ScrollUp
	case ActionScrollDown:
		return km.ScrollDown
	case ActionScrollBottom:
		return km.ScrollBottom
	default:
		return key.Binding{}
	}
}
