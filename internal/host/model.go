// Package host is the interactive front end: a Bubble Tea program that shows
// one pty session's screen model and forwards keys to it.
package host

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/andyrewlee/ptyhost/internal/config"
	"github.com/andyrewlee/ptyhost/internal/keymap"
	"github.com/andyrewlee/ptyhost/internal/keys"
	"github.com/andyrewlee/ptyhost/internal/logging"
	"github.com/andyrewlee/ptyhost/internal/pty"
	"github.com/andyrewlee/ptyhost/internal/vterm"
)

const (
	statusBarHeight = 1
	noticeDuration  = 2 * time.Second
)

// Session is the part of *pty.Session the host drives.
type Session interface {
	ReadLoop(onBytes func([]byte)) error
	Write(p []byte) (int, error)
	Resize(rows, cols int) error
	Done() <-chan struct{}
	Status() pty.Status
	Command() string
}

// configMsg carries a reloaded configuration.
type configMsg struct{ cfg *config.Config }

// ConfigChanged wraps a reloaded config for Program.Send.
func ConfigChanged(cfg *config.Config) tea.Msg { return configMsg{cfg: cfg} }

type clearNoticeMsg struct{ seq int }

// Model is the host's Bubble Tea model.
type Model struct {
	session Session
	term    *vterm.VTerm
	keys    keymap.KeyMap
	copyFn  func(string) error

	width, height int
	offset        int

	exited bool
	status pty.Status

	notice    string
	noticeSeq int
}

// New returns a model for a started session and its screen model.
func New(s Session, term *vterm.VTerm, km keymap.KeyMap) *Model {
	return &Model{
		session: s,
		term:    term,
		keys:    km,
		copyFn:  newScreenClipboard().Copy,
		status:  s.Status(),
	}
}

// Status returns the last session status the model saw.
func (m *Model) Status() pty.Status { return m.status }

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyPressMsg:
		return m.handleKey(msg)

	case tea.PasteMsg:
		if m.exited {
			return m, nil
		}
		m.offset = 0
		m.write(keys.Paste(msg.Content, m.term.Modes().BracketedPaste))
		return m, nil

	case outputMsg:
		if m.offset > 0 && m.term.Modes().AltScreen {
			m.offset = 0
		}
		return m, nil

	case exitedMsg:
		m.exited = true
		m.status = msg.status
		if msg.readErr != nil {
			logging.Warn("host: read loop ended with %v", msg.readErr)
		}
		logging.Info("host: session exited code=%d", msg.status.ExitCode)
		return m, tea.Quit

	case configMsg:
		m.applyConfig(msg.cfg)
		return m, m.flash("config reloaded")

	case clearNoticeMsg:
		if msg.seq == m.noticeSeq {
			m.notice = ""
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Copy):
		text := m.term.Snapshot().Text()
		if err := m.copyFn(text); err != nil {
			if errors.Is(err, errNothingToCopy) {
				return m, m.flash("nothing to copy")
			}
			logging.Warn("host: copy failed: %v", err)
			return m, m.flash("copy failed")
		}
		return m, m.flash("copied")
	case key.Matches(msg, m.keys.ScrollUp):
		m.scroll(m.page())
		return m, nil
	case key.Matches(msg, m.keys.ScrollDown):
		m.scroll(-m.page())
		return m, nil
	case key.Matches(msg, m.keys.ScrollBottom):
		m.offset = 0
		return m, nil
	}

	if m.exited {
		return m, nil
	}
	b := keys.Encode(msg, m.term.Modes())
	if len(b) == 0 {
		return m, nil
	}
	m.offset = 0
	m.write(b)
	return m, nil
}

func (m *Model) write(b []byte) {
	if _, err := m.session.Write(b); err != nil {
		logging.Debug("host: write dropped: %v", err)
	}
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	rows := height - statusBarHeight
	if rows < 1 {
		rows = 1
	}
	cols := width
	if cols < 1 {
		cols = 1
	}
	m.term.Resize(rows, cols)
	if err := m.session.Resize(rows, cols); err != nil {
		logging.Warn("host: resize to %dx%d: %v", cols, rows, err)
	}
	m.scroll(0)
}

func (m *Model) page() int {
	rows, _ := m.term.Size()
	if rows > 1 {
		return rows / 2
	}
	return 1
}

// scroll moves the view delta rows back into history.
func (m *Model) scroll(delta int) {
	if m.term.Modes().AltScreen {
		m.offset = 0
		return
	}
	m.offset += delta
	if limit := m.term.ScrollbackLen(); m.offset > limit {
		m.offset = limit
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func (m *Model) applyConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	m.term.SetScrollbackLimit(cfg.ScrollbackLines)
	m.keys = keymap.New(cfg.KeyMap)
	m.scroll(0)
}

func (m *Model) flash(text string) tea.Cmd {
	m.noticeSeq++
	m.notice = text
	seq := m.noticeSeq
	return tea.Tick(noticeDuration, func(time.Time) tea.Msg {
		return clearNoticeMsg{seq: seq}
	})
}

// View implements tea.Model.
func (m *Model) View() tea.View {
	lines := m.term.RenderView(m.offset)
	body := strings.Join(lines, "\n")

	view := tea.NewView(body + "\n" + m.statusBar())
	view.AltScreen = true
	view.WindowTitle = m.windowTitle()

	if !m.exited && m.offset == 0 {
		if c := m.term.Cursor(); c.Visible {
			view.Cursor = tea.NewCursor(c.Col, c.Row)
		}
	}
	return view
}

func (m *Model) windowTitle() string {
	if title := m.term.Title(); title != "" {
		return title
	}
	return m.session.Command()
}

// minTitleWidth is the narrowest truncated title worth showing.
const minTitleWidth = 4

// statusBar lays out, by priority: history offset and notice, run state,
// key hints, then the title in whatever space is left.
func (m *Model) statusBar() string {
	running := !m.exited
	state := "running"
	if !running {
		state = fmt.Sprintf("exited %d", m.status.ExitCode)
	}

	var extra string
	if m.offset > 0 {
		extra += hintStyle.Render(fmt.Sprintf("history -%d", m.offset))
	}
	if m.notice != "" {
		extra += noticeStyle.Render(m.notice)
	}
	left := extra
	if seg := stateStyle(running, m.status.ExitCode).Render(state); lipgloss.Width(seg)+lipgloss.Width(extra) <= m.width {
		left = seg + extra
	}

	right := hintStyle.Render(m.keys.Hints())
	room := m.width - lipgloss.Width(left) - lipgloss.Width(right) - titleStyle.GetHorizontalFrameSize()
	if room < minTitleWidth {
		right = ""
		room = m.width - lipgloss.Width(left) - titleStyle.GetHorizontalFrameSize()
	}
	if room >= minTitleWidth {
		left = titleStyle.Render(ansi.Truncate(m.windowTitle(), room, "…")) + left
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		return ansi.Truncate(left, m.width, "")
	}
	return left + barStyle.Render(strings.Repeat(" ", gap)) + right
}
