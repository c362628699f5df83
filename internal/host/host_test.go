package host

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/andyrewlee/ptyhost/internal/config"
	"github.com/andyrewlee/ptyhost/internal/keymap"
	"github.com/andyrewlee/ptyhost/internal/pty"
	"github.com/andyrewlee/ptyhost/internal/vterm"
)

type fakeSession struct {
	mu      sync.Mutex
	written []string
	rows    int
	cols    int
	chunks  []string
	readErr error
	done    chan struct{}
	status  pty.Status
}

func newFakeSession() *fakeSession {
	return &fakeSession{done: make(chan struct{}), status: pty.Status{State: pty.StateRunning}}
}

func (f *fakeSession) ReadLoop(onBytes func([]byte)) error {
	for _, c := range f.chunks {
		onBytes([]byte(c))
	}
	return f.readErr
}

func (f *fakeSession) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.written = append(f.written, string(p))
	return len(p), nil
}

func (f *fakeSession) Resize(rows, cols int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows, f.cols = rows, cols
	return nil
}

func (f *fakeSession) Done() <-chan struct{} { return f.done }

func (f *fakeSession) Status() pty.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

func (f *fakeSession) Command() string { return "/bin/sh" }

func (f *fakeSession) input() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return strings.Join(f.written, "")
}

func newTestModel(t *testing.T) (*Model, *fakeSession, *vterm.VTerm) {
	t.Helper()
	s := newFakeSession()
	vt := vterm.New(5, 20)
	m := New(s, vt, keymap.New(config.KeyMapConfig{}))
	m.copyFn = func(string) error { return errors.New("no clipboard in tests") }
	m.Update(tea.WindowSizeMsg{Width: 20, Height: 6})
	return m, s, vt
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestWindowSizeResizesBothSides(t *testing.T) {
	m, s, vt := newTestModel(t)

	m.Update(tea.WindowSizeMsg{Width: 100, Height: 31})
	if rows, cols := vt.Size(); rows != 30 || cols != 100 {
		t.Fatalf("vterm size = %dx%d, want 100x30", cols, rows)
	}
	if s.rows != 30 || s.cols != 100 {
		t.Fatalf("pty size = %dx%d, want 100x30", s.cols, s.rows)
	}

	m.Update(tea.WindowSizeMsg{Width: 0, Height: 0})
	if rows, cols := vt.Size(); rows != 1 || cols != 1 {
		t.Fatalf("degenerate window should clamp to 1x1, got %dx%d", cols, rows)
	}
}

func TestKeysAreForwarded(t *testing.T) {
	m, s, vt := newTestModel(t)

	m.Update(tea.KeyPressMsg{Code: 'l', Text: "l"})
	m.Update(tea.KeyPressMsg{Code: 's', Text: "s"})
	m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	m.Update(tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	if got := s.input(); got != "ls\r\x03" {
		t.Fatalf("input = %q", got)
	}

	vt.Feed([]byte(ansi.SetModeCursorKeys))
	m.Update(tea.KeyPressMsg{Code: tea.KeyUp})
	if got := s.input(); !strings.HasSuffix(got, "\x1bOA") {
		t.Fatalf("application cursor mode not honored: %q", got)
	}
}

func TestPasteHonorsBracketedMode(t *testing.T) {
	m, s, vt := newTestModel(t)

	m.Update(tea.PasteMsg{Content: "a\nb"})
	if got := s.input(); got != "a\rb" {
		t.Fatalf("plain paste = %q", got)
	}

	vt.Feed([]byte(ansi.SetModeBracketedPaste))
	m.Update(tea.PasteMsg{Content: "x"})
	if got := s.input(); !strings.HasSuffix(got, "\x1b[200~x\x1b[201~") {
		t.Fatalf("bracketed paste = %q", got)
	}
}

func TestQuitBinding(t *testing.T) {
	m, s, _ := newTestModel(t)
	_, cmd := m.Update(tea.KeyPressMsg{Code: ']', Mod: tea.ModCtrl})
	if !isQuit(cmd) {
		t.Fatal("ctrl+] should quit")
	}
	if s.input() != "" {
		t.Fatalf("host binding leaked to child: %q", s.input())
	}
}

func TestScrollback(t *testing.T) {
	m, s, vt := newTestModel(t)
	for i := 0; i < 20; i++ {
		vt.Feed([]byte("line\r\n"))
	}
	if vt.ScrollbackLen() == 0 {
		t.Fatal("expected history")
	}

	m.Update(tea.KeyPressMsg{Code: tea.KeyPgUp, Mod: tea.ModShift})
	if m.offset != 2 {
		t.Fatalf("offset after one page = %d, want 2", m.offset)
	}
	if !strings.Contains(m.statusBar(), "history -2") {
		t.Fatalf("status bar = %q", ansi.Strip(m.statusBar()))
	}

	for i := 0; i < 50; i++ {
		m.Update(tea.KeyPressMsg{Code: tea.KeyPgUp, Mod: tea.ModShift})
	}
	if m.offset != vt.ScrollbackLen() {
		t.Fatalf("offset %d should clamp to history %d", m.offset, vt.ScrollbackLen())
	}

	m.Update(tea.KeyPressMsg{Code: tea.KeyPgDown, Mod: tea.ModShift})
	if m.offset != vt.ScrollbackLen()-2 {
		t.Fatalf("scroll down offset = %d", m.offset)
	}

	// Typing returns to the live screen.
	m.Update(tea.KeyPressMsg{Code: 'x', Text: "x"})
	if m.offset != 0 || s.input() != "x" {
		t.Fatalf("offset = %d input = %q", m.offset, s.input())
	}
}

func TestAltScreenDisablesScrollback(t *testing.T) {
	m, _, vt := newTestModel(t)
	for i := 0; i < 20; i++ {
		vt.Feed([]byte("line\r\n"))
	}
	vt.Feed([]byte(ansi.SetModeAltScreenSaveCursor))
	m.Update(tea.KeyPressMsg{Code: tea.KeyPgUp, Mod: tea.ModShift})
	if m.offset != 0 {
		t.Fatalf("alt screen offset = %d", m.offset)
	}
}

func TestCopyReportsFailure(t *testing.T) {
	m, _, vt := newTestModel(t)
	vt.Feed([]byte("hello"))

	var copied string
	m.copyFn = func(s string) error {
		copied = s
		return nil
	}
	_, cmd := m.Update(tea.KeyPressMsg{Code: 'c', Mod: tea.ModAlt})
	if !strings.HasPrefix(copied, "hello") {
		t.Fatalf("copied %q", copied)
	}
	if m.notice != "copied" || cmd == nil {
		t.Fatalf("notice = %q", m.notice)
	}
	if msg := cmd(); msg != (clearNoticeMsg{seq: m.noticeSeq}) {
		t.Fatalf("notice timer msg = %#v", msg)
	}
	m.Update(clearNoticeMsg{seq: m.noticeSeq})
	if m.notice != "" {
		t.Fatal("notice not cleared")
	}

	m.copyFn = func(string) error { return errors.New("boom") }
	m.Update(tea.KeyPressMsg{Code: 'c', Mod: tea.ModAlt})
	if m.notice != "copy failed" {
		t.Fatalf("notice = %q", m.notice)
	}

	m.copyFn = screenClipboard{goos: "linux", write: func(string) error { return nil }}.Copy
	vt.Feed([]byte("\x1b[2J"))
	m.Update(tea.KeyPressMsg{Code: 'c', Mod: tea.ModAlt})
	if m.notice != "nothing to copy" {
		t.Fatalf("notice = %q", m.notice)
	}
}

func TestExitQuitsAndStopsInput(t *testing.T) {
	m, s, _ := newTestModel(t)

	_, cmd := m.Update(exitedMsg{status: pty.Status{State: pty.StateExited, ExitCode: 3}})
	if !isQuit(cmd) {
		t.Fatal("exit should quit the program")
	}
	if m.Status().ExitCode != 3 {
		t.Fatalf("status = %+v", m.Status())
	}
	if bar := ansi.Strip(m.statusBar()); !strings.Contains(bar, "exited 3") {
		t.Fatalf("status bar = %q", bar)
	}

	m.Update(tea.KeyPressMsg{Code: 'a', Text: "a"})
	if s.input() != "" {
		t.Fatalf("input after exit = %q", s.input())
	}
}

func TestConfigReloadAppliesScrollbackLimit(t *testing.T) {
	m, _, vt := newTestModel(t)
	for i := 0; i < 30; i++ {
		vt.Feed([]byte("line\r\n"))
	}

	cfg := &config.Config{ScrollbackLines: 3, KeyMap: config.KeyMapConfig{
		Bindings: map[string][]string{"quit": {"f10"}},
	}}
	m.Update(ConfigChanged(cfg))
	if got := vt.ScrollbackLen(); got != 3 {
		t.Fatalf("ScrollbackLen() = %d, want 3", got)
	}
	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyF10})
	if !isQuit(cmd) {
		t.Fatal("reloaded keymap not applied")
	}
}

func TestStatusBarShowsTitle(t *testing.T) {
	m, _, vt := newTestModel(t)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 10})

	if bar := ansi.Strip(m.statusBar()); !strings.Contains(bar, "/bin/sh") || !strings.Contains(bar, "running") {
		t.Fatalf("status bar = %q", bar)
	}
	vt.Feed([]byte(ansi.SetWindowTitle("vim")))
	if bar := ansi.Strip(m.statusBar()); !strings.Contains(bar, "vim") {
		t.Fatalf("status bar = %q", bar)
	}
	if got := ansi.StringWidth(m.statusBar()); got != 80 {
		t.Fatalf("status bar width = %d, want 80", got)
	}
}

func TestStatusBarNarrowKeepsHistoryAndNotice(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.offset = 2

	tests := []struct {
		width int
		want  []string
		drop  []string
	}{
		{100, []string{"/bin/sh", "running", "history -2", "quit"}, nil},
		{30, []string{"running", "history -2"}, []string{"quit"}},
		{20, []string{"history -2"}, []string{"running"}},
		{12, []string{"history -2"}, []string{"/bin"}},
	}
	for _, tt := range tests {
		m.width = tt.width
		bar := ansi.Strip(m.statusBar())
		for _, want := range tt.want {
			if !strings.Contains(bar, want) {
				t.Errorf("width %d: status bar %q missing %q", tt.width, bar, want)
			}
		}
		for _, drop := range tt.drop {
			if strings.Contains(bar, drop) {
				t.Errorf("width %d: status bar %q should drop %q", tt.width, bar, drop)
			}
		}
		if got := ansi.StringWidth(bar); got > tt.width {
			t.Errorf("width %d: status bar is %d cells wide", tt.width, got)
		}
	}

	m.width = 20
	m.notice = "copied"
	bar := ansi.Strip(m.statusBar())
	if !strings.Contains(bar, "history -2") || !strings.Contains(bar, "copied") {
		t.Fatalf("status bar = %q", bar)
	}
}

func TestRunPumpFeedsAndReportsExit(t *testing.T) {
	s := newFakeSession()
	s.chunks = []string{"hel", "lo\r\nworld"}
	s.status = pty.Status{State: pty.StateExited, ExitCode: 0}
	close(s.done)

	vt := vterm.New(3, 20)
	var mu sync.Mutex
	var msgs []tea.Msg
	send := func(msg tea.Msg) {
		mu.Lock()
		msgs = append(msgs, msg)
		mu.Unlock()
	}

	finished := make(chan struct{})
	go func() {
		RunPump(s, vt, send, time.Millisecond)
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(3 * time.Second):
		t.Fatal("pump did not return")
	}

	snap := vt.Snapshot()
	if snap.Line(0) != "hello" || snap.Line(1) != "world" {
		t.Fatalf("screen = %q", snap.Text())
	}

	mu.Lock()
	defer mu.Unlock()
	if len(msgs) < 2 {
		t.Fatalf("messages = %#v", msgs)
	}
	last, ok := msgs[len(msgs)-1].(exitedMsg)
	if !ok || last.status.State != pty.StateExited {
		t.Fatalf("last message = %#v", msgs[len(msgs)-1])
	}
	if _, ok := msgs[len(msgs)-2].(outputMsg); !ok {
		t.Fatalf("expected a redraw before exit, got %#v", msgs[len(msgs)-2])
	}
}

func TestResultExitCode(t *testing.T) {
	tests := []struct {
		res  Result
		want int
	}{
		{Result{Status: pty.Status{ExitCode: 0}}, 0},
		{Result{Status: pty.Status{ExitCode: 7}}, 7},
		{Result{Status: pty.Status{ExitCode: pty.ExitUnknown}}, 1},
		{Result{Status: pty.Status{ExitCode: 143}, Quit: true}, 0},
	}
	for _, tt := range tests {
		if got := tt.res.ExitCode(); got != tt.want {
			t.Errorf("%+v.ExitCode() = %d, want %d", tt.res, got, tt.want)
		}
	}
}
