// Package vterm is an in-memory terminal screen model. It parses a pty output
// stream into a grid of cells plus a bounded scrollback, and exposes
// copy-on-read snapshots and damage tracking for renderers.
package vterm

import (
	"sync"

	"github.com/andyrewlee/ptyhost/internal/perf"
)

// ResponseWriter receives bytes the terminal sends back to the pty
// (status reports, device attributes).
type ResponseWriter func([]byte)

type cursor struct {
	row, col    int
	visible     bool
	style       Style
	wrapPending bool
}

type savedCursor struct {
	row, col    int
	style       Style
	originMode  bool
	wrapPending bool
	valid       bool
}

type modes struct {
	appCursorKeys  bool
	appKeypad      bool
	originMode     bool
	autoWrap       bool
	bracketedPaste bool
	insert         bool
}

// VTerm is a virtual terminal. All methods are safe for concurrent use.
type VTerm struct {
	mu sync.Mutex

	rows, cols int
	screen     [][]Cell

	// Main screen while the alternate screen is active.
	primary       [][]Cell
	altScreen     bool
	primaryCursor savedCursor

	scrollback *scrollback
	// Rows pushed to scrollback by a shrinking resize and not yet pulled
	// back. Any real scroll makes them ordinary history.
	resizePushed int

	cur   cursor
	saved savedCursor

	// Scroll region, rows [scrollTop, scrollBottom).
	scrollTop    int
	scrollBottom int

	tabStops []bool

	modes modes
	title string

	parser         *parser
	damage         damageTracker
	render         renderCache
	responseWriter ResponseWriter
	replies        []byte
}

// New returns a blank terminal of the given size with DefaultScrollback.
func New(rows, cols int) *VTerm {
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}
	v := &VTerm{
		rows:       rows,
		cols:       cols,
		scrollback: newScrollback(DefaultScrollback),
	}
	v.parser = newParser(v)
	v.resetState()
	return v
}

// resetState puts everything except scrollback into the power-on state.
func (v *VTerm) resetState() {
	v.screen = makeScreen(v.rows, v.cols)
	v.primary = nil
	v.altScreen = false
	v.primaryCursor = savedCursor{}
	v.cur = cursor{visible: true}
	v.saved = savedCursor{}
	v.scrollTop = 0
	v.scrollBottom = v.rows
	v.modes = modes{autoWrap: true}
	v.title = ""
	v.resetTabStops()
	v.touchAll()
}

func makeScreen(rows, cols int) [][]Cell {
	screen := make([][]Cell, rows)
	for i := range screen {
		screen[i] = MakeBlankLine(cols)
	}
	return screen
}

// SetResponseWriter sets where terminal replies are written.
func (v *VTerm) SetResponseWriter(w ResponseWriter) {
	v.mu.Lock()
	v.responseWriter = w
	v.mu.Unlock()
}

// SetScrollbackLimit bounds the scrollback, evicting the oldest rows.
func (v *VTerm) SetScrollbackLimit(n int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.scrollback.SetLimit(n)
	if v.resizePushed > v.scrollback.Len() {
		v.resizePushed = v.scrollback.Len()
	}
}

// Feed parses p and applies it to the screen. Sequences split across calls
// are completed by later calls.
func (v *VTerm) Feed(p []byte) {
	if len(p) == 0 {
		return
	}
	done := perf.Time(perf.TimerVTermFeed)
	defer done()

	v.mu.Lock()
	v.parser.Advance(p)
	reply := v.takeReplies()
	w := v.responseWriter
	v.mu.Unlock()

	if w != nil && len(reply) > 0 {
		w(reply)
	}
}

// Write implements io.Writer on top of Feed.
func (v *VTerm) Write(p []byte) (int, error) {
	v.Feed(p)
	return len(p), nil
}

// Size returns the grid dimensions.
func (v *VTerm) Size() (rows, cols int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.rows, v.cols
}

// Title returns the window title set by OSC 0 or 2.
func (v *VTerm) Title() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.title
}

// Anomalies returns the number of malformed or unrecognized sequences seen.
func (v *VTerm) Anomalies() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.parser.anomalies
}

// ScrollbackLen returns the number of retired rows.
func (v *VTerm) ScrollbackLen() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.scrollback.Len()
}

// ScrollbackLines returns copies of scrollback rows [start, start+n), oldest
// first.
func (v *VTerm) ScrollbackLines(start, n int) [][]Cell {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.scrollback.Lines(start, n)
}

// ClearScrollback drops all retired rows.
func (v *VTerm) ClearScrollback() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.scrollback.Clear()
	v.resizePushed = 0
}

// Modes returns the input-affecting terminal modes.
func (v *VTerm) Modes() Modes {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.modesLocked()
}

func (v *VTerm) modesLocked() Modes {
	return Modes{
		AppCursorKeys:  v.modes.appCursorKeys,
		AppKeypad:      v.modes.appKeypad,
		BracketedPaste: v.modes.bracketedPaste,
		AltScreen:      v.altScreen,
		AutoWrap:       v.modes.autoWrap,
		OriginMode:     v.modes.originMode,
	}
}

// Modes mirrors the DEC private modes a host needs to know about.
type Modes struct {
	AppCursorKeys  bool
	AppKeypad      bool
	BracketedPaste bool
	AltScreen      bool
	AutoWrap       bool
	OriginMode     bool
}
