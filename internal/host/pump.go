package host

import (
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/andyrewlee/ptyhost/internal/logging"
	"github.com/andyrewlee/ptyhost/internal/pty"
	"github.com/andyrewlee/ptyhost/internal/safego"
	"github.com/andyrewlee/ptyhost/internal/vterm"
)

const (
	defaultFrameInterval = 16 * time.Millisecond
	exitWaitTimeout      = 2 * time.Second
)

// outputMsg tells the model the screen model changed.
type outputMsg struct{}

// exitedMsg is sent once after the read loop ends and the child is reaped.
type exitedMsg struct {
	status  pty.Status
	readErr error
}

// RunPump feeds pty output into term and tells the program to redraw at most
// once per frame. It returns after end-of-stream, once an exitedMsg has been
// sent.
func RunPump(s Session, term *vterm.VTerm, send func(tea.Msg), frame time.Duration) {
	if frame <= 0 {
		frame = defaultFrameInterval
	}

	dirty := make(chan struct{}, 1)
	readDone := make(chan error, 1)

	safego.Go("host-pty-read", func() {
		readDone <- s.ReadLoop(func(p []byte) {
			term.Feed(p)
			select {
			case dirty <- struct{}{}:
			default:
			}
		})
	})

	ticker := time.NewTicker(frame)
	defer ticker.Stop()

	pending := false
	for {
		select {
		case <-dirty:
			pending = true
		case <-ticker.C:
			if pending {
				send(outputMsg{})
				pending = false
			}
		case err := <-readDone:
			send(outputMsg{})
			select {
			case <-s.Done():
			case <-time.After(exitWaitTimeout):
				// Something still holds the child alive after the pty hung up.
				logging.Warn("host: child not reaped %v after end of output", exitWaitTimeout)
			}
			send(exitedMsg{status: s.Status(), readErr: err})
			return
		}
	}
}
