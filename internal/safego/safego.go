// Package safego runs session workers with panic recovery so a bad chunk of
// pty output or a misbehaving callback cannot take the whole host down.
package safego

import (
	"runtime/debug"
	"sync"

	"github.com/andyrewlee/ptyhost/internal/logging"
)

// PanicHandler receives panic details from recovered goroutines.
type PanicHandler func(name string, recovered any, stack []byte)

var (
	panicHandlerMu sync.RWMutex
	panicHandler   PanicHandler
)

// SetPanicHandler registers a global handler for recovered panics.
func SetPanicHandler(handler PanicHandler) {
	panicHandlerMu.Lock()
	panicHandler = handler
	panicHandlerMu.Unlock()
}

// Run executes fn and converts panics into logged errors.
// Runtime-fatal errors (e.g. concurrent map writes) are not recoverable.
func Run(name string, fn func()) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		label := name
		if label == "" {
			label = "goroutine"
		}
		stack := debug.Stack()
		logging.Error("panic in %s: %v\n%s", label, r, stack)

		panicHandlerMu.RLock()
		handler := panicHandler
		panicHandlerMu.RUnlock()
		if handler != nil {
			func() {
				defer func() { _ = recover() }()
				handler(label, r, stack)
			}()
		}
	}()
	fn()
}

// Go runs fn in a new goroutine with panic recovery.
func Go(name string, fn func()) {
	go Run(name, fn)
}

// Start is Go with a completion signal: the returned channel is closed once
// fn has returned or panicked.
func Start(name string, fn func()) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		Run(name, fn)
	}()
	return done
}
