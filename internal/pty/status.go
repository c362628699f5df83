package pty

import (
	"errors"
	"os/exec"
	"syscall"
)

// State is a session lifecycle state.
type State int

const (
	StateStarting State = iota
	StateRunning
	StateExited
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateExited:
		return "exited"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions can happen.
func (s State) Terminal() bool {
	return s == StateExited || s == StateFailed
}

// ExitUnknown is the exit code recorded when the wait error carries no exit
// status.
const ExitUnknown = -1

// Status is a point-in-time view of a session.
type Status struct {
	State State
	// ExitCode is valid in StateExited. A child killed by a signal reports
	// 128+signal, like a shell.
	ExitCode int
	Signal   syscall.Signal
	// Err is the wait error or the read error that ended the read loop.
	Err error
}

// exitStatus converts an exec.Cmd.Wait result.
func exitStatus(err error) (code int, sig syscall.Signal) {
	if err == nil {
		return 0, 0
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return ExitUnknown, 0
	}
	if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal()), ws.Signal()
	}
	return exitErr.ExitCode(), 0
}
