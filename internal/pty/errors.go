package pty

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"syscall"
)

var (
	// ErrClosed is returned by operations on a closed session.
	ErrClosed = errors.New("pty: session closed")
	// ErrReaderActive is returned when a second read loop is started.
	ErrReaderActive = errors.New("pty: read loop already active")
	// ErrNotFound is returned by Manager.Get for unknown session IDs.
	ErrNotFound = errors.New("pty: session not found")
)

// SpawnError reports a failure to allocate the pty or start the command.
type SpawnError struct {
	Command string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("pty: spawn %q: %v", e.Command, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// Status is the Failed state of the session that never started. Start
// returns no Session on failure, so this is where Failed is observed.
func (e *SpawnError) Status() Status {
	return Status{State: StateFailed, ExitCode: ExitUnknown, Err: e.Err}
}

// ReadError reports a pty read failure other than end-of-stream.
type ReadError struct {
	Err error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("pty: read: %v", e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// isEndOfStream reports whether a master read error means the slave side is
// gone. Linux reports EIO once the last slave descriptor closes.
func isEndOfStream(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, syscall.EIO) ||
		errors.Is(err, fs.ErrClosed)
}
