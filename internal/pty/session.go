package pty

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/creack/pty"
	"github.com/google/uuid"

	"github.com/andyrewlee/ptyhost/internal/logging"
	"github.com/andyrewlee/ptyhost/internal/perf"
	"github.com/andyrewlee/ptyhost/internal/process"
	"github.com/andyrewlee/ptyhost/internal/safego"
)

const (
	DefaultRows       = 24
	DefaultCols       = 80
	DefaultCloseGrace = 500 * time.Millisecond

	readBufferSize    = 32 * 1024
	readerExitTimeout = 2 * time.Second
	reapTimeout       = 2 * time.Second
)

// Options describes the child to run in a new pty.
type Options struct {
	// Command is looked up in PATH. Empty means $SHELL, then /bin/sh.
	Command string
	Args    []string
	Dir     string
	// Env holds extra KEY=VALUE entries layered over the parent environment.
	Env  []string
	Term string
	Rows int
	Cols int
	// CloseGrace is how long Close waits after SIGTERM before SIGKILL.
	CloseGrace time.Duration
}

func (o Options) withDefaults() Options {
	if o.Command == "" {
		o.Command = DefaultShell()
	}
	if o.Rows <= 0 {
		o.Rows = DefaultRows
	}
	if o.Cols <= 0 {
		o.Cols = DefaultCols
	}
	if o.CloseGrace <= 0 {
		o.CloseGrace = DefaultCloseGrace
	}
	return o
}

// DefaultShell returns the user's login shell.
func DefaultShell() string {
	if sh := os.Getenv("SHELL"); sh != "" {
		return sh
	}
	return "/bin/sh"
}

// Session is one child process attached to a pty.
type Session struct {
	id         string
	command    string
	cmd        *exec.Cmd
	pid        int
	closeGrace time.Duration
	started    time.Time

	mu           sync.Mutex
	master       *os.File
	masterClosed bool
	rows, cols   int
	status       Status
	closed       bool
	readerActive bool
	readerDone   chan struct{}

	wmu        sync.Mutex
	wcond      *sync.Cond
	queue      [][]byte
	wclosed    bool
	writerDone <-chan struct{}

	done chan struct{}

	closeOnce sync.Once
	closeErr  error
	stopCtx   func() bool
	onClose   func(*Session)
}

// start spawns the child. The session moves Starting -> Running; on failure
// no Session is returned and the Failed state travels in the *SpawnError.
func start(opts Options) (*Session, error) {
	opts = opts.withDefaults()
	s := &Session{
		id:         uuid.NewString(),
		command:    opts.Command,
		closeGrace: opts.CloseGrace,
		rows:       opts.Rows,
		cols:       opts.Cols,
		status:     Status{State: StateStarting},
		done:       make(chan struct{}),
	}
	s.wcond = sync.NewCond(&s.wmu)

	fail := func(err error) (*Session, error) {
		logging.Error("pty: session %s %s -> %s: %v", s.id, StateStarting, StateFailed, err)
		return nil, &SpawnError{Command: opts.Command, Err: err}
	}

	path, err := exec.LookPath(opts.Command)
	if err != nil {
		return fail(err)
	}

	cmd := exec.Command(path, opts.Args...)
	cmd.Dir = opts.Dir
	cmd.Env = process.NewEnvBuilder(nil, opts.Term).Build(opts.Env)

	master, err := pty.StartWithSize(cmd, &pty.Winsize{
		Rows: uint16(opts.Rows),
		Cols: uint16(opts.Cols),
	})
	if err != nil {
		return fail(err)
	}

	s.cmd = cmd
	s.pid = cmd.Process.Pid
	s.master = master
	s.started = time.Now()
	s.status = Status{State: StateRunning}
	logging.Info("pty: session %s %s -> %s pid=%d cmd=%s size=%dx%d",
		s.id, StateStarting, StateRunning, s.pid, path, opts.Cols, opts.Rows)

	s.writerDone = safego.Start("pty-writer", s.writeLoop)
	safego.Go("pty-wait", s.waitLoop)
	return s, nil
}

// closeWhenDone arranges for Close to run when ctx ends.
func (s *Session) closeWhenDone(ctx context.Context) {
	if ctx.Done() == nil {
		return
	}
	stop := context.AfterFunc(ctx, func() {
		logging.Debug("pty: session %s context done, closing", s.id)
		_ = s.Close()
	})
	s.mu.Lock()
	s.stopCtx = stop
	s.mu.Unlock()
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Pid returns the child's process ID, which also leads its process group.
func (s *Session) Pid() int { return s.pid }

// Command returns the command the session was started with.
func (s *Session) Command() string { return s.command }

// Started returns when the child was spawned.
func (s *Session) Started() time.Time { return s.started }

// Done is closed once the child has exited and been reaped.
func (s *Session) Done() <-chan struct{} { return s.done }

// Status returns the current lifecycle state.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Size returns the current pty window size.
func (s *Session) Size() (rows, cols int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows, s.cols
}

// Wait blocks until the child exits or ctx ends.
func (s *Session) Wait(ctx context.Context) (Status, error) {
	select {
	case <-s.done:
		return s.Status(), nil
	case <-ctx.Done():
		return s.Status(), ctx.Err()
	}
}

// Resize updates the pty window size; the kernel signals SIGWINCH to the
// foreground process group. It is a no-op when the size is unchanged or the
// child is gone.
func (s *Session) Resize(rows, cols int) error {
	if rows <= 0 || cols <= 0 || rows > 0xffff || cols > 0xffff {
		return fmt.Errorf("pty: invalid size %dx%d", cols, rows)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.masterClosed || s.status.State != StateRunning {
		return nil
	}
	if rows == s.rows && cols == s.cols {
		return nil
	}
	err := pty.Setsize(s.master, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
	if err != nil {
		if isEndOfStream(err) {
			return nil
		}
		return fmt.Errorf("pty: resize: %w", err)
	}
	s.rows, s.cols = rows, cols
	return nil
}

// Write queues p for the child's input. It never blocks on the child.
func (s *Session) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	buf := make([]byte, len(p))
	copy(buf, p)

	s.wmu.Lock()
	defer s.wmu.Unlock()
	if s.wclosed {
		return 0, ErrClosed
	}
	s.queue = append(s.queue, buf)
	s.wcond.Signal()
	return len(p), nil
}

func (s *Session) writeLoop() {
	for {
		s.wmu.Lock()
		for len(s.queue) == 0 && !s.wclosed {
			s.wcond.Wait()
		}
		if s.wclosed {
			s.queue = nil
			s.wmu.Unlock()
			return
		}
		chunk := s.queue[0]
		s.queue[0] = nil
		s.queue = s.queue[1:]
		s.wmu.Unlock()

		n, err := s.master.Write(chunk)
		perf.Count(perf.CounterPTYWriteBytes, int64(n))
		if err != nil {
			// The child is gone or the master was released; input is dropped.
			logging.Debug("pty: session %s write: %v", s.id, err)
		}
	}
}

func (s *Session) stopWriter() {
	s.wmu.Lock()
	s.wclosed = true
	s.queue = nil
	s.wcond.Broadcast()
	s.wmu.Unlock()
}

// ReadLoop reads pty output and passes each chunk to onBytes in order until
// end-of-stream (nil) or a read failure (*ReadError). The chunk is only valid
// during the call. Only one ReadLoop may run at a time.
func (s *Session) ReadLoop(onBytes func([]byte)) error {
	s.mu.Lock()
	if s.closed || s.masterClosed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.readerActive {
		s.mu.Unlock()
		return ErrReaderActive
	}
	s.readerActive = true
	done := make(chan struct{})
	s.readerDone = done
	master := s.master
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.readerActive = false
		s.mu.Unlock()
		close(done)
	}()

	buf := make([]byte, readBufferSize)
	for {
		n, err := master.Read(buf)
		if n > 0 {
			perf.Count(perf.CounterPTYReadBytes, int64(n))
			onBytes(buf[:n])
		}
		if err == nil {
			continue
		}
		if isEndOfStream(err) {
			logging.Debug("pty: session %s end of stream: %v", s.id, err)
			return nil
		}
		rerr := &ReadError{Err: err}
		s.mu.Lock()
		if s.status.Err == nil {
			s.status.Err = rerr
		}
		s.mu.Unlock()
		logging.Error("pty: session %s read loop ended: %v", s.id, err)
		return rerr
	}
}

// Terminate sends sig to the child's process group. Once the child has been
// reaped its group ID may be reused, so Terminate does nothing.
func (s *Session) Terminate(sig syscall.Signal) error {
	select {
	case <-s.done:
		return nil
	default:
	}
	if err := process.SignalGroup(s.pid, sig); err != nil {
		return fmt.Errorf("pty: signal %v: %w", sig, err)
	}
	logging.Debug("pty: session %s sent %v to group %d", s.id, sig, s.pid)
	return nil
}

func (s *Session) waitLoop() {
	err := s.cmd.Wait()
	code, sig := exitStatus(err)

	s.mu.Lock()
	prev := s.status.State
	s.status.State = StateExited
	s.status.ExitCode = code
	s.status.Signal = sig
	if err != nil && code == ExitUnknown {
		s.status.Err = err
	}
	s.mu.Unlock()

	logging.Info("pty: session %s %s -> %s code=%d", s.id, prev, StateExited, code)
	close(s.done)
}

// Close ends the session: the process group is terminated if still running
// (SIGTERM, grace period, SIGKILL), the read loop is given time to observe
// end-of-stream, the master is released exactly once and the child is
// reaped. Close is idempotent.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.close()
	})
	return s.closeErr
}

func (s *Session) close() error {
	s.mu.Lock()
	s.closed = true
	running := s.status.State == StateRunning
	readerDone := s.readerDone
	stopCtx := s.stopCtx
	s.mu.Unlock()

	if stopCtx != nil {
		stopCtx()
	}
	s.stopWriter()

	var errs []error
	if running {
		if err := process.KillProcessGroup(s.pid, process.KillOptions{GracePeriod: s.closeGrace}); err != nil {
			errs = append(errs, fmt.Errorf("pty: kill process group: %w", err))
		}
	}

	if readerDone != nil {
		select {
		case <-readerDone:
		case <-time.After(readerExitTimeout):
			// A grandchild may still hold the slave open. Closing the
			// master below unblocks the reader.
			logging.Warn("pty: session %s reader still active after %v", s.id, readerExitTimeout)
		}
	}

	if err := s.releaseMaster(); err != nil {
		errs = append(errs, err)
	}
	<-s.writerDone

	select {
	case <-s.done:
	case <-time.After(reapTimeout):
		errs = append(errs, fmt.Errorf("pty: child %d not reaped after %v", s.pid, reapTimeout))
	}

	if s.onClose != nil {
		s.onClose(s)
	}
	logging.Info("pty: session %s closed", s.id)
	return errors.Join(errs...)
}

func (s *Session) releaseMaster() error {
	s.mu.Lock()
	if s.masterClosed {
		s.mu.Unlock()
		return nil
	}
	s.masterClosed = true
	master := s.master
	s.mu.Unlock()

	if err := master.Close(); err != nil && !isEndOfStream(err) {
		return fmt.Errorf("pty: close master: %w", err)
	}
	return nil
}
