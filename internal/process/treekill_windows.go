//go:build windows

package process

import (
	"errors"
	"log/slog"
	"os"
	"syscall"
	"time"
)

// KillOptions configures process termination behavior.
type KillOptions struct {
	// GracePeriod is how long to wait before forcing termination.
	// Default: 200ms
	GracePeriod time.Duration
}

// SignalGroup signals only the leader; Windows has no Unix-style groups.
func SignalGroup(leaderPID int, sig syscall.Signal) error {
	if leaderPID <= 0 {
		return nil
	}
	proc, err := os.FindProcess(leaderPID)
	if err != nil {
		return err
	}
	if sig == syscall.SIGKILL {
		return proc.Kill()
	}
	return proc.Signal(sig)
}

// GroupAlive reports whether the leader process can still be found.
func GroupAlive(leaderPID int) bool {
	if leaderPID <= 0 {
		return false
	}
	_, err := os.FindProcess(leaderPID)
	return err == nil
}

// KillProcessGroup attempts to terminate only the leader process on Windows.
func KillProcessGroup(leaderPID int, opts KillOptions) error {
	if leaderPID <= 0 {
		return nil
	}
	if opts.GracePeriod == 0 {
		opts.GracePeriod = 200 * time.Millisecond
	}

	proc, err := os.FindProcess(leaderPID)
	if err != nil {
		return err
	}

	if err := proc.Signal(os.Interrupt); err != nil {
		slog.Debug("best-effort interrupt signal failed", "pid", leaderPID, "error", err)
	}
	time.Sleep(opts.GracePeriod)

	if err := proc.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}

// IsProcessGone reports whether err means the process already finished.
func IsProcessGone(err error) bool {
	return errors.Is(err, os.ErrProcessDone)
}
