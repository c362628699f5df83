//go:build !windows

package process

import (
	"errors"
	"syscall"
	"time"
)

// KillOptions configures process group termination behavior.
type KillOptions struct {
	// GracePeriod is how long to wait for SIGTERM before sending SIGKILL.
	// Default: 200ms
	GracePeriod time.Duration
}

// SignalGroup delivers sig to every process in the group led by leaderPID.
// A group that has already exited is not an error.
func SignalGroup(leaderPID int, sig syscall.Signal) error {
	if leaderPID <= 0 {
		return nil
	}
	pgid, err := syscall.Getpgid(leaderPID)
	if err != nil {
		if IsProcessGone(err) {
			return nil
		}
		return err
	}
	if err := syscall.Kill(-pgid, sig); err != nil && !IsProcessGone(err) {
		return err
	}
	return nil
}

// GroupAlive reports whether any process in the group led by leaderPID exists.
func GroupAlive(leaderPID int) bool {
	if leaderPID <= 0 {
		return false
	}
	pgid, err := syscall.Getpgid(leaderPID)
	if err != nil {
		return false
	}
	return !errors.Is(syscall.Kill(-pgid, 0), syscall.ESRCH)
}

// KillProcessGroup sends SIGTERM to a process group, waits for the grace period,
// then sends SIGKILL if processes are still running.
func KillProcessGroup(leaderPID int, opts KillOptions) error {
	if opts.GracePeriod == 0 {
		opts.GracePeriod = 200 * time.Millisecond
	}

	pgid, err := syscall.Getpgid(leaderPID)
	if err != nil {
		if IsProcessGone(err) {
			return nil
		}
		return err
	}

	if err := syscall.Kill(-pgid, syscall.SIGTERM); err != nil {
		if IsProcessGone(err) {
			return nil
		}
		return err
	}

	deadline := time.Now().Add(opts.GracePeriod)
	for time.Now().Before(deadline) {
		if errors.Is(syscall.Kill(-pgid, 0), syscall.ESRCH) {
			return nil
		}
		time.Sleep(10 * time.Millisecond)
	}

	// EPERM can occur if the group emptied during the grace period.
	err = syscall.Kill(-pgid, syscall.SIGKILL)
	if err != nil && !IsProcessGone(err) && !errors.Is(err, syscall.EPERM) {
		return err
	}
	return nil
}
