//go:build !windows

package process

import (
	"errors"
	"syscall"
)

// IsProcessGone reports whether err means the target process (or group) no
// longer exists or was already reaped.
func IsProcessGone(err error) bool {
	return errors.Is(err, syscall.ESRCH) || errors.Is(err, syscall.ECHILD)
}
