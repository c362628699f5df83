package host

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/andyrewlee/ptyhost/internal/logging"
)

var errNothingToCopy = errors.New("clipboard: screen is blank")

// screenClipboard copies screen text to the system clipboard. On macOS
// pbcopy is tried before atotto/clipboard.
type screenClipboard struct {
	goos   string
	pbcopy func(string) error
	write  func(string) error
}

func newScreenClipboard() screenClipboard {
	return screenClipboard{
		goos:   runtime.GOOS,
		pbcopy: pbcopy,
		write:  clipboard.WriteAll,
	}
}

// Copy writes text, refusing a blank screen.
func (c screenClipboard) Copy(text string) error {
	if strings.TrimSpace(text) == "" {
		return errNothingToCopy
	}
	if c.goos == "darwin" && c.pbcopy != nil {
		err := c.pbcopy(text)
		if err == nil {
			return nil
		}
		logging.Debug("host: pbcopy failed, falling back: %v", err)
	}
	if err := c.write(text); err != nil {
		return fmt.Errorf("clipboard: write %d bytes: %w", len(text), err)
	}
	return nil
}

func pbcopy(text string) error {
	cmd := exec.Command("pbcopy")
	cmd.Stdin = strings.NewReader(text)
	return cmd.Run()
}
