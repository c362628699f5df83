package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/andyrewlee/ptyhost/internal/vterm"
)

type replayOptions struct {
	rows       int
	cols       int
	scrollback int
	styled     bool
	history    bool
	chunk      int
}

func buildReplayCommand(e *env) *cobra.Command {
	opts := replayOptions{
		rows:       24,
		cols:       80,
		scrollback: vterm.DefaultScrollback,
	}

	cmd := &cobra.Command{
		Use:   "replay FILE",
		Short: "Feed a recorded byte stream into a screen and print it",
		Long: `Feed a recorded pty byte stream (for example from script(1)) into a
screen model of the given size and print the final screen. Use - to read
standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.rows <= 0 || opts.cols <= 0 {
				return fmt.Errorf("invalid size %dx%d", opts.cols, opts.rows)
			}
			var r io.Reader
			if args[0] == "-" {
				r = e.stdin
			} else {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}
			return replay(cmd.OutOrStdout(), r, opts)
		},
	}
	cmd.Flags().IntVar(&opts.rows, "rows", opts.rows, "Screen rows")
	cmd.Flags().IntVar(&opts.cols, "cols", opts.cols, "Screen columns")
	cmd.Flags().IntVar(&opts.scrollback, "scrollback", opts.scrollback, "Scrollback lines to keep")
	cmd.Flags().BoolVar(&opts.styled, "ansi", false, "Print the screen with colors and attributes")
	cmd.Flags().BoolVar(&opts.history, "history", false, "Print scrollback lines before the screen")
	cmd.Flags().IntVar(&opts.chunk, "chunk", 4096, "Feed size in bytes")
	return cmd
}

func replay(w io.Writer, r io.Reader, opts replayOptions) error {
	vt := vterm.New(opts.rows, opts.cols)
	vt.SetScrollbackLimit(opts.scrollback)

	chunk := opts.chunk
	if chunk <= 0 {
		chunk = 4096
	}
	buf := make([]byte, chunk)
	var total int64
	for {
		n, err := r.Read(buf)
		if n > 0 {
			vt.Feed(buf[:n])
			total += int64(n)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
	}

	if opts.history {
		for _, line := range vt.ScrollbackLines(0, vt.ScrollbackLen()) {
			if opts.styled {
				fmt.Fprintln(w, vterm.RenderCells(line))
			} else {
				fmt.Fprintln(w, vterm.LineText(line))
			}
		}
	}

	snap := vt.Snapshot()
	if opts.styled {
		fmt.Fprintln(w, strings.Join(vt.RenderLines(), "\n"))
	} else if text := snap.Text(); text != "" {
		fmt.Fprintln(w, text)
	}

	fmt.Fprintln(w, strings.Repeat("-", min(opts.cols, 40)))
	fmt.Fprintf(w, "bytes: %d\n", total)
	fmt.Fprintf(w, "size: %dx%d\n", snap.Cols, snap.Rows)
	fmt.Fprintf(w, "cursor: %d,%d\n", snap.Cursor.Row+1, snap.Cursor.Col+1)
	fmt.Fprintf(w, "scrollback: %d lines\n", snap.ScrollbackLen)
	if snap.Title != "" {
		fmt.Fprintf(w, "title: %s\n", snap.Title)
	}
	if snap.Modes.AltScreen {
		fmt.Fprintln(w, "alt screen: on")
	}
	if n := vt.Anomalies(); n > 0 {
		fmt.Fprintf(w, "discarded sequences: %d\n", n)
	}
	return nil
}
