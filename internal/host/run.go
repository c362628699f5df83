package host

import (
	"context"
	"errors"
	"os"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/term"

	"github.com/andyrewlee/ptyhost/internal/config"
	"github.com/andyrewlee/ptyhost/internal/keymap"
	"github.com/andyrewlee/ptyhost/internal/logging"
	"github.com/andyrewlee/ptyhost/internal/pty"
	"github.com/andyrewlee/ptyhost/internal/safego"
	"github.com/andyrewlee/ptyhost/internal/vterm"
)

// Options configures Run.
type Options struct {
	Config *config.Config
	// Command overrides Config.Shell. Empty means the configured shell.
	Command string
	Args    []string
	Dir     string
}

// Result describes how a hosted session ended.
type Result struct {
	Status pty.Status
	// Quit is true when the user left before the child exited.
	Quit bool
}

// ExitCode is the code the host process should exit with.
func (r Result) ExitCode() int {
	if r.Quit {
		return 0
	}
	if r.Status.ExitCode == pty.ExitUnknown {
		return 1
	}
	return r.Status.ExitCode
}

// Run spawns the session, hosts it full screen until the child exits or the
// user quits, then closes it.
func Run(ctx context.Context, opts Options) (Result, error) {
	cfg := opts.Config
	if cfg == nil {
		var err error
		if cfg, err = config.Load(); err != nil {
			return Result{}, err
		}
	}

	mgr := pty.NewManager(pty.Options{
		Command:    cfg.Shell,
		Term:       cfg.Term,
		Env:        cfg.Env,
		CloseGrace: cfg.CloseGrace,
	})

	rows, cols := cfg.Rows, cfg.Cols
	if w, h, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 && h > statusBarHeight {
		rows, cols = h-statusBarHeight, w
	}

	s, err := mgr.Start(ctx, pty.Options{
		Command: opts.Command,
		Args:    opts.Args,
		Dir:     opts.Dir,
		Rows:    rows,
		Cols:    cols,
	})
	if err != nil {
		return Result{}, err
	}
	defer func() {
		if err := mgr.CloseAll(); err != nil {
			logging.Warn("host: close sessions: %v", err)
		}
	}()

	vt := vterm.New(rows, cols)
	vt.SetScrollbackLimit(cfg.ScrollbackLines)
	vt.SetResponseWriter(func(b []byte) {
		_, _ = s.Write(b)
	})

	model := New(s, vt, keymap.New(cfg.KeyMap))
	p := tea.NewProgram(model, tea.WithContext(ctx))

	pumpDone := safego.Start("host-pump", func() {
		RunPump(s, vt, p.Send, defaultFrameInterval)
	})

	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()
	if cfg.Paths != nil {
		w, err := config.NewWatcher(cfg.Paths, func(c *config.Config) {
			p.Send(ConfigChanged(c))
		})
		if err != nil {
			logging.Warn("host: config watcher disabled: %v", err)
		} else {
			defer func() { _ = w.Close() }()
			safego.Go("config-watcher", func() {
				if err := w.Run(watchCtx); err != nil && !errors.Is(err, context.Canceled) {
					logging.Warn("host: config watcher stopped: %v", err)
				}
			})
		}
	}

	logging.Info("host: hosting session %s (%s) at %dx%d", s.ID(), s.Command(), cols, rows)
	_, runErr := p.Run()
	if errors.Is(runErr, tea.ErrProgramKilled) && ctx.Err() != nil {
		runErr = nil
	}

	res := Result{Quit: !model.exited}
	closeErr := s.Close()
	<-pumpDone
	res.Status = s.Status()
	return res, errors.Join(runErr, closeErr)
}
