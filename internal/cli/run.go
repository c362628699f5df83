package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/andyrewlee/ptyhost/internal/config"
	"github.com/andyrewlee/ptyhost/internal/host"
	"github.com/andyrewlee/ptyhost/internal/logging"
	"github.com/andyrewlee/ptyhost/internal/perf"
)

var errNotTerminal = errors.New("run needs an interactive terminal on stdin and stdout")

type runOptions struct {
	dir     string
	command string
	args    []string
}

type runFunc func(ctx context.Context, opts host.Options) (host.Result, error)

func hostRunner(ctx context.Context, opts host.Options) (host.Result, error) {
	return host.Run(ctx, opts)
}

func buildRunCommand(e *env, flags *globalFlags) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run [-- command [args...]]",
		Short: "Run a program in a pty (default: your shell)",
		Long: `Run a program in a pseudo-terminal and show it full screen.

Without a command the configured shell runs, then $SHELL, then /bin/sh.
ptyhost exits with the program's exit status.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opts.command, opts.args = args[0], args[1:]
			}
			return runHost(cmd, e, *flags, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.dir, "dir", "C", "", "Working directory for the program")
	return cmd
}

func runHost(cmd *cobra.Command, e *env, flags globalFlags, opts runOptions) error {
	if !e.isTTY() {
		return errNotTerminal
	}

	paths, err := e.paths()
	if err != nil {
		return err
	}
	cfg, err := config.LoadFrom(paths)
	if err != nil {
		return err
	}
	closeLog := initLogging(cmd, cfg, flags.logLevel)
	defer closeLog()
	defer perf.Flush("exit")

	logging.Info("Starting ptyhost %s", e.build.Version)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	res, err := e.runner(ctx, host.Options{
		Config:  cfg,
		Command: opts.command,
		Args:    opts.args,
		Dir:     opts.dir,
	})
	if err != nil {
		logging.Error("host exited with error: %v", err)
		return err
	}
	logging.Info("ptyhost shutdown complete, exit code %d", res.ExitCode())
	if code := res.ExitCode(); code != 0 {
		return exitError{code: code}
	}
	return nil
}
