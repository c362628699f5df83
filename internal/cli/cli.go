// Package cli is the ptyhost command line.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/andyrewlee/ptyhost/internal/config"
	"github.com/andyrewlee/ptyhost/internal/logging"
)

// BuildInfo is stamped in by the linker.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

type exitError struct {
	code int
}

func (e exitError) Error() string {
	return fmt.Sprintf("exit with code %d", e.code)
}

// env is what commands need from the outside world.
type env struct {
	build  BuildInfo
	stdin  io.Reader
	isTTY  func() bool
	paths  func() (*config.Paths, error)
	runner runFunc
}

type globalFlags struct {
	logLevel string
}

// Run executes the ptyhost CLI. It returns a process exit code.
func Run(args []string, build BuildInfo) int {
	e := &env{
		build: build,
		stdin: os.Stdin,
		isTTY: func() bool {
			return term.IsTerminal(os.Stdin.Fd()) && term.IsTerminal(os.Stdout.Fd())
		},
		paths:  config.DefaultPaths,
		runner: hostRunner,
	}
	root := buildRootCommand(e)
	root.SetArgs(args)
	return execute(root)
}

func execute(root *cobra.Command) int {
	if err := root.Execute(); err != nil {
		var exitErr exitError
		if errors.As(err, &exitErr) {
			return exitErr.code
		}
		fmt.Fprintln(root.ErrOrStderr(), "ptyhost:", err)
		return 1
	}
	return 0
}

func buildRootCommand(e *env) *cobra.Command {
	var flags globalFlags

	root := &cobra.Command{
		Use:   "ptyhost",
		Short: "Run a program in a pseudo-terminal and show its screen",
		Long: `ptyhost - host an interactive program in a pty

  ptyhost                      Run your shell
  ptyhost run -- top           Run a program
  ptyhost replay session.log   Render a recorded byte stream
  ptyhost config init          Write ~/.ptyhost/config.json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHost(cmd, e, flags, runOptions{})
		},
	}
	root.Version = e.build.Version
	root.SetVersionTemplate("ptyhost {{.Version}}\n")
	root.CompletionOptions.DisableDefaultCmd = true
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	root.AddCommand(buildRunCommand(e, &flags))
	root.AddCommand(buildReplayCommand(e))
	root.AddCommand(buildConfigCommand(e))
	root.AddCommand(buildVersionCommand(e))
	return root
}

// initLogging opens the log file. Failures are reported but never fatal.
func initLogging(cmd *cobra.Command, cfg *config.Config, flagLevel string) func() {
	raw := cfg.LogLevel
	if flagLevel != "" {
		raw = flagLevel
	}
	level, ok := logging.ParseLevel(raw)
	if !ok {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: unknown log level %q, using info\n", raw)
	}
	if err := logging.Initialize(cfg.Paths.LogDir, level); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not initialize logging: %v\n", err)
		return func() {}
	}
	return func() { _ = logging.Close() }
}

func buildVersionCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ptyhost %s (commit: %s, built: %s)\n",
				e.build.Version, e.build.Commit, e.build.Date)
		},
	}
}
