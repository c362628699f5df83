package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/andyrewlee/ptyhost/internal/config"
	"github.com/andyrewlee/ptyhost/internal/keymap"
)

func buildConfigCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(e)
			if err != nil {
				return err
			}
			return printConfig(cmd, cfg)
		},
	}
	cmd.AddCommand(buildConfigPathCommand(e))
	cmd.AddCommand(buildConfigInitCommand(e))
	cmd.AddCommand(buildConfigKeysCommand(e))
	return cmd
}

func loadConfig(e *env) (*config.Config, error) {
	paths, err := e.paths()
	if err != nil {
		return nil, err
	}
	return config.LoadFrom(paths)
}

func printConfig(cmd *cobra.Command, cfg *config.Config) error {
	view := map[string]any{
		"shell":            cfg.Shell,
		"rows":             cfg.Rows,
		"cols":             cfg.Cols,
		"scrollback_lines": cfg.ScrollbackLines,
		"term":             cfg.Term,
		"env":              cfg.Env,
		"log_level":        cfg.LogLevel,
		"close_grace_ms":   cfg.CloseGrace.Milliseconds(),
		"keymap":           cfg.KeyMap,
	}
	data, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func buildConfigPathCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := e.paths()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), paths.ConfigPath)
			return nil
		},
	}
}

func buildConfigInitCommand(e *env) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with the current settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := e.paths()
			if err != nil {
				return err
			}
			if _, err := os.Stat(paths.ConfigPath); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to rewrite it)", paths.ConfigPath)
			}
			cfg, err := config.LoadFrom(paths)
			if err != nil {
				return err
			}
			if err := paths.EnsureDirectories(); err != nil {
				return err
			}
			if err := cfg.Save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", paths.ConfigPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Rewrite an existing file")
	return cmd
}

func buildConfigKeysCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List host key bindings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(e)
			if err != nil {
				return err
			}
			km := keymap.New(cfg.KeyMap)
			for _, info := range keymap.ActionInfos() {
				b := keymap.BindingForAction(km, info.Action)
				fmt.Fprintf(cmd.OutOrStdout(), "%-14s %-16s %s\n", info.Action, b.Help().Key, info.Desc)
			}
			return nil
		},
	}
}
