package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/andyrewlee/ptyhost/internal/logging"
)

const (
	DefaultRows            = 24
	DefaultCols            = 80
	DefaultScrollbackLines = 10000
	DefaultTerm            = "xterm-256color"
	DefaultCloseGrace      = 500 * time.Millisecond
)

// KeyMapConfig holds user overrides for keybindings.
type KeyMapConfig struct {
	Bindings map[string][]string `json:"bindings,omitempty"`
}

// BindingFor returns the configured keys for an action, if present.
func (k KeyMapConfig) BindingFor(action string) ([]string, bool) {
	if len(k.Bindings) == 0 {
		return nil, false
	}
	if keys, ok := k.Bindings[action]; ok {
		return keys, true
	}
	if keys, ok := k.Bindings[strings.ToLower(action)]; ok {
		return keys, true
	}
	return nil, false
}

// Config holds the application configuration
type Config struct {
	Paths *Paths

	// Shell is the command run when none is given. Empty means $SHELL.
	Shell           string
	Rows            int
	Cols            int
	ScrollbackLines int
	Term            string
	// Env holds extra KEY=VALUE entries for the child.
	Env        []string
	LogLevel   string
	CloseGrace time.Duration
	KeyMap     KeyMapConfig
}

// fileConfig mirrors config.json. Pointers distinguish unset from zero.
type fileConfig struct {
	Shell           *string       `json:"shell,omitempty"`
	Rows            *int          `json:"rows,omitempty"`
	Cols            *int          `json:"cols,omitempty"`
	ScrollbackLines *int          `json:"scrollback_lines,omitempty"`
	Term            *string       `json:"term,omitempty"`
	Env             []string      `json:"env,omitempty"`
	LogLevel        *string       `json:"log_level,omitempty"`
	CloseGraceMs    *int          `json:"close_grace_ms,omitempty"`
	KeyMap          *KeyMapConfig `json:"keymap,omitempty"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() (*Config, error) {
	paths, err := DefaultPaths()
	if err != nil {
		return nil, err
	}
	return defaultsAt(paths), nil
}

func defaultsAt(paths *Paths) *Config {
	return &Config{
		Paths:           paths,
		Rows:            DefaultRows,
		Cols:            DefaultCols,
		ScrollbackLines: DefaultScrollbackLines,
		Term:            DefaultTerm,
		LogLevel:        "info",
		CloseGrace:      DefaultCloseGrace,
		KeyMap:          KeyMapConfig{},
	}
}

// Load loads config overrides from ~/.ptyhost/config.json if present.
func Load() (*Config, error) {
	paths, err := DefaultPaths()
	if err != nil {
		return nil, err
	}
	return LoadFrom(paths)
}

// LoadFrom merges paths.ConfigPath over the defaults. A missing file is not
// an error.
func LoadFrom(paths *Paths) (*Config, error) {
	cfg := defaultsAt(paths)

	data, err := os.ReadFile(paths.ConfigPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	var user fileConfig
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", paths.ConfigPath, err)
	}
	if err := cfg.apply(user); err != nil {
		return nil, fmt.Errorf("config: %s: %w", paths.ConfigPath, err)
	}
	return cfg, nil
}

func (c *Config) apply(user fileConfig) error {
	if user.Shell != nil {
		c.Shell = strings.TrimSpace(*user.Shell)
	}
	if user.Rows != nil {
		if *user.Rows <= 0 {
			return fmt.Errorf("rows must be positive, got %d", *user.Rows)
		}
		c.Rows = *user.Rows
	}
	if user.Cols != nil {
		if *user.Cols <= 0 {
			return fmt.Errorf("cols must be positive, got %d", *user.Cols)
		}
		c.Cols = *user.Cols
	}
	if user.ScrollbackLines != nil {
		if *user.ScrollbackLines < 0 {
			return fmt.Errorf("scrollback_lines must not be negative, got %d", *user.ScrollbackLines)
		}
		c.ScrollbackLines = *user.ScrollbackLines
	}
	if user.Term != nil && *user.Term != "" {
		c.Term = *user.Term
	}
	for _, kv := range user.Env {
		if k, _, ok := strings.Cut(kv, "="); !ok || k == "" {
			return fmt.Errorf("env entry %q is not KEY=VALUE", kv)
		}
	}
	if len(user.Env) > 0 {
		c.Env = append([]string(nil), user.Env...)
	}
	if user.LogLevel != nil {
		if _, ok := logging.ParseLevel(*user.LogLevel); !ok {
			return fmt.Errorf("unknown log_level %q", *user.LogLevel)
		}
		c.LogLevel = *user.LogLevel
	}
	if user.CloseGraceMs != nil {
		if *user.CloseGraceMs < 0 {
			return fmt.Errorf("close_grace_ms must not be negative, got %d", *user.CloseGraceMs)
		}
		if *user.CloseGraceMs > 0 {
			c.CloseGrace = time.Duration(*user.CloseGraceMs) * time.Millisecond
		}
	}
	if user.KeyMap != nil && len(user.KeyMap.Bindings) > 0 {
		c.KeyMap = *user.KeyMap
	}
	return nil
}

// Save writes the configuration to Paths.ConfigPath. Keys the file already
// holds that Config does not know about are preserved.
func (c *Config) Save() error {
	if c == nil || c.Paths == nil {
		return nil
	}
	path := c.Paths.ConfigPath
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	payload := map[string]any{}
	if existing, err := os.ReadFile(path); err == nil {
		_ = json.Unmarshal(existing, &payload)
	}

	payload["rows"] = c.Rows
	payload["cols"] = c.Cols
	payload["scrollback_lines"] = c.ScrollbackLines
	payload["term"] = c.Term
	payload["log_level"] = c.LogLevel
	payload["close_grace_ms"] = c.CloseGrace.Milliseconds()
	if c.Shell != "" {
		payload["shell"] = c.Shell
	}
	if len(c.Env) > 0 {
		payload["env"] = c.Env
	}
	if len(c.KeyMap.Bindings) > 0 {
		payload["keymap"] = c.KeyMap
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
