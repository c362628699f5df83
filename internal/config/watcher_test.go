package config

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestWatcherReloadsOnChange(t *testing.T) {
	paths := PathsAt(t.TempDir())
	writeConfig(t, paths, `{"scrollback_lines": 100}`)

	got := make(chan *Config, 4)
	w, err := NewWatcher(paths, func(cfg *Config) { got <- cfg })
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer func() {
		_ = w.Close()
	}()
	w.debounce = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	// Unrelated files in the directory are ignored.
	if err := os.WriteFile(paths.ConfigPath+".swp", []byte("x"), 0o644); err != nil {
		t.Fatalf("write swp: %v", err)
	}
	writeConfig(t, paths, `{"scrollback_lines": 500}`)

	select {
	case cfg := <-got:
		if cfg.ScrollbackLines != 500 {
			t.Fatalf("reloaded ScrollbackLines = %d, want 500", cfg.ScrollbackLines)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no reload after config change")
	}
}

func TestWatcherKeepsRunningOnBadFile(t *testing.T) {
	paths := PathsAt(t.TempDir())

	got := make(chan *Config, 4)
	w, err := NewWatcher(paths, func(cfg *Config) { got <- cfg })
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer func() {
		_ = w.Close()
	}()
	w.debounce = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	writeConfig(t, paths, `{"rows": `)
	select {
	case cfg := <-got:
		t.Fatalf("invalid file produced a config: %+v", cfg)
	case <-time.After(200 * time.Millisecond):
	}

	writeConfig(t, paths, `{"rows": 50}`)
	select {
	case cfg := <-got:
		if cfg.Rows != 50 {
			t.Fatalf("Rows = %d", cfg.Rows)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no reload after fixing config")
	}
}

func TestWatcherRunStopsOnClose(t *testing.T) {
	w, err := NewWatcher(PathsAt(t.TempDir()), nil)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	done := make(chan error, 1)
	go func() { done <- w.Run(context.Background()) }()

	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() = %v, want nil after Close", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Close")
	}
}
