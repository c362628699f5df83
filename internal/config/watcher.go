package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/andyrewlee/ptyhost/internal/logging"
)

const defaultReloadDebounce = 200 * time.Millisecond

// Watcher reloads the config file when it changes on disk.
type Watcher struct {
	mu sync.Mutex

	watcher   *fsnotify.Watcher
	paths     *Paths
	onChanged func(*Config)
	debounce  time.Duration
	timer     *time.Timer
	closed    bool
	closeOnce sync.Once
}

// NewWatcher watches the directory holding paths.ConfigPath. Editors replace
// files by rename, so the directory is watched rather than the file itself.
func NewWatcher(paths *Paths, onChanged func(*Config)) (*Watcher, error) {
	dir := filepath.Dir(paths.ConfigPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	return &Watcher{
		watcher:   watcher,
		paths:     paths,
		onChanged: onChanged,
		debounce:  defaultReloadDebounce,
	}, nil
}

// Run processes file system events until the context is canceled or the watcher closes.
func (w *Watcher) Run(ctx context.Context) error {
	target := filepath.Clean(w.paths.ConfigPath)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.schedule()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logging.Warn("config: watcher error: %v", err)
		}
	}
}

// schedule coalesces a burst of events into one reload after the burst ends.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

func (w *Watcher) reload() {
	w.mu.Lock()
	closed := w.closed
	w.mu.Unlock()
	if closed {
		return
	}

	cfg, err := LoadFrom(w.paths)
	if err != nil {
		// Keep running with the previous config until the file is fixed.
		logging.Warn("config: reload failed: %v", err)
		return
	}
	logging.Info("config: reloaded %s", w.paths.ConfigPath)
	if w.onChanged != nil {
		w.onChanged(cfg)
	}
}

// Close stops the watcher and releases resources
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		w.mu.Lock()
		w.closed = true
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
		err = w.watcher.Close()
	})
	return err
}
