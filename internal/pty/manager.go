package pty

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/andyrewlee/ptyhost/internal/logging"
)

// Manager owns a set of sessions. Sessions deregister themselves on Close.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	defaults Options
}

// NewManager returns an empty manager. Fields set in defaults fill in
// anything a Start call leaves empty.
func NewManager(defaults Options) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		defaults: defaults,
	}
}

// Start spawns a session. Cancelling ctx closes the session.
func (m *Manager) Start(ctx context.Context, opts Options) (*Session, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s, err := start(m.applyDefaults(opts))
	if err != nil {
		return nil, err
	}
	s.onClose = m.remove

	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()

	s.closeWhenDone(ctx)
	return s, nil
}

func (m *Manager) applyDefaults(opts Options) Options {
	d := m.defaults
	if opts.Command == "" {
		opts.Command = d.Command
		if len(opts.Args) == 0 {
			opts.Args = d.Args
		}
	}
	if opts.Dir == "" {
		opts.Dir = d.Dir
	}
	if opts.Term == "" {
		opts.Term = d.Term
	}
	if opts.Rows <= 0 {
		opts.Rows = d.Rows
	}
	if opts.Cols <= 0 {
		opts.Cols = d.Cols
	}
	if opts.CloseGrace <= 0 {
		opts.CloseGrace = d.CloseGrace
	}
	if len(d.Env) > 0 {
		opts.Env = append(append([]string(nil), d.Env...), opts.Env...)
	}
	return opts
}

func (m *Manager) remove(s *Session) {
	m.mu.Lock()
	delete(m.sessions, s.id)
	m.mu.Unlock()
}

// Get returns the session with the given ID.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// List returns live sessions, oldest first.
func (m *Manager) List() []*Session {
	m.mu.Lock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	m.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].started.Before(out[j].started)
	})
	return out
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// CloseAll closes every session concurrently and returns the joined errors.
func (m *Manager) CloseAll() error {
	sessions := m.List()
	if len(sessions) == 0 {
		return nil
	}
	logging.Info("pty: closing %d sessions", len(sessions))

	errs := make([]error, len(sessions))
	var wg sync.WaitGroup
	for i, s := range sessions {
		wg.Add(1)
		go func(i int, s *Session) {
			defer wg.Done()
			errs[i] = s.Close()
		}(i, s)
	}
	wg.Wait()
	return errors.Join(errs...)
}
