package session

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/leapstack-labs/horizon/internal/loader"
	"github.com/leapstack-labs/horizon/internal/state"
	"github.com/leapstack-labs/horizon/internal/tablestate"
)

const minSweepInterval = 10 * time.Millisecond

// Manager owns the live sessions.
type Manager struct {
	cfg Config

	mu       sync.Mutex
	sessions map[string]*Session
	closed   bool
}

// NewManager creates a Manager. Zero config fields take defaults.
func NewManager(cfg Config) *Manager {
	cfg.setDefaults()
	return &Manager{
		cfg:      cfg,
		sessions: make(map[string]*Session),
	}
}

// Config returns the effective configuration.
func (m *Manager) Config() Config {
	return m.cfg
}

// Get returns a live session.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Open returns the session for id, creating it when needed. An empty id
// allocates a new one.
//
// A new session is seeded from q when it carries view state, else from the
// persisted snapshot for id, else from the configured defaults. When no
// source is set the runs index picks one. The first load starts in the
// background. For an existing session, state parameters in q are applied
// on top of its current state.
func (m *Manager) Open(ctx context.Context, id string, q url.Values) (*Session, error) {
	if id == "" {
		id = uuid.NewString()
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrClosed
	}
	if s, ok := m.sessions[id]; ok {
		// Touched under m.mu so a concurrent sweep cannot take it.
		s.touch()
		m.mu.Unlock()
		if tablestate.HasState(q) {
			s.ApplyQuery(q)
		}
		return s, nil
	}
	m.mu.Unlock()

	initial, runs := m.seed(ctx, id, q)
	s := newSession(id, &m.cfg, initial, runs)

	m.mu.Lock()
	if existing, ok := m.sessions[id]; ok {
		m.mu.Unlock()
		return existing, nil
	}
	m.sessions[id] = s
	m.mu.Unlock()

	m.cfg.Logger.Debug("session opened", "session", id, "source", initial.Source)

	s.mu.Lock()
	if initial.AutoRefresh {
		s.restartRefreshLocked()
	}
	if initial.Source != "" {
		s.reloadAsyncLocked()
	}
	s.mu.Unlock()
	return s, nil
}

func (m *Manager) seed(ctx context.Context, id string, q url.Values) (tablestate.TableState, []loader.Run) {
	logger := m.cfg.Logger
	initial := m.cfg.Defaults()

	switch {
	case tablestate.HasState(q):
		initial = tablestate.DecodeQuery(q, initial)
	case m.cfg.Store != nil:
		data, err := m.cfg.Store.LoadView(ctx, id)
		switch {
		case errors.Is(err, state.ErrNotFound):
		case err != nil:
			logger.Warn("failed to load view state", "session", id, "error", err)
		default:
			restored, err := tablestate.UnmarshalSnapshot(data, initial)
			if err != nil {
				logger.Warn("ignoring corrupt view state", "session", id, "error", err)
			} else {
				initial = restored
			}
		}
	}

	dataDir := m.cfg.Loader.DataDir()
	runs, err := loader.ReadRuns(dataDir)
	if err != nil {
		logger.Warn("failed to read runs index", "error", err)
	}
	if initial.Source == "" {
		last, err := loader.LastRun(dataDir)
		if err != nil {
			logger.Warn("failed to read last run", "error", err)
		}
		initial.Source = loader.InitialSource(m.cfg.DefaultSource, last, runs)
	}
	return initial, runs
}

// Each calls fn for every live session.
func (m *Manager) Each(fn func(*Session)) {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()

	for _, s := range sessions {
		fn(s)
	}
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// ReloadLocal reloads every session whose source is the local file at path.
// It returns the number of sessions reloaded.
func (m *Manager) ReloadLocal(path string) int {
	n := 0
	m.Each(func(s *Session) {
		source := s.State().Source
		if source == "" || loader.IsRemote(source) {
			return
		}
		local, err := m.cfg.Loader.LocalPath(source)
		if err != nil || local != path {
			return
		}
		n++
		s.mu.Lock()
		s.reloadAsyncLocked()
		s.mu.Unlock()
	})
	if n > 0 {
		m.cfg.Logger.Debug("reloading sessions for changed file", "path", path, "sessions", n)
	}
	return n
}

// CloseSession closes and forgets one session.
func (m *Manager) CloseSession(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		s.Close()
	}
}

// SweepIdle closes every session that has had no subscriber and no
// request for at least ttl. It returns the number of sessions closed.
func (m *Manager) SweepIdle(ttl time.Duration) int {
	now := time.Now()

	m.mu.Lock()
	var idle []*Session
	for id, s := range m.sessions {
		if s.idle(now, ttl) {
			idle = append(idle, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range idle {
		s.Close()
		m.cfg.Logger.Debug("idle session closed", "session", s.ID())
	}
	return len(idle)
}

// RunSweeper calls SweepIdle with the configured IdleTTL until ctx is
// done. It returns at once when IdleTTL is zero.
func (m *Manager) RunSweeper(ctx context.Context) error {
	ttl := m.cfg.IdleTTL
	if ttl <= 0 {
		return nil
	}

	ticker := time.NewTicker(max(ttl/2, minSweepInterval))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := m.SweepIdle(ttl); n > 0 {
				m.cfg.Logger.Info("closed idle sessions", "sessions", n, "remaining", m.Len())
			}
		}
	}
}

// Close closes every session. The Manager rejects new sessions afterwards.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
