package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/tair/voltmarket/pkg/logger"
)

// Manager is the single authority for the current session. The API client reads
// its bearer token through Token, so the persisted session and the credential in
// use can never disagree.
type Manager struct {
	mu      sync.RWMutex
	store   Store
	current Session
}

// NewManager creates a manager over a persistence backend. Call Load once at startup.
func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// Load reads the persisted session into memory
func (m *Manager) Load(ctx context.Context) (Session, error) {
	s, err := m.store.Load(ctx)
	if err != nil {
		return Session{}, fmt.Errorf("failed to load session: %w", err)
	}
	s = s.normalized()

	m.mu.Lock()
	m.current = s
	m.mu.Unlock()

	logger.Debug(ctx).
		Bool("logged_in", s.LoggedIn()).
		Int64("user_id", s.UserID).
		Msg("Session loaded")

	return s, nil
}

// Current returns a copy of the session in use
func (m *Manager) Current() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// LoggedIn reports whether the current session has both token and user id
func (m *Manager) LoggedIn() bool {
	return m.Current().LoggedIn()
}

// Token implements the API client's credential provider
func (m *Manager) Token() string {
	return m.Current().Token
}

// UserID returns the current user id and whether one is present
func (m *Manager) UserID() (int64, bool) {
	s := m.Current()
	return s.UserID, s.UserID != 0
}

// Save persists s and then installs it as the credential in use. An incomplete
// identity is stored as the empty session. On a persistence failure the previous
// session stays in effect.
func (m *Manager) Save(ctx context.Context, s Session) error {
	s = s.normalized()

	m.mu.Lock()
	defer m.mu.Unlock()

	if !s.LoggedIn() {
		if err := m.store.Clear(ctx); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		logger.Warn(ctx).Msg("Incomplete session saved as logged out")
	} else if err := m.store.Save(ctx, s); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	m.current = s

	logger.Info(ctx).
		Int64("user_id", s.UserID).
		Msg("Session saved")

	return nil
}

// Clear removes every session field from the backend and from memory together
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	m.current = Session{}

	logger.Info(ctx).Msg("Session cleared")
	return nil
}
