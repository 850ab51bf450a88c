package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog/log"

	"github.com/wricardo/puzzle-arcade/game/engine"
	"github.com/wricardo/puzzle-arcade/game/service"
)

var (
	ErrSessionNotFound      = service.ErrSessionNotFound
	ErrSessionAlreadyExists = errors.New("session already exists")
)

// Observer receives every snapshot a session's engine publishes, timer ticks and
// delayed memory resolutions included. It runs under the engine's lock and must
// not call back into the session's engine.
type Observer func(sessionID string, snap engine.Snapshot)

// Manager handles game session lifecycle. Sessions handed out are copies taken
// under the manager lock; only the manager writes the stored records.
type Manager struct {
	sessions      map[string]*service.Session
	unsubscribers map[string]func()
	observer      Observer
	engineOpts    []engine.Option
	clock         clock.Clock
	mu            sync.RWMutex
}

// NewManager creates a new session manager. observer may be nil; opts are passed
// to every engine the manager creates.
func NewManager(observer Observer, opts ...engine.Option) *Manager {
	return &Manager{
		sessions:      make(map[string]*service.Session),
		unsubscribers: make(map[string]func()),
		observer:      observer,
		engineOpts:    opts,
		clock:         clock.New(),
	}
}

// Create creates a new session running the given game. An empty id gets a
// generated one.
func (m *Manager) Create(id string, kind engine.Kind, theme *engine.Theme) (*service.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		id = m.generateSessionID()
	}
	key := strings.ToLower(id)

	// Check if session already exists (case-insensitive)
	if _, exists := m.sessions[key]; exists {
		return nil, ErrSessionAlreadyExists
	}

	eng, err := engine.New(kind, theme, m.engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	now := m.clock.Now()
	session := &service.Session{
		ID:             id,
		Kind:           kind,
		Engine:         eng,
		Theme:          theme,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	m.sessions[key] = session

	if m.observer != nil {
		observer := m.observer
		m.unsubscribers[key] = eng.Subscribe(func(snap engine.Snapshot) {
			observer(id, snap)
		})
	}

	log.Debug().Str("session", id).Str("kind", string(kind)).Msg("session created")
	return copySession(session), nil
}

// Get retrieves a session by ID (case-insensitive)
func (m *Manager) Get(id string) (*service.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return nil, ErrSessionNotFound
	}
	return copySession(session), nil
}

// GetOrCreate gets an existing session or creates a new one
func (m *Manager) GetOrCreate(id string, kind engine.Kind, theme *engine.Theme) (*service.Session, error) {
	session, err := m.Get(id)
	if err == nil {
		return session, nil
	}
	if errors.Is(err, ErrSessionNotFound) {
		return m.Create(id, kind, theme)
	}
	return nil, err
}

// List returns all active sessions
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, copySession(session))
	}
	return result
}

// Delete removes a session and stops its engine
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(id)
	if _, exists := m.sessions[key]; !exists {
		return ErrSessionNotFound
	}
	m.remove(key)
	log.Debug().Str("session", id).Msg("session deleted")
	return nil
}

// UpdateLastAccessed updates the last accessed time for a session
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return ErrSessionNotFound
	}
	session.LastAccessedAt = m.clock.Now()
	return nil
}

// CleanupExpiredSessions removes sessions that haven't been accessed in the given duration
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.clock.Now().Add(-maxAge)
	removed := 0
	for key, session := range m.sessions {
		if session.LastAccessedAt.Before(cutoff) {
			m.remove(key)
			removed++
		}
	}
	if removed > 0 {
		log.Info().Int("removed", removed).Dur("max_age", maxAge).Msg("expired sessions cleaned up")
	}
	return removed
}

// CloseAll stops every engine and forgets all sessions
func (m *Manager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key := range m.sessions {
		m.remove(key)
	}
}

// Count returns the number of active sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// remove detaches the observer and closes the engine. Caller holds mu.
func (m *Manager) remove(key string) {
	if unsubscribe, ok := m.unsubscribers[key]; ok {
		unsubscribe()
		delete(m.unsubscribers, key)
	}
	m.sessions[key].Engine.Close()
	delete(m.sessions, key)
}

func copySession(s *service.Session) *service.Session {
	c := *s
	return &c
}

// generateSessionID generates a random 4-character session ID not already in use.
// Caller holds mu.
func (m *Manager) generateSessionID() string {
	bytes := make([]byte, 2)
	for {
		_, _ = rand.Read(bytes)
		id := hex.EncodeToString(bytes)
		if _, exists := m.sessions[id]; !exists {
			return id
		}
	}
}
