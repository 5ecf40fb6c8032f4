package scoring

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Manager tracks live scoring sessions by id so transport handlers can route
// actions to them. Sessions themselves are single-owner; the manager only
// guards the lookup table.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager constructs an empty Manager.
func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session)}
}

// Start creates a new session and returns its id.
func (m *Manager) Start(cfg Config) (string, *Session) {
	id := uuid.NewString()
	session := NewSession(cfg)

	m.mu.Lock()
	m.sessions[id] = session
	m.mu.Unlock()

	return id, session
}

// Get returns the session for the given id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("no live session with id %s", id)
	}
	return session, nil
}

// Remove drops a session once it has been finalized or abandoned.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
