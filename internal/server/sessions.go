package server

import (
	"sync"

	"github.com/google/uuid"
	"github.com/sanonone/netsearch/pkg/metrics"
	"github.com/sanonone/netsearch/pkg/session"
)

// SessionManager tracks the open client sessions of the façade.
type SessionManager struct {
	sessions map[string]*session.Session
	mu       sync.RWMutex
	create   func(id string) *session.Session
}

// NewSessionManager creates a manager building sessions with create.
func NewSessionManager(create func(id string) *session.Session) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*session.Session),
		create:   create,
	}
}

// Open creates a new session, registers it, and returns it.
func (sm *SessionManager) Open() *session.Session {
	s := sm.create(uuid.New().String())

	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.sessions[s.ID()] = s
	metrics.ActiveSessions.Inc()
	return s
}

// Get safely retrieves a session by its ID.
func (sm *SessionManager) Get(id string) (*session.Session, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	s, found := sm.sessions[id]
	return s, found
}

// Close tears down and forgets a session. It reports whether it existed.
func (sm *SessionManager) Close(id string) bool {
	sm.mu.Lock()
	s, found := sm.sessions[id]
	delete(sm.sessions, id)
	sm.mu.Unlock()

	if !found {
		return false
	}
	s.Close()
	metrics.ActiveSessions.Dec()
	return true
}

// CloseAll tears down every session.
func (sm *SessionManager) CloseAll() {
	sm.mu.Lock()
	open := sm.sessions
	sm.sessions = make(map[string]*session.Session)
	sm.mu.Unlock()

	for _, s := range open {
		s.Close()
		metrics.ActiveSessions.Dec()
	}
}

// Len is the number of open sessions.
func (sm *SessionManager) Len() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}
