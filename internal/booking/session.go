package booking

import (
	"context"
	"sync"
	"time"

	"holidaze/internal/scope"

	"github.com/google/uuid"
)

// Session is a booking form hosted for a remote client.
type Session struct {
	ID        string
	Form      *Form
	Scope     *scope.Scope
	StartedAt time.Time
	UpdatedAt time.Time
	mu        sync.Mutex
}

// Touch marks the session as used.
func (s *Session) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.UpdatedAt = time.Now()
}

// IsExpired checks if session has been idle longer than timeout.
func (s *Session) IsExpired(timeout time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Since(s.UpdatedAt) > timeout
}

// SessionStore manages form sessions.
type SessionStore struct {
	sessions map[string]*Session
	mu       sync.RWMutex
	timeout  time.Duration
}

// NewSessionStore creates a new session store.
func NewSessionStore(timeout time.Duration) *SessionStore {
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	return &SessionStore{
		sessions: make(map[string]*Session),
		timeout:  timeout,
	}
}

// Create registers a form under a fresh id. The session scope derives from
// parent and is closed when the session is removed.
func (ss *SessionStore) Create(parent context.Context, form *Form) *Session {
	now := time.Now()
	session := &Session{
		ID:        uuid.NewString(),
		Form:      form,
		Scope:     scope.New(parent),
		StartedAt: now,
		UpdatedAt: now,
	}

	ss.mu.Lock()
	ss.sessions[session.ID] = session
	ss.mu.Unlock()
	return session
}

// Get returns a live session and marks it used, or nil.
func (ss *SessionStore) Get(id string) *Session {
	ss.mu.RLock()
	session, ok := ss.sessions[id]
	ss.mu.RUnlock()
	if !ok || session.IsExpired(ss.timeout) {
		return nil
	}
	session.Touch()
	return session
}

// Delete removes a session and cancels its work.
func (ss *SessionStore) Delete(id string) {
	ss.mu.Lock()
	session, ok := ss.sessions[id]
	delete(ss.sessions, id)
	ss.mu.Unlock()

	if ok {
		session.Scope.Close()
	}
}

// Len returns the number of sessions held.
func (ss *SessionStore) Len() int {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return len(ss.sessions)
}

// Cleanup removes expired sessions.
func (ss *SessionStore) Cleanup() int {
	ss.mu.Lock()
	var expired []*Session
	for id, session := range ss.sessions {
		if session.IsExpired(ss.timeout) {
			delete(ss.sessions, id)
			expired = append(expired, session)
		}
	}
	ss.mu.Unlock()

	for _, session := range expired {
		session.Scope.Close()
	}
	return len(expired)
}

// Close removes every session.
func (ss *SessionStore) Close() {
	ss.mu.Lock()
	sessions := ss.sessions
	ss.sessions = make(map[string]*Session)
	ss.mu.Unlock()

	for _, session := range sessions {
		session.Scope.Close()
	}
}

// Run cleans up expired sessions every interval until ctx is done.
func (ss *SessionStore) Run(ctx context.Context, interval time.Duration, onCleanup func(removed, remaining int)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed := ss.Cleanup()
			if onCleanup != nil {
				onCleanup(removed, ss.Len())
			}
		}
	}
}
