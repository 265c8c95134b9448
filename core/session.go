package core

import (
	"sync"
	"time"
)

// Session is a conversational container holding the ordered message history
// of one user. It is safe for concurrent access.
type Session struct {
	ID      string    `json:"id"`
	History []Message `json:"history"`
	Created time.Time `json:"created"`
	Updated time.Time `json:"updated"`
	mu      sync.RWMutex
}

// NewSession creates a new empty session with the given ID.
func NewSession(id string) *Session {
	now := time.Now()
	return &Session{ID: id, History: []Message{}, Created: now, Updated: now}
}

// AddMessage appends a message updating the Updated timestamp.
func (s *Session) AddMessage(m Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.History = append(s.History, m)
	s.Updated = time.Now()
}

// Recent returns a copy of the last n messages (all when n <= 0).
func (s *Session) Recent(n int) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h := s.History
	if n > 0 && len(h) > n {
		h = h[len(h)-n:]
	}
	out := make([]Message, len(h))
	copy(out, h)
	return out
}

// MemoryContext returns the session as a MemoryContext bounded to MaxHistoryTurns.
func (s *Session) MemoryContext() MemoryContext {
	return MemoryContext{SessionID: s.ID, History: s.Recent(MaxHistoryTurns)}
}

// Clone returns a deep copy of the session safe for independent mutation.
func (s *Session) Clone() *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	clone := &Session{ID: s.ID, History: make([]Message, len(s.History)), Created: s.Created, Updated: s.Updated}
	copy(clone.History, s.History)
	return clone
}

// SessionStore persists sessions and their message history.
type SessionStore interface {
	Get(id string) (*Session, error)
	Append(sessionID string, msgs ...Message) error
}
