package session

import (
	"sync"

	"github.com/hupe1980/pantrymesh/core"
)

// Options configures an InMemoryStore.
type Options struct {
	// MaxMessages caps the retained history per session. Older messages are
	// dropped first. Zero keeps everything.
	MaxMessages int
}

// InMemoryStore is a volatile SessionStore implementation storing sessions in
// a process local map. It is safe for concurrent access. Each returned session
// is cloned to prevent external mutation of internal state.
type InMemoryStore struct {
	mu          sync.RWMutex
	sessions    map[string]*core.Session
	maxMessages int
}

// NewInMemoryStore constructs an empty in-memory session store.
func NewInMemoryStore(optFns ...func(o *Options)) *InMemoryStore {
	opts := Options{MaxMessages: 100}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &InMemoryStore{sessions: make(map[string]*core.Session), maxMessages: opts.MaxMessages}
}

// Get returns an existing session (clone) or an empty one. Unknown sessions
// are not persisted until a message is appended.
func (s *InMemoryStore) Get(sessionID string) (*core.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sess, ok := s.sessions[sessionID]; ok {
		return sess.Clone(), nil
	}
	return core.NewSession(sessionID), nil
}

// Append adds messages to an existing or newly created session.
func (s *InMemoryStore) Append(sessionID string, msgs ...core.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = s.createSessionLocked(sessionID)
	}
	for _, m := range msgs {
		sess.AddMessage(m)
	}
	if s.maxMessages > 0 && len(sess.History) > s.maxMessages {
		sess.History = sess.Recent(s.maxMessages)
	}
	return nil
}

// Delete removes a session. Deleting an unknown session is a no-op.
func (s *InMemoryStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// IDs returns the ids of the stored sessions.
func (s *InMemoryStore) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		out = append(out, id)
	}
	return out
}

// createSessionLocked allocates and stores a new session; caller must already
// hold the write lock.
func (s *InMemoryStore) createSessionLocked(sessionID string) *core.Session {
	sess := core.NewSession(sessionID)
	s.sessions[sessionID] = sess
	return sess
}
