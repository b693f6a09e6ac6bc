package rag

import (
	"sort"
	"sync"

	"github.com/yildizm/vidsynth/internal/common"
	"github.com/yildizm/vidsynth/internal/logger"
)

// SessionStore keeps independent sessions in memory, keyed by session ID
type SessionStore struct {
	mu        sync.RWMutex
	sessions  map[string]*Session
	retriever *Retriever
	composer  *Composer
	logger    *logger.Logger
}

// NewSessionStore creates an empty store whose sessions share the retriever
// and composer configuration
func NewSessionStore(retriever *Retriever, composer *Composer, log *logger.Logger) *SessionStore {
	return &SessionStore{
		sessions:  make(map[string]*Session),
		retriever: retriever,
		composer:  composer,
		logger:    log,
	}
}

// Create adds a new empty session
func (ss *SessionStore) Create() *Session {
	session := NewSession(ss.retriever, ss.composer, ss.logger)

	ss.mu.Lock()
	ss.sessions[session.ID] = session
	ss.mu.Unlock()

	return session
}

// Get returns the session with the given ID
func (ss *SessionStore) Get(id string) (*Session, error) {
	ss.mu.RLock()
	defer ss.mu.RUnlock()

	session, ok := ss.sessions[id]
	if !ok {
		return nil, common.NewNotFoundError(id)
	}
	return session, nil
}

// Delete removes a session
func (ss *SessionStore) Delete(id string) error {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	session, ok := ss.sessions[id]
	if !ok {
		return common.NewNotFoundError(id)
	}
	session.Reset()
	delete(ss.sessions, id)
	return nil
}

// List returns session IDs in creation order
func (ss *SessionStore) List() []string {
	ss.mu.RLock()
	sessions := make([]*Session, 0, len(ss.sessions))
	for _, s := range ss.sessions {
		sessions = append(sessions, s)
	}
	ss.mu.RUnlock()

	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].CreatedAt.Equal(sessions[j].CreatedAt) {
			return sessions[i].ID < sessions[j].ID
		}
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})

	ids := make([]string, len(sessions))
	for i, s := range sessions {
		ids[i] = s.ID
	}
	return ids
}

// Len returns the number of sessions
func (ss *SessionStore) Len() int {
	ss.mu.RLock()
	defer ss.mu.RUnlock()
	return len(ss.sessions)
}
