// Package store holds live draw sessions in memory. Sessions do not survive a
// process restart.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/lin871229/lottery-app-v4/internal/draw"
	id "github.com/lin871229/lottery-app-v4/pkg/domain"
	"github.com/lin871229/lottery-app-v4/pkg/platform/sentinel"
)

type InMemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[id.SessionID]*draw.Session
}

func New() *InMemorySessionStore {
	return &InMemorySessionStore{sessions: make(map[id.SessionID]*draw.Session)}
}

func (s *InMemorySessionStore) Save(_ context.Context, session *draw.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[session.ID]; exists {
		return sentinel.ErrConflict
	}
	s.sessions[session.ID] = session
	return nil
}

func (s *InMemorySessionStore) FindByID(_ context.Context, sessionID id.SessionID) (*draw.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if session, ok := s.sessions[sessionID]; ok {
		return session, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemorySessionStore) Delete(_ context.Context, sessionID id.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.sessions, sessionID)
	return nil
}

// DeleteIdleSince removes sessions whose last activity is before cutoff and
// returns how many were removed.
func (s *InMemorySessionStore) DeleteIdleSince(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for sessionID, session := range s.sessions {
		if session.LastActive().Before(cutoff) {
			delete(s.sessions, sessionID)
			removed++
		}
	}
	return removed, nil
}

func (s *InMemorySessionStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
