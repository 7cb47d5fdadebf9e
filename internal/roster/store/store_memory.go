// Package store keeps normalized rosters in memory. Stored rosters are shared
// read-only by every session drawing from them.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/lin871229/lottery-app-v4/internal/roster"
	id "github.com/lin871229/lottery-app-v4/pkg/domain"
	"github.com/lin871229/lottery-app-v4/pkg/platform/sentinel"
)

// Entry is a stored roster with its upload metadata. LastUsed is owned by the
// store; read it through FindByID.
type Entry struct {
	ID         id.RosterID
	Filename   string
	UploadedAt time.Time
	LastUsed   time.Time
	Result     *roster.Result
}

type InMemoryRosterStore struct {
	mu      sync.RWMutex
	rosters map[id.RosterID]*Entry
}

func New() *InMemoryRosterStore {
	return &InMemoryRosterStore{rosters: make(map[id.RosterID]*Entry)}
}

func (s *InMemoryRosterStore) Save(_ context.Context, entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry.LastUsed.Before(entry.UploadedAt) {
		entry.LastUsed = entry.UploadedAt
	}
	s.rosters[entry.ID] = entry
	return nil
}

func (s *InMemoryRosterStore) FindByID(_ context.Context, rosterID id.RosterID) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if entry, ok := s.rosters[rosterID]; ok {
		found := *entry
		return &found, nil
	}
	return nil, sentinel.ErrNotFound
}

// MarkUsed records that a session read the roster at t. It never moves
// LastUsed backwards.
func (s *InMemoryRosterStore) MarkUsed(_ context.Context, rosterID id.RosterID, t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.rosters[rosterID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if t.After(entry.LastUsed) {
		entry.LastUsed = t
	}
	return nil
}

func (s *InMemoryRosterStore) Delete(_ context.Context, rosterID id.RosterID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rosters[rosterID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.rosters, rosterID)
	return nil
}

// DeleteUnusedSince removes rosters last used before cutoff and returns how
// many were removed.
func (s *InMemoryRosterStore) DeleteUnusedSince(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for rosterID, entry := range s.rosters {
		if entry.LastUsed.Before(cutoff) {
			delete(s.rosters, rosterID)
			removed++
		}
	}
	return removed, nil
}

func (s *InMemoryRosterStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rosters)
}
