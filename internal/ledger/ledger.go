// Package ledger records every draw performed in a session. It is append-only:
// there is no way to remove or rewrite an event, and resets of the exclusion
// state never touch it.
package ledger

import (
	"slices"
	"sync"
	"time"

	"github.com/lin871229/lottery-app-v4/pkg/domain"
)

// Event is one selected organization.
type Event struct {
	// Seq is 1-based and strictly increasing within a ledger.
	Seq              int
	OrganizationID   string
	OrganizationName string
	Category         domain.ServiceCategory
	District         string
	// DrawnAt is shared by every event produced by the same draw call.
	DrawnAt   time.Time
	RequestID string
}

type Ledger struct {
	mu     sync.RWMutex
	events []Event
}

func New() *Ledger {
	return &Ledger{}
}

// Append records events in the given order, assigning sequence numbers.
// The stored events (with Seq set) are returned.
func (l *Ledger) Append(events ...Event) []Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Event, len(events))
	for i, e := range events {
		e.Seq = len(l.events) + 1
		l.events = append(l.events, e)
		out[i] = e
	}
	return out
}

// All returns a chronological copy of every event.
func (l *Ledger) All() []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.events)
}

// ByCategory returns the chronological subsequence for category.
func (l *Ledger) ByCategory(category domain.ServiceCategory) []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Event, 0, len(l.events))
	for _, e := range l.events {
		if e.Category == category {
			out = append(out, e)
		}
	}
	return out
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}
