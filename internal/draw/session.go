// Package draw implements a draw session: per-category exclusion state plus
// the uniform sampling that honors it.
//
// A session guarantees that, per service category, no organization is selected
// twice until the category is explicitly reset. Every draw is recorded in the
// session's ledger.
package draw

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/lin871229/lottery-app-v4/internal/district"
	"github.com/lin871229/lottery-app-v4/internal/ledger"
	"github.com/lin871229/lottery-app-v4/internal/roster"
	"github.com/lin871229/lottery-app-v4/pkg/domain"
	dErrors "github.com/lin871229/lottery-app-v4/pkg/domain-errors"
	"github.com/lin871229/lottery-app-v4/pkg/requestcontext"
)

// Request asks for Count organizations serving District under Category.
type Request struct {
	Category domain.ServiceCategory
	District string
	Count    int
}

// Result is a successful draw. Events carry the ledger sequence numbers.
type Result struct {
	Organizations []roster.Organization
	DrawnAt       time.Time
	Events        []ledger.Event
}

type Session struct {
	ID        domain.SessionID
	CreatedAt time.Time

	mu         sync.RWMutex
	excluded   map[domain.ServiceCategory]map[string]struct{}
	lastActive time.Time
	lastDrawn  time.Time

	ledger   *ledger.Ledger
	random   Random
	clock    func() time.Time
	catalog  *district.Catalog
	maxCount int
}

// Option configures a Session.
type Option func(*Session)

// WithRandom sets the sampling source.
func WithRandom(r Random) Option {
	return func(s *Session) { s.random = r }
}

// WithClock sets the time source used when the context carries no request time.
func WithClock(clock func() time.Time) Option {
	return func(s *Session) { s.clock = clock }
}

// WithCatalog sets the catalog requests are validated against.
func WithCatalog(c *district.Catalog) Option {
	return func(s *Session) { s.catalog = c }
}

// WithMaxCount caps the number of organizations per draw. Zero means no cap.
func WithMaxCount(n int) Option {
	return func(s *Session) { s.maxCount = n }
}

func NewSession(sessionID domain.SessionID, opts ...Option) *Session {
	s := &Session{
		ID:       sessionID,
		excluded: make(map[domain.ServiceCategory]map[string]struct{}),
		random:   DefaultRandom,
		clock:    time.Now,
		catalog:  district.Kaohsiung(),
		ledger:   ledger.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.CreatedAt = s.clock()
	s.lastActive = s.CreatedAt
	return s
}

// Validate checks a request without touching session state.
//
// Errors: CodeInvalidArgument for unknown categories, districts outside the
// catalog, and counts below one or above the configured cap.
func (s *Session) Validate(req Request) error {
	if !req.Category.IsValid() {
		return dErrors.New(dErrors.CodeInvalidArgument, fmt.Sprintf("unknown category %q", req.Category))
	}
	if !s.catalog.IsValid(req.District) {
		return dErrors.New(dErrors.CodeInvalidArgument, fmt.Sprintf("unknown district %q", req.District))
	}
	if req.Count < 1 {
		return dErrors.New(dErrors.CodeInvalidArgument, "count must be at least 1")
	}
	if s.maxCount > 0 && req.Count > s.maxCount {
		return dErrors.New(dErrors.CodeInvalidArgument, fmt.Sprintf("count must be at most %d", s.maxCount))
	}
	return nil
}

// Draw selects req.Count organizations uniformly at random from those in orgs
// that are eligible for req.District under req.Category and not yet drawn for
// that category in this session. The selection, the exclusion update and the
// ledger append happen under one lock. Every event of a call shares one
// timestamp: the request time from ctx when present, else the session clock,
// raised to the previous draw's timestamp so ledger order stays chronological.
//
// Errors:
//   - CodeInvalidArgument (see Validate)
//   - *InsufficientPoolError when the pool is smaller than req.Count
//
// On error the session is unchanged.
func (s *Session) Draw(ctx context.Context, orgs []roster.Organization, req Request) (*Result, error) {
	if err := s.Validate(req); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	candidates := s.poolLocked(orgs, req.Category, req.District)
	if len(candidates) < req.Count {
		return nil, &InsufficientPoolError{
			Category:  req.Category,
			District:  req.District,
			Requested: req.Count,
			Available: len(candidates),
		}
	}

	picked := sample(candidates, req.Count, s.random)
	drawnAt := s.now(ctx)
	if drawnAt.Before(s.lastDrawn) {
		drawnAt = s.lastDrawn
	}
	requestID := requestcontext.RequestID(ctx)

	excluded := s.excluded[req.Category]
	if excluded == nil {
		excluded = make(map[string]struct{})
		s.excluded[req.Category] = excluded
	}
	events := make([]ledger.Event, len(picked))
	for i, org := range picked {
		excluded[org.ID] = struct{}{}
		events[i] = ledger.Event{
			OrganizationID:   org.ID,
			OrganizationName: org.Name,
			Category:         req.Category,
			District:         req.District,
			DrawnAt:          drawnAt,
			RequestID:        requestID,
		}
	}
	stored := s.ledger.Append(events...)
	s.lastDrawn = drawnAt
	s.touchLocked(drawnAt)

	return &Result{Organizations: picked, DrawnAt: drawnAt, Events: stored}, nil
}

// Pool previews the organizations a draw would choose from, in roster order.
func (s *Session) Pool(orgs []roster.Organization, category domain.ServiceCategory, districtName string) []roster.Organization {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.poolLocked(orgs, category, districtName)
}

func (s *Session) poolLocked(orgs []roster.Organization, category domain.ServiceCategory, districtName string) []roster.Organization {
	excluded := s.excluded[category]
	out := make([]roster.Organization, 0, len(orgs))
	for _, org := range orgs {
		if !org.EligibleFor(category, districtName) {
			continue
		}
		if _, drawn := excluded[org.ID]; drawn {
			continue
		}
		out = append(out, org)
	}
	return out
}

// Reset clears the exclusion set of one category. The ledger is untouched.
func (s *Session) Reset(category domain.ServiceCategory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.excluded, category)
	s.touchLocked(s.clock())
}

// ResetAll clears the exclusion sets of every category. The ledger is untouched.
func (s *Session) ResetAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.excluded)
	s.touchLocked(s.clock())
}

// Excluded returns the IDs drawn so far for category, sorted.
func (s *Session) Excluded(category domain.ServiceCategory) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.excluded[category]))
	for orgID := range s.excluded[category] {
		out = append(out, orgID)
	}
	sort.Strings(out)
	return out
}

// History returns the ledger in chronological order, optionally restricted to
// one category.
func (s *Session) History(category *domain.ServiceCategory) []ledger.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if category == nil {
		return s.ledger.All()
	}
	return s.ledger.ByCategory(*category)
}

// Touch marks the session as active at t.
func (s *Session) Touch(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked(t)
}

func (s *Session) touchLocked(t time.Time) {
	if t.After(s.lastActive) {
		s.lastActive = t
	}
}

// LastActive returns the time of the most recent draw, reset or touch.
func (s *Session) LastActive() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActive
}

func (s *Session) now(ctx context.Context) time.Time {
	if requestcontext.HasTime(ctx) {
		return requestcontext.Now(ctx).UTC()
	}
	return s.clock().UTC()
}
