package draw

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/lin871229/lottery-app-v4/internal/ledger"
	"github.com/lin871229/lottery-app-v4/internal/roster"
	"github.com/lin871229/lottery-app-v4/pkg/domain"
	dErrors "github.com/lin871229/lottery-app-v4/pkg/domain-errors"
	"github.com/lin871229/lottery-app-v4/pkg/requestcontext"
)

type SessionSuite struct {
	suite.Suite
	ctx     context.Context
	now     time.Time
	orgs    []roster.Organization
	session *Session
}

func TestSessionSuite(t *testing.T) {
	suite.Run(t, new(SessionSuite))
}

func (s *SessionSuite) SetupTest() {
	s.ctx = context.Background()
	s.now = time.Date(2024, 6, 3, 1, 30, 0, 0, time.UTC)
	s.orgs = buildRoster(s.T(),
		[]string{"A", "左營區", "左營區"},
		[]string{"B", "左營區、鼓山區", ""},
		[]string{"C", "左營區", "鼓山區"},
		[]string{"D", "鼓山區", "左營區"},
		[]string{"E", "", "左營區"},
	)
	s.session = s.newSession(NewSeeded(1))
}

func (s *SessionSuite) newSession(r Random) *Session {
	return NewSession(domain.NewSessionID(),
		WithRandom(r),
		WithClock(func() time.Time { return s.now }),
	)
}

func (s *SessionSuite) draw(category domain.ServiceCategory, districtName string, count int) (*Result, error) {
	return s.session.Draw(s.ctx, s.orgs, Request{Category: category, District: districtName, Count: count})
}

func (s *SessionSuite) TestConcreteScenario() {
	orgs := buildRoster(s.T(),
		[]string{"A", "左營區", ""},
		[]string{"B", "左營區", ""},
		[]string{"C", "左營區", ""},
	)
	req := Request{Category: domain.CategoryTransport, District: "左營區", Count: 2}

	first, err := s.session.Draw(s.ctx, orgs, req)
	s.Require().NoError(err)
	s.Len(first.Organizations, 2)
	s.Subset([]string{"A", "B", "C"}, ids(first.Organizations))
	s.ElementsMatch(ids(first.Organizations), s.session.Excluded(domain.CategoryTransport))

	_, err = s.session.Draw(s.ctx, orgs, req)
	s.Require().Error(err)
	var pool *InsufficientPoolError
	s.Require().ErrorAs(err, &pool)
	s.Equal(2, pool.Requested)
	s.Equal(1, pool.Available)
	s.True(dErrors.HasCode(err, dErrors.CodeInsufficientPool))
	s.Len(s.session.Excluded(domain.CategoryTransport), 2)
	s.Len(s.session.History(nil), 2)
}

func (s *SessionSuite) TestNoRepeatWithinCategory() {
	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		res, err := s.draw(domain.CategoryTransport, "左營區", 1)
		s.Require().NoError(err)
		id := res.Organizations[0].ID
		s.False(seen[id], "organization %s drawn twice", id)
		seen[id] = true
	}
	s.Len(seen, 3)

	for _, e := range s.session.History(nil) {
		s.True(seen[e.OrganizationID])
	}
}

func (s *SessionSuite) TestExclusionSpansDistricts() {
	// B serves both districts; once drawn for 左營區 it is gone for 鼓山區 too.
	r := s.session
	_, err := r.Draw(s.ctx, s.orgs, Request{Category: domain.CategoryTransport, District: "左營區", Count: 3})
	s.Require().NoError(err)

	pool := r.Pool(s.orgs, domain.CategoryTransport, "鼓山區")
	s.Equal([]string{"D"}, ids(pool))
}

func (s *SessionSuite) TestEligibility() {
	for i := 0; i < 3; i++ {
		res, err := s.draw(domain.CategoryHomeRespite, "左營區", 1)
		s.Require().NoError(err)
		org := res.Organizations[0]
		s.True(org.EligibleFor(domain.CategoryHomeRespite, "左營區"))
		s.Contains([]string{"A", "D", "E"}, org.ID)
	}
	_, err := s.draw(domain.CategoryHomeRespite, "左營區", 1)
	s.ErrorAs(err, new(*InsufficientPoolError))
}

func (s *SessionSuite) TestExhaustion() {
	k := len(s.session.Pool(s.orgs, domain.CategoryTransport, "左營區"))
	s.Require().Equal(3, k)

	for i := 0; i < k; i++ {
		_, err := s.draw(domain.CategoryTransport, "左營區", 1)
		s.Require().NoError(err)
	}
	before := s.session.History(nil)

	_, err := s.draw(domain.CategoryTransport, "左營區", 1)
	var pool *InsufficientPoolError
	s.Require().ErrorAs(err, &pool)
	s.Equal(0, pool.Available)
	s.Equal("左營區", pool.District)
	s.Equal(domain.CategoryTransport, pool.Category)
	s.Equal(before, s.session.History(nil))
	s.Len(s.session.Excluded(domain.CategoryTransport), k)
}

func (s *SessionSuite) TestNoEligibleOrganizations() {
	_, err := s.draw(domain.CategoryTransport, "三民區", 1)
	var pool *InsufficientPoolError
	s.Require().ErrorAs(err, &pool)
	s.Equal(0, pool.Available)
	s.Empty(s.session.History(nil))
}

func (s *SessionSuite) TestInvalidRequests() {
	tests := []struct {
		name string
		req  Request
	}{
		{"unknown category", Request{Category: "meals", District: "左營區", Count: 1}},
		{"unknown district", Request{Category: domain.CategoryTransport, District: "信義區", Count: 1}},
		{"partial district", Request{Category: domain.CategoryTransport, District: "左營", Count: 1}},
		{"zero count", Request{Category: domain.CategoryTransport, District: "左營區", Count: 0}},
		{"negative count", Request{Category: domain.CategoryTransport, District: "左營區", Count: -2}},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.session.Draw(s.ctx, s.orgs, tt.req)
			s.Require().Error(err)
			s.True(dErrors.HasCode(err, dErrors.CodeInvalidArgument))
			s.Empty(s.session.History(nil))
			s.Empty(s.session.Excluded(domain.CategoryTransport))
		})
	}
}

func (s *SessionSuite) TestMaxCount() {
	session := NewSession(domain.NewSessionID(), WithMaxCount(2))
	_, err := session.Draw(s.ctx, s.orgs, Request{Category: domain.CategoryTransport, District: "左營區", Count: 3})
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidArgument))

	res, err := session.Draw(s.ctx, s.orgs, Request{Category: domain.CategoryTransport, District: "左營區", Count: 2})
	s.Require().NoError(err)
	s.Len(res.Organizations, 2)
}

func (s *SessionSuite) TestSharedTimestamp() {
	s.Run("session clock", func() {
		res, err := s.draw(domain.CategoryTransport, "左營區", 2)
		s.Require().NoError(err)
		s.Equal(s.now, res.DrawnAt)
		for _, e := range res.Events {
			s.Equal(res.DrawnAt, e.DrawnAt)
		}
	})

	s.Run("request time and id from context", func() {
		requestTime := time.Date(2024, 6, 3, 10, 0, 0, 0, time.FixedZone("CST", 8*3600))
		ctx := requestcontext.WithTime(s.ctx, requestTime)
		ctx = requestcontext.WithRequestID(ctx, "req-1")

		res, err := s.session.Draw(ctx, s.orgs, Request{Category: domain.CategoryHomeRespite, District: "左營區", Count: 3})
		s.Require().NoError(err)
		s.True(requestTime.Equal(res.DrawnAt))
		s.Equal(time.UTC, res.DrawnAt.Location())
		for _, e := range res.Events {
			s.Equal(res.DrawnAt, e.DrawnAt)
			s.Equal("req-1", e.RequestID)
		}
	})
}

func (s *SessionSuite) TestLedgerStaysChronological() {
	later := requestcontext.WithTime(s.ctx, s.now.Add(5*time.Second))
	earlier := requestcontext.WithTime(s.ctx, s.now)

	first, err := s.session.Draw(later, s.orgs, Request{Category: domain.CategoryTransport, District: "左營區", Count: 1})
	s.Require().NoError(err)
	second, err := s.session.Draw(earlier, s.orgs, Request{Category: domain.CategoryTransport, District: "左營區", Count: 1})
	s.Require().NoError(err)

	s.Equal(s.now.Add(5*time.Second), first.DrawnAt)
	s.False(second.DrawnAt.Before(first.DrawnAt), "a request that reached the lock later is never stamped earlier")

	history := s.session.History(nil)
	s.Require().Len(history, 2)
	s.False(history[1].DrawnAt.Before(history[0].DrawnAt))
	s.Equal(s.now.Add(5*time.Second), s.session.LastActive(), "last activity never moves backwards")
}

func (s *SessionSuite) TestLedgerAppendOnly() {
	var snapshots [][]ledger.Event
	for i := 0; i < 4; i++ {
		category := domain.CategoryTransport
		if i%2 == 1 {
			category = domain.CategoryHomeRespite
		}
		res, err := s.draw(category, "左營區", 1)
		s.Require().NoError(err)
		s.Equal(i+1, res.Events[0].Seq)
		snapshots = append(snapshots, s.session.History(nil))
	}

	all := s.session.History(nil)
	s.Len(all, 4)
	for i, snap := range snapshots {
		s.Equal(snap, all[:i+1], "entry changed after draw %d", i+1)
	}

	transport := domain.CategoryTransport
	byCategory := s.session.History(&transport)
	s.Len(byCategory, 2)
	s.Equal(all[0], byCategory[0])
	s.Equal(all[2], byCategory[1])
}

func (s *SessionSuite) TestResetScoping() {
	_, err := s.draw(domain.CategoryTransport, "左營區", 3)
	s.Require().NoError(err)
	_, err = s.draw(domain.CategoryHomeRespite, "左營區", 2)
	s.Require().NoError(err)

	s.session.Reset(domain.CategoryTransport)

	s.Empty(s.session.Excluded(domain.CategoryTransport))
	s.Len(s.session.Excluded(domain.CategoryHomeRespite), 2)
	s.Len(s.session.History(nil), 5, "reset leaves the ledger alone")
	s.Len(s.session.Pool(s.orgs, domain.CategoryTransport, "左營區"), 3)
	s.Len(s.session.Pool(s.orgs, domain.CategoryHomeRespite, "左營區"), 1)

	_, err = s.draw(domain.CategoryTransport, "左營區", 3)
	s.NoError(err, "previously drawn organizations are eligible again")

	s.session.ResetAll()
	s.Empty(s.session.Excluded(domain.CategoryTransport))
	s.Empty(s.session.Excluded(domain.CategoryHomeRespite))
	s.Len(s.session.History(nil), 8)
}

func (s *SessionSuite) TestSessionsAreIsolated() {
	other := s.newSession(NewSeeded(2))
	_, err := s.draw(domain.CategoryTransport, "左營區", 3)
	s.Require().NoError(err)

	s.Len(other.Pool(s.orgs, domain.CategoryTransport, "左營區"), 3)
	s.Empty(other.History(nil))
}

// Each of n eligible organizations is drawn with frequency near 1/n.
func (s *SessionSuite) TestUniformity() {
	const trials = 3000
	orgs := buildRoster(s.T(),
		[]string{"A", "左營區", ""},
		[]string{"B", "左營區", ""},
		[]string{"C", "左營區", ""},
	)
	counts := map[string]int{}
	for seed := uint64(0); seed < trials; seed++ {
		session := NewSession(domain.NewSessionID(), WithRandom(NewSeeded(seed)))
		res, err := session.Draw(s.ctx, orgs, Request{Category: domain.CategoryTransport, District: "左營區", Count: 1})
		s.Require().NoError(err)
		counts[res.Organizations[0].ID]++
	}
	for _, name := range []string{"A", "B", "C"} {
		s.InDelta(1.0/3, float64(counts[name])/trials, 0.05, name)
	}
}

func (s *SessionSuite) TestConcurrentDraws() {
	rows := make([][]string, 0, 40)
	for i := 0; i < 40; i++ {
		rows = append(rows, []string{string(rune('一' + i)), "左營區", ""})
	}
	members := buildRoster(s.T(), rows...)
	session := NewSession(domain.NewSessionID())

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		drawn    []string
		failures int
	)
	for i := 0; i < 60; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := session.Draw(s.ctx, members, Request{Category: domain.CategoryTransport, District: "左營區", Count: 1})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if errors.As(err, new(*InsufficientPoolError)) {
					failures++
				}
				return
			}
			drawn = append(drawn, res.Organizations[0].ID)
		}()
	}
	wg.Wait()

	s.Len(drawn, 40)
	s.Equal(20, failures)
	unique := map[string]struct{}{}
	for _, id := range drawn {
		unique[id] = struct{}{}
	}
	s.Len(unique, 40)
	s.Len(session.History(nil), 40)
}

func (s *SessionSuite) TestLastActive() {
	s.Equal(s.now, s.session.LastActive())
	later := s.now.Add(time.Hour)
	s.session.Touch(later)
	s.Equal(later, s.session.LastActive())
	s.session.Touch(s.now)
	s.Equal(later, s.session.LastActive(), "touch never moves backwards")
}
