package service

import (
	"context"
	"errors"
	"io"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/lin871229/lottery-app-v4/internal/draw"
	"github.com/lin871229/lottery-app-v4/internal/draw/metrics"
	"github.com/lin871229/lottery-app-v4/internal/export"
	"github.com/lin871229/lottery-app-v4/internal/ledger"
	"github.com/lin871229/lottery-app-v4/internal/roster"
	id "github.com/lin871229/lottery-app-v4/pkg/domain"
	dErrors "github.com/lin871229/lottery-app-v4/pkg/domain-errors"
	"github.com/lin871229/lottery-app-v4/pkg/requestcontext"
)

// SessionSummary describes a live session.
type SessionSummary struct {
	ID         id.SessionID
	CreatedAt  time.Time
	LastActive time.Time
	Draws      int
	// Excluded counts the organizations drawn since the last reset, per category.
	Excluded map[id.ServiceCategory]int
}

// DrawRequest identifies the roster to draw from and what to draw. Category
// accepts a code or a label.
type DrawRequest struct {
	RosterID id.RosterID
	Category string
	District string
	Count    int
}

// CreateSession starts an empty session.
func (s *Service) CreateSession(ctx context.Context) (*SessionSummary, error) {
	session := draw.NewSession(id.NewSessionID(),
		draw.WithRandom(s.random),
		draw.WithClock(s.clock),
		draw.WithCatalog(s.catalog),
		draw.WithMaxCount(s.maxCount),
	)
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store session")
	}
	s.metrics.SetActiveSessions(s.sessions.Count())
	s.logger.Info("session created", zap.String("session_id", session.ID.String()))

	return &SessionSummary{ID: session.ID, CreatedAt: session.CreatedAt, LastActive: session.LastActive()}, nil
}

// GetSession returns the summary of a live session.
func (s *Service) GetSession(ctx context.Context, sessionID id.SessionID) (*SessionSummary, error) {
	session, err := s.findSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &SessionSummary{
		ID:         session.ID,
		CreatedAt:  session.CreatedAt,
		LastActive: session.LastActive(),
		Draws:      len(session.History(nil)),
		Excluded:   excludedCounts(session),
	}, nil
}

func excludedCounts(session *draw.Session) map[id.ServiceCategory]int {
	counts := make(map[id.ServiceCategory]int)
	for _, c := range id.Categories() {
		if n := len(session.Excluded(c)); n > 0 {
			counts[c] = n
		}
	}
	return counts
}

// EndSession discards a session and its history.
func (s *Service) EndSession(ctx context.Context, sessionID id.SessionID) error {
	if _, err := s.findSession(ctx, sessionID); err != nil {
		return err
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete session")
	}
	s.metrics.SetActiveSessions(s.sessions.Count())
	s.logger.Info("session ended", zap.String("session_id", sessionID.String()))
	return nil
}

// Draw runs one draw in a session against a stored roster.
//
// Errors:
//   - CodeNotFound for unknown sessions or rosters
//   - CodeInvalidArgument for bad category, district or count
//   - *draw.InsufficientPoolError (CodeInsufficientPool) when the pool is too small
func (s *Service) Draw(ctx context.Context, sessionID id.SessionID, req DrawRequest) (*draw.Result, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "draw.Draw", trace.WithAttributes(
		attribute.String("lottery.session_id", sessionID.String()),
		attribute.String("lottery.district", req.District),
		attribute.Int("lottery.count", req.Count),
	))
	defer span.End()

	logger := s.logger.With(
		zap.String("session_id", sessionID.String()),
		zap.String("request_id", requestcontext.RequestID(ctx)),
		zap.String("district", req.District),
		zap.Int("count", req.Count),
	)

	category, err := id.ParseServiceCategory(req.Category)
	if err != nil {
		s.metrics.ObserveDraw(req.Category, metrics.OutcomeInvalid, 0, start)
		recordSpanError(span, err)
		return nil, err
	}
	span.SetAttributes(categoryAttr(category))
	logger = logger.With(zap.String("category", string(category)))

	session, err := s.findSession(ctx, sessionID)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	entry, err := s.findRoster(ctx, req.RosterID)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	result, err := session.Draw(ctx, entry.Result.Organizations(), draw.Request{
		Category: category,
		District: req.District,
		Count:    req.Count,
	})
	if err != nil {
		var pool *draw.InsufficientPoolError
		switch {
		case errors.As(err, &pool):
			s.metrics.ObserveDraw(string(category), metrics.OutcomeInsufficientPool, 0, start)
			logger.Info("draw rejected: insufficient pool",
				zap.Int("available", pool.Available),
				zap.Bool("roster_has_category", entry.Result.SupportsCategory(category)),
			)
		case dErrors.HasCode(err, dErrors.CodeInvalidArgument):
			s.metrics.ObserveDraw(string(category), metrics.OutcomeInvalid, 0, start)
			logger.Debug("draw rejected: invalid request", zap.Error(err))
		default:
			s.metrics.ObserveDraw(string(category), metrics.OutcomeError, 0, start)
			logger.Error("draw failed", zap.Error(err))
		}
		recordSpanError(span, err)
		return nil, err
	}

	s.metrics.ObserveDraw(string(category), metrics.OutcomeSuccess, len(result.Organizations), start)
	names := make([]string, len(result.Organizations))
	for i, org := range result.Organizations {
		names[i] = org.Name
	}
	logger.Info("draw completed", zap.Strings("organizations", names), zap.Time("drawn_at", result.DrawnAt))
	return result, nil
}

// Pool previews the organizations a draw would choose from. The request is
// validated the same way a draw is, but no state changes.
func (s *Service) Pool(ctx context.Context, sessionID id.SessionID, rosterID id.RosterID, category, districtName string) ([]roster.Organization, error) {
	c, err := id.ParseServiceCategory(category)
	if err != nil {
		return nil, err
	}
	session, err := s.findSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	entry, err := s.findRoster(ctx, rosterID)
	if err != nil {
		return nil, err
	}
	if err := session.Validate(draw.Request{Category: c, District: districtName, Count: 1}); err != nil {
		return nil, err
	}
	return session.Pool(entry.Result.Organizations(), c, districtName), nil
}

// Reset clears the exclusions of one category, or of all categories when
// category is empty. History is kept.
func (s *Service) Reset(ctx context.Context, sessionID id.SessionID, category string) error {
	session, err := s.findSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if category == "" {
		session.ResetAll()
		s.logger.Info("session reset", zap.String("session_id", sessionID.String()))
		return nil
	}
	c, err := id.ParseServiceCategory(category)
	if err != nil {
		return err
	}
	session.Reset(c)
	s.logger.Info("category reset",
		zap.String("session_id", sessionID.String()),
		zap.String("category", string(c)),
	)
	return nil
}

// History returns the session ledger, optionally for one category.
func (s *Service) History(ctx context.Context, sessionID id.SessionID, category string) ([]ledger.Event, error) {
	session, err := s.findSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if category == "" {
		return session.History(nil), nil
	}
	c, err := id.ParseServiceCategory(category)
	if err != nil {
		return nil, err
	}
	return session.History(&c), nil
}

// Export writes the session history in format to w.
func (s *Service) Export(ctx context.Context, w io.Writer, sessionID id.SessionID, format export.Format, category string) error {
	events, err := s.History(ctx, sessionID, category)
	if err != nil {
		return err
	}
	if err := export.Write(w, format, events, s.location); err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvalidArgument) {
			return err
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to write export")
	}
	return nil
}

// Sweep removes sessions idle for longer than ttl and rosters no session has
// read for longer than ttl.
func (s *Service) Sweep(ctx context.Context, ttl time.Duration) (sessions int, rosters int, err error) {
	cutoff := s.clock().Add(-ttl)
	sessions, err = s.sessions.DeleteIdleSince(ctx, cutoff)
	if err != nil {
		return 0, 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sweep sessions")
	}
	rosters, err = s.rosters.DeleteUnusedSince(ctx, cutoff)
	if err != nil {
		return sessions, 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to sweep rosters")
	}
	s.metrics.AddSessionsExpired(sessions)
	s.metrics.SetActiveSessions(s.sessions.Count())
	return sessions, rosters, nil
}
