// Package service is the engine facade used by the HTTP handlers and the CLI.
// It owns session and roster lifecycles and records metrics, traces and logs
// around the draw session core.
package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/lin871229/lottery-app-v4/internal/district"
	"github.com/lin871229/lottery-app-v4/internal/draw"
	"github.com/lin871229/lottery-app-v4/internal/draw/metrics"
	"github.com/lin871229/lottery-app-v4/internal/roster"
	rosterstore "github.com/lin871229/lottery-app-v4/internal/roster/store"
	id "github.com/lin871229/lottery-app-v4/pkg/domain"
	dErrors "github.com/lin871229/lottery-app-v4/pkg/domain-errors"
	"github.com/lin871229/lottery-app-v4/pkg/platform/sentinel"
)

const tracerName = "github.com/lin871229/lottery-app-v4/internal/draw/service"

type SessionStore interface {
	Save(ctx context.Context, session *draw.Session) error
	FindByID(ctx context.Context, sessionID id.SessionID) (*draw.Session, error)
	Delete(ctx context.Context, sessionID id.SessionID) error
	DeleteIdleSince(ctx context.Context, cutoff time.Time) (int, error)
	Count() int
}

type RosterStore interface {
	Save(ctx context.Context, entry *rosterstore.Entry) error
	FindByID(ctx context.Context, rosterID id.RosterID) (*rosterstore.Entry, error)
	MarkUsed(ctx context.Context, rosterID id.RosterID, t time.Time) error
	DeleteUnusedSince(ctx context.Context, cutoff time.Time) (int, error)
}

// Service orchestrates rosters and draw sessions.
type Service struct {
	sessions SessionStore
	rosters  RosterStore
	catalog  *district.Catalog

	logger   *zap.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
	clock    func() time.Time
	random   draw.Random
	location *time.Location
	layout   roster.Layout
	maxCount int
}

type Option func(s *Service)

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		s.clock = clock
	}
}

// WithRandom shares one sampling source across every new session.
func WithRandom(r draw.Random) Option {
	return func(s *Service) {
		s.random = r
	}
}

// WithLocation sets the zone export timestamps are rendered in.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		s.location = loc
	}
}

// WithDefaultLayout sets the layout used when an upload names none.
func WithDefaultLayout(layout roster.Layout) Option {
	return func(s *Service) {
		s.layout = layout
	}
}

// WithMaxDrawCount caps the count of a single draw. Zero disables the cap.
func WithMaxDrawCount(n int) Option {
	return func(s *Service) {
		s.maxCount = n
	}
}

// New constructs a Service. The default layout is the first built-in preset
// unless WithDefaultLayout is given.
func New(sessions SessionStore, rosters RosterStore, catalog *district.Catalog, opts ...Option) *Service {
	s := &Service{
		sessions: sessions,
		rosters:  rosters,
		catalog:  catalog,
		logger:   zap.NewNop(),
		tracer:   otel.Tracer(tracerName),
		clock:    time.Now,
		random:   draw.DefaultRandom,
		location: time.UTC,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListDistricts returns the catalog in its fixed order.
func (s *Service) ListDistricts() []string {
	return s.catalog.All()
}

func (s *Service) findSession(ctx context.Context, sessionID id.SessionID) (*draw.Session, error) {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "session not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load session")
	}
	session.Touch(s.clock())
	return session, nil
}

func (s *Service) findRoster(ctx context.Context, rosterID id.RosterID) (*rosterstore.Entry, error) {
	entry, err := s.rosters.FindByID(ctx, rosterID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "roster not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load roster")
	}
	if err := s.rosters.MarkUsed(ctx, rosterID, s.clock()); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update roster")
	}
	return entry, nil
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
}

func categoryAttr(c id.ServiceCategory) attribute.KeyValue {
	return attribute.String("lottery.category", string(c))
}
