package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Draw outcome label values.
const (
	OutcomeSuccess          = "success"
	OutcomeInsufficientPool = "insufficient_pool"
	OutcomeInvalid          = "invalid"
	OutcomeError            = "error"
)

var durationBuckets = []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1}

// Metrics provides observability for draws, sessions and roster uploads.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Draws              *prometheus.CounterVec
	OrganizationsDrawn *prometheus.CounterVec
	DrawDuration       prometheus.Histogram
	ActiveSessions     prometheus.Gauge
	SessionsExpired    prometheus.Counter
	RostersLoaded      prometheus.Counter
	RosterWarnings     prometheus.Counter
	RosterLoadDuration prometheus.Histogram
}

// New creates the draw metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Draws: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lottery_draws_total",
			Help: "Draw calls by category and outcome",
		}, []string{"category", "outcome"}),
		OrganizationsDrawn: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lottery_organizations_drawn_total",
			Help: "Organizations selected by successful draws",
		}, []string{"category"}),
		DrawDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "lottery_draw_duration_seconds",
			Help:    "Duration of draw operations",
			Buckets: durationBuckets,
		}),
		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Name: "lottery_active_sessions",
			Help: "Draw sessions currently held in memory",
		}),
		SessionsExpired: factory.NewCounter(prometheus.CounterOpts{
			Name: "lottery_sessions_expired_total",
			Help: "Sessions removed by the idle sweeper",
		}),
		RostersLoaded: factory.NewCounter(prometheus.CounterOpts{
			Name: "lottery_rosters_loaded_total",
			Help: "Rosters normalized successfully",
		}),
		RosterWarnings: factory.NewCounter(prometheus.CounterOpts{
			Name: "lottery_roster_warnings_total",
			Help: "Row warnings raised while normalizing rosters",
		}),
		RosterLoadDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "lottery_roster_load_duration_seconds",
			Help:    "Duration of roster read and normalization",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
	}
}

// ObserveDraw records one draw call. Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveDraw(category, outcome string, drawn int, start time.Time) {
	if m == nil {
		return
	}
	m.Draws.WithLabelValues(category, outcome).Inc()
	if drawn > 0 {
		m.OrganizationsDrawn.WithLabelValues(category).Add(float64(drawn))
	}
	m.DrawDuration.Observe(time.Since(start).Seconds())
}

// SetActiveSessions records the current session count.
func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.ActiveSessions.Set(float64(n))
}

// AddSessionsExpired records sessions removed by the sweeper.
func (m *Metrics) AddSessionsExpired(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.SessionsExpired.Add(float64(n))
}

// ObserveRosterLoad records a successful roster load.
func (m *Metrics) ObserveRosterLoad(warnings int, start time.Time) {
	if m == nil {
		return
	}
	m.RostersLoaded.Inc()
	m.RosterWarnings.Add(float64(warnings))
	m.RosterLoadDuration.Observe(time.Since(start).Seconds())
}
