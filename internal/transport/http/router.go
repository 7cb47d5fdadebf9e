package httptransport

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/lin871229/lottery-app-v4/internal/platform/metrics"
	"github.com/lin871229/lottery-app-v4/internal/platform/middleware"
	"github.com/lin871229/lottery-app-v4/pkg/platform/httputil"
	"github.com/lin871229/lottery-app-v4/pkg/platform/middleware/metadata"
	"github.com/lin871229/lottery-app-v4/pkg/platform/middleware/requesttime"
)

const defaultRequestTimeout = 30 * time.Second

// Registrar mounts a feature's endpoints on the API router.
type Registrar interface {
	Register(r chi.Router)
}

// Deps collects what the router needs. Registry and Metrics may be nil.
type Deps struct {
	Logger         *zap.Logger
	Metrics        *metrics.Metrics
	Registry       *prometheus.Registry
	RequestTimeout time.Duration
	Handlers       []Registrar
}

// NewRouter wires the middleware chain, operational endpoints and feature handlers.
func NewRouter(deps Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := deps.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(logger))
	r.Use(metadata.ClientMetadata)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.LatencyMiddleware(deps.Metrics))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Registry))
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(timeout))
		r.Use(requesttime.Middleware)
		for _, h := range deps.Handlers {
			h.Register(r)
		}
	})
	return r
}
