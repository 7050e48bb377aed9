package admin

import (
	"log/slog"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/getmockd/mockie/pkg/logging"
	"github.com/getmockd/mockie/pkg/metrics"
	"github.com/getmockd/mockie/pkg/registry"
)

// Admin endpoint paths.
const (
	PathRoutes   = "/__admin/routes"
	PathSave     = "/__admin/save"
	PathShutdown = "/__admin/shutdown"
	PathHealth   = "/__admin/health"
	PathMetrics  = "/__admin/metrics"
)

// MaxBodySize is the largest accepted admin request body (10MB).
const MaxBodySize = 10 << 20

// API serves the admin endpoints over a registry.Service.
type API struct {
	svc      *registry.Service
	metrics  *metrics.Metrics
	shutdown func()
	log      *slog.Logger
}

// Option configures an API.
type Option func(*API)

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) Option {
	return func(a *API) {
		if log != nil {
			a.log = log
		}
	}
}

// WithMetrics enables the metrics endpoint and rejection counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *API) {
		a.metrics = m
	}
}

// WithShutdownFunc sets the function called by the shutdown endpoint after
// the response is written. It must not block.
func WithShutdownFunc(fn func()) Option {
	return func(a *API) {
		a.shutdown = fn
	}
}

// New creates an API for svc.
func New(svc *registry.Service, opts ...Option) *API {
	a := &API{
		svc: svc,
		log: logging.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Register adds the admin endpoints to router.
func (a *API) Register(router *httprouter.Router) {
	router.POST(PathRoutes, a.handleAddRoute)
	router.GET(PathRoutes, a.handleListRoutes)
	router.POST(PathSave, a.handleSave)
	router.POST(PathShutdown, a.handleShutdown)
	router.GET(PathHealth, a.handleHealth)
	if a.metrics != nil {
		router.Handler(http.MethodGet, PathMetrics, a.metrics.Handler())
	}
}
