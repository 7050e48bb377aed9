package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mockie"

// Dispatch outcomes.
const (
	OutcomeMatched  = "matched"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Rejection reasons for admin mutations.
const (
	ReasonInvalidJSON = "invalid_json"
	ReasonValidation  = "validation"
	ReasonStorage     = "storage"
)

// Metrics holds the collectors for one server.
type Metrics struct {
	registry *prometheus.Registry

	dispatchTotal    *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec
	routesAdded      prometheus.Counter
	routesRejected   *prometheus.CounterVec
	saves            *prometheus.CounterVec
	routes           prometheus.Gauge
}

// New creates a Metrics value with its own registry, including the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		dispatchTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dispatch_total",
				Help:      "Count of mock requests by dispatch outcome.",
			},
			[]string{"outcome"},
		),
		dispatchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "dispatch_duration_seconds",
				Help:      "Time from matching to response, including configured delay.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
		routesAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "routes_added_total",
			Help:      "Count of routes accepted by the admin API.",
		}),
		routesRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "routes_rejected_total",
				Help:      "Count of add-route requests that were refused.",
			},
			[]string{"reason"},
		),
		saves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "saves_total",
				Help:      "Count of route file saves by result.",
			},
			[]string{"result"},
		),
		routes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "routes",
			Help:      "Number of registered routes.",
		}),
	}

	m.registry.MustRegister(
		m.dispatchTotal,
		m.dispatchDuration,
		m.routesAdded,
		m.routesRejected,
		m.saves,
		m.routes,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordDispatch records one dispatched mock request.
func (m *Metrics) RecordDispatch(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.dispatchTotal.WithLabelValues(outcome).Inc()
	m.dispatchDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// RecordRouteAdded records an accepted route.
func (m *Metrics) RecordRouteAdded() {
	if m == nil {
		return
	}
	m.routesAdded.Inc()
}

// RecordRouteRejected records a refused add-route request.
func (m *Metrics) RecordRouteRejected(reason string) {
	if m == nil {
		return
	}
	m.routesRejected.WithLabelValues(reason).Inc()
}

// RecordSave records a save attempt.
func (m *Metrics) RecordSave(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.saves.WithLabelValues(result).Inc()
}

// SetRouteCount sets the registered route gauge.
func (m *Metrics) SetRouteCount(n int) {
	if m == nil {
		return
	}
	m.routes.Set(float64(n))
}
