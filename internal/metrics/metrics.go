// Package metrics exposes client-side Prometheus metrics for backend calls and
// status updates.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeRejected = "rejected"
	OutcomeApplied  = "applied"
	OutcomeInvalid  = "invalid"
	OutcomeBusy     = "busy"
)

// Manager owns the metric vectors and the registry they live on.
type Manager struct {
	namespace string
	buckets   []float64
	registry  *prometheus.Registry

	apiRequests    *prometheus.CounterVec
	apiLatency     *prometheus.HistogramVec
	statusUpdates  *prometheus.CounterVec
	staleFetches   prometheus.Counter
	resumesInCache prometheus.Gauge
}

// NewManager creates a Manager on a private registry.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "recruitdesk",
		buckets:   prometheus.DefBuckets,
		registry:  prometheus.NewRegistry(),
	}

	for _, opt := range opts {
		opt(m)
	}

	auto := promauto.With(m.registry)

	m.apiRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "api",
		Name:      "requests_total",
		Help:      "Backend API requests by endpoint and outcome",
	}, []string{"endpoint", "outcome"})

	m.apiLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "api",
		Name:      "request_duration_seconds",
		Help:      "Backend API request latency",
		Buckets:   m.buckets,
	}, []string{"endpoint"})

	m.statusUpdates = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "workflow",
		Name:      "status_updates_total",
		Help:      "Status update attempts by outcome",
	}, []string{"outcome"})

	m.staleFetches = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "workflow",
		Name:      "stale_fetches_discarded_total",
		Help:      "Fetch results dropped because a newer selection superseded them",
	})

	m.resumesInCache = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "workflow",
		Name:      "resumes_cached",
		Help:      "Number of résumé records in the active list",
	})

	return m
}

// ObserveRequest records one backend call. A nil Manager is a no-op.
func (m *Manager) ObserveRequest(endpoint string, started time.Time, err error) {
	if m == nil {
		return
	}

	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}

	m.apiRequests.WithLabelValues(endpoint, outcome).Inc()
	m.apiLatency.WithLabelValues(endpoint).Observe(time.Since(started).Seconds())
}

// StatusUpdate records the outcome of one status update attempt.
func (m *Manager) StatusUpdate(outcome string) {
	if m == nil {
		return
	}
	m.statusUpdates.WithLabelValues(outcome).Inc()
}

// StaleFetch records a discarded fetch result.
func (m *Manager) StaleFetch() {
	if m == nil {
		return
	}
	m.staleFetches.Inc()
}

// CachedResumes sets the size of the active résumé list.
func (m *Manager) CachedResumes(n int) {
	if m == nil {
		return
	}
	m.resumesInCache.Set(float64(n))
}

// Registry returns the registry the metrics are registered on.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
