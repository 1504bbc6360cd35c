package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every trainer metric on its own Prometheus registry.
type Registry struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	DecisionsTotal   *prometheus.CounterVec
	CompletionsTotal *prometheus.CounterVec
	SessionsCreated  *prometheus.CounterVec
	UndoTotal        prometheus.Counter
	TimerExpirations prometheus.Counter

	CatalogScenarios prometheus.Gauge
	CatalogReloads   *prometheus.CounterVec

	registry *prometheus.Registry
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the process-wide registry.
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a registry with all metrics initialized.
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	r.initHTTPMetrics()
	r.initTrainerMetrics()
	return r
}

func (r *Registry) initHTTPMetrics() {
	r.HTTPRequestsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "trainer_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	r.HTTPRequestDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trainer_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	r.HTTPRequestsInFlight = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "trainer_http_requests_in_flight",
			Help: "Current number of HTTP requests being processed",
		},
	)
}

func (r *Registry) initTrainerMetrics() {
	r.DecisionsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "trainer_decisions_total",
			Help: "Scored decisions by kind (network, action) and correctness",
		},
		[]string{"kind", "correct"},
	)

	r.CompletionsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "trainer_completions_total",
			Help: "Completed sessions by scenario and letter grade",
		},
		[]string{"scenario", "grade"},
	)

	r.SessionsCreated = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "trainer_sessions_created_total",
			Help: "Sessions started by scenario and difficulty",
		},
		[]string{"scenario", "difficulty"},
	)

	r.UndoTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "trainer_undo_total",
			Help: "Snapshots restored through undo",
		},
	)

	r.TimerExpirations = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "trainer_timer_expirations_total",
			Help: "Timer expiry penalties applied",
		},
	)

	r.CatalogScenarios = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "trainer_catalog_scenarios",
			Help: "Scenarios in the live catalog",
		},
	)

	r.CatalogReloads = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "trainer_catalog_reloads_total",
			Help: "Catalog reload attempts by outcome",
		},
		[]string{"status"},
	)
}

// RecordHTTPRequest records an HTTP request with its duration
func (r *Registry) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordDecision counts one scored decision. Revisits that do not score
// should not be recorded.
func (r *Registry) RecordDecision(kind string, correct bool) {
	r.DecisionsTotal.WithLabelValues(kind, strconv.FormatBool(correct)).Inc()
}

func (r *Registry) RecordCompletion(scenarioID, grade string) {
	r.CompletionsTotal.WithLabelValues(scenarioID, grade).Inc()
}

func (r *Registry) RecordSessionCreated(scenarioID, difficulty string) {
	r.SessionsCreated.WithLabelValues(scenarioID, difficulty).Inc()
}

// RecordCatalogReload tracks a reload and, on success, the new catalog size.
func (r *Registry) RecordCatalogReload(scenarios int, err error) {
	if err != nil {
		r.CatalogReloads.WithLabelValues("error").Inc()
		return
	}
	r.CatalogReloads.WithLabelValues("success").Inc()
	r.CatalogScenarios.Set(float64(scenarios))
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
