package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/GriffinCanCode/AetherAlpha/backend/internal/infrastructure/resilience"
)

// Result sources
const (
	SourceLive     = "live"
	SourceFallback = "fallback"
)

// Metrics holds all Prometheus metrics. Methods are safe on a nil receiver
// so components can run without a collector in tests.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Upstream metrics
	UpstreamResults  *prometheus.CounterVec
	UpstreamAttempts *prometheus.HistogramVec
	UpstreamDuration *prometheus.HistogramVec
	BreakerState     *prometheus.GaugeVec
	BreakerChanges   *prometheus.CounterVec

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec
}

// NewMetrics creates a collector with its own registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gateway_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"method", "path"},
		),

		UpstreamResults: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_upstream_results_total",
				Help: "Upstream call results by source (live or fallback)",
			},
			[]string{"dependency", "operation", "source", "reason"},
		),
		UpstreamAttempts: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gateway_upstream_attempts",
				Help:    "Attempts spent per logical upstream call",
				Buckets: []float64{0, 1, 2, 3, 5, 10},
			},
			[]string{"dependency", "operation"},
		),
		UpstreamDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gateway_upstream_duration_seconds",
				Help:    "Duration of logical upstream calls including backoff",
				Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 20, 30},
			},
			[]string{"dependency", "operation"},
		),
		BreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "gateway_breaker_state",
				Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
			},
			[]string{"breaker"},
		),
		BreakerChanges: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_breaker_transitions_total",
				Help: "Circuit breaker state transitions",
			},
			[]string{"breaker", "from", "to"},
		),

		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "gateway_ws_connections",
				Help: "Number of active WebSocket connections",
			},
		),
		WSMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gateway_ws_messages_total",
				Help: "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),
	}
}

// Handler serves the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordUpstream records whether a logical call was served live or by fallback
func (m *Metrics) RecordUpstream(dependency, operation, source, reason string) {
	if m == nil {
		return
	}
	m.UpstreamResults.WithLabelValues(dependency, operation, source, reason).Inc()
}

// RecordUpstreamCall records attempts and duration of a guarded call
func (m *Metrics) RecordUpstreamCall(dependency, operation string, attempts int, duration time.Duration) {
	if m == nil {
		return
	}
	m.UpstreamAttempts.WithLabelValues(dependency, operation).Observe(float64(attempts))
	m.UpstreamDuration.WithLabelValues(dependency, operation).Observe(duration.Seconds())
}

// RecordBreakerState records a breaker transition
func (m *Metrics) RecordBreakerState(name string, from, to resilience.State) {
	if m == nil {
		return
	}
	m.BreakerState.WithLabelValues(name).Set(float64(to))
	m.BreakerChanges.WithLabelValues(name, from.String(), to.String()).Inc()
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	if m == nil {
		return
	}
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Inc()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	if m == nil {
		return
	}
	m.WSConnections.Dec()
}
