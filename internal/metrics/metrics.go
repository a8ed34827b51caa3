package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "accentcoach"

// Metrics holds all collectors
type Metrics struct {
	RemoteRequests *prometheus.CounterVec
	RemoteLatency  *prometheus.HistogramVec
	BreakerState   *prometheus.GaugeVec
	CacheLookups   *prometheus.CounterVec
	Transitions    *prometheus.CounterVec
	ActiveSessions prometheus.Gauge
	HTTPRequests   *prometheus.CounterVec
	HTTPDuration   *prometheus.HistogramVec
}

// New registers all collectors with reg
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		RemoteRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_requests_total",
			Help:      "Total number of remote analysis requests",
		}, []string{"op", "status"}),

		RemoteLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "remote_latency_seconds",
			Help:      "Remote analysis latency in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40},
		}, []string{"op"}),

		BreakerState: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		}, []string{"op"}),

		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Response cache lookups",
		}, []string{"op", "result"}),

		Transitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_transitions_total",
			Help:      "Session state machine events",
		}, []string{"event"}),

		ActiveSessions: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Number of connected websocket sessions",
		}),

		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code",
		}, []string{"route", "code"}),

		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

// ObserveRemote records one remote call
func (m *Metrics) ObserveRemote(op string, started time.Time, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.RemoteRequests.WithLabelValues(op, status).Inc()
	m.RemoteLatency.WithLabelValues(op).Observe(time.Since(started).Seconds())
}

// ObserveCache records a cache hit or miss
func (m *Metrics) ObserveCache(op string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(op, result).Inc()
}

// ObserveTransition counts a session state machine event
func (m *Metrics) ObserveTransition(event string) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(event).Inc()
}
