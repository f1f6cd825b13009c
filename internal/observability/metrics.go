package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the client's prometheus collectors on a private registry.
type Metrics struct {
	registry   *prometheus.Registry
	apiCalls   *prometheus.CounterVec
	apiLatency *prometheus.HistogramVec
	lifecycle  *prometheus.CounterVec
	requests   *prometheus.CounterVec
	errors     *prometheus.CounterVec
}

// NewMetrics registers all collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		apiCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "medclient_api_calls_total",
			Help: "Outbound backend API calls by method, route and status.",
		}, []string{"method", "route", "status"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "medclient_api_call_duration_seconds",
			Help:    "Outbound backend API call latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		lifecycle: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "medclient_lifecycle_events_total",
			Help: "Async action lifecycle events by action and phase.",
		}, []string{"action", "phase"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "medclient_console_requests_total",
			Help: "Console requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "medclient_console_errors_total",
			Help: "Console error responses by route, method and error code.",
		}, []string{"route", "method", "code"}),
	}
	m.registry.MustRegister(m.apiCalls, m.apiLatency, m.lifecycle, m.requests, m.errors)
	return m
}

// RecordAPICall counts an outbound call. status 0 means no response was received.
func (m *Metrics) RecordAPICall(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.apiCalls.WithLabelValues(method, route, statusLabel(status)).Inc()
	m.apiLatency.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordLifecycle counts a lifecycle event.
func (m *Metrics) RecordLifecycle(action, phase string) {
	if m == nil {
		return
	}
	m.lifecycle.WithLabelValues(action, phase).Inc()
}

// RecordRequest increments counters for console requests.
func (m *Metrics) RecordRequest(route, method string, status int, _ time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(route, method, statusLabel(status)).Inc()
}

// RecordError increments error counters.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(route, method, code).Inc()
}

// Registry exposes the registry for tests and custom collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func statusLabel(status int) string {
	if status == 0 {
		return "none"
	}
	return strconv.Itoa(status)
}
