// Package metrics defines the Prometheus collectors for the vocabulary
// service and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Operation results recorded by ObserveOp.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics holds all collectors, registered on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	OperationsTotal     *prometheus.CounterVec
	Topics              prometheus.Gauge
	Words               prometheus.Gauge
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		OperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vocab_operations_total",
				Help: "Session operations by name and result (ok, error).",
			},
			[]string{"op", "result"},
		),
		Topics: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "vocab_session_topics",
				Help: "Number of topics in the working list.",
			},
		),
		Words: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "vocab_session_words",
				Help: "Number of words across all topics in the working list.",
			},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, route, and status.",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"method", "route"},
		),
	}

	m.registry.MustRegister(
		m.OperationsTotal,
		m.Topics,
		m.Words,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		collectors.NewGoCollector(),
	)
	return m
}

// ObserveOp counts one session operation.
func (m *Metrics) ObserveOp(op string, err error) {
	if m == nil {
		return
	}
	result := ResultOK
	if err != nil {
		result = ResultError
	}
	m.OperationsTotal.WithLabelValues(op, result).Inc()
}

// SetSize records the working list's size.
func (m *Metrics) SetSize(topics, words int) {
	if m == nil {
		return
	}
	m.Topics.Set(float64(topics))
	m.Words.Set(float64(words))
}

// Handler returns the scrape handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Gather exposes the registry for tests and diagnostics.
func (m *Metrics) Gather() prometheus.Gatherer { return m.registry }
