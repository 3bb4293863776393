package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"procurement-console/internal/core"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors exported on /metrics.
type Metrics struct {
	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	transitions *prometheus.CounterVec
	events      *prometheus.CounterVec
	gatherer    prometheus.Gatherer
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "po_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "po_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "po_status_transitions_total",
			Help: "Committed purchase order status transitions.",
		}, []string{"from", "to"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "po_events_consumed_total",
			Help: "Consumed workflow events by topic and result.",
		}, []string{"topic", "result"}),
		gatherer: reg,
	}
	reg.MustRegister(
		m.requests, m.duration, m.transitions, m.events,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// ObserveRequest records one served HTTP request. route is the router pattern,
// not the raw path, to keep label cardinality bounded.
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveEvent records the outcome of one consumed event.
func (m *Metrics) ObserveEvent(topic, result string) {
	m.events.WithLabelValues(topic, result).Inc()
}

// PublishStatusChange counts a committed transition. It lets Metrics sit in the
// status publisher chain next to the event producer.
func (m *Metrics) PublishStatusChange(_ context.Context, c core.StatusChange) error {
	m.transitions.WithLabelValues(string(c.From), string(c.To)).Inc()
	return nil
}
