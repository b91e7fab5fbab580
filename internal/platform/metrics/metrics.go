package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ingest"

// Record outcomes.
const (
	OutcomeCommitted = "committed"
	OutcomeDropped   = "dropped"
	OutcomeFailed    = "failed"
)

// Metrics holds service collectors registered in its own registry.
// All methods are safe to call on nil Metrics.
type Metrics struct {
	registry        *prometheus.Registry
	payloads        *prometheus.CounterVec
	records         *prometheus.CounterVec
	polls           *prometheus.CounterVec
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New returns new Metrics with registered collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		payloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "payloads_total",
				Help:      "Number of received payloads by endpoint and classified variant.",
			},
			[]string{"endpoint", "variant"},
		),
		records: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "records_total",
				Help:      "Number of extracted records by source and outcome.",
			},
			[]string{"source", "outcome"},
		),
		polls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "polls_total",
				Help:      "Number of dataset poll cycles by result.",
			},
			[]string{"result"},
		),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests.",
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Histogram of HTTP request durations.",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10},
			},
			[]string{"method", "route", "status"},
		),
	}

	m.registry.MustRegister(
		m.payloads,
		m.records,
		m.polls,
		m.requests,
		m.requestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Handler returns http.Handler exposing registered metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Gatherer returns registry of Metrics collectors.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// ObservePayload counts payload received by endpoint.
func (m *Metrics) ObservePayload(endpoint, variant string) {
	if m == nil {
		return
	}
	m.payloads.WithLabelValues(endpoint, variant).Inc()
}

// ObserveRecords adds count records of source with provided outcome.
func (m *Metrics) ObserveRecords(source, outcome string, count int) {
	if m == nil || count <= 0 {
		return
	}
	m.records.WithLabelValues(source, outcome).Add(float64(count))
}

// ObservePoll counts finished poll cycle.
func (m *Metrics) ObservePoll(result string) {
	if m == nil {
		return
	}
	m.polls.WithLabelValues(result).Inc()
}

// ObserveRequest records HTTP request metrics.
func (m *Metrics) ObserveRequest(method, route string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	status := classifyStatus(statusCode)
	m.requests.WithLabelValues(method, route, status).Inc()
	m.requestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

func classifyStatus(statusCode int) string {
	if statusCode < 100 || statusCode >= 600 {
		return "unknown"
	}
	return strconv.Itoa(statusCode/100) + "xx"
}
