package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "rigshop"

// Checkout outcomes.
const (
	CheckoutSucceeded = "succeeded"
	CheckoutInvalid   = "invalid"
	CheckoutDeclined  = "declined"
	CheckoutFailed    = "failed"
)

// E-mail outcomes.
const (
	EmailSent    = "sent"
	EmailFailed  = "failed"
	EmailDropped = "dropped"
)

// Metrics owns the service collectors and their registry.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	checkouts    *prometheus.CounterVec
	transitions  *prometheus.CounterVec
	emails       *prometheus.CounterVec
}

// New registers every collector on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		checkouts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "checkouts_total",
				Help:      "Checkout attempts by outcome",
			},
			[]string{"outcome"},
		),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "order_status_transitions_total",
				Help:      "Applied order status transitions",
			},
			[]string{"from", "to"},
		),
		emails: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "emails_total",
				Help:      "Notification e-mails by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.checkouts,
		m.transitions,
		m.emails,
	)
	return m
}

// ObserveHTTP records a served request.
func (m *Metrics) ObserveHTTP(method, endpoint string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, endpoint).Observe(elapsed.Seconds())
}

// CheckoutOutcome counts a finished checkout attempt.
func (m *Metrics) CheckoutOutcome(outcome string) {
	m.checkouts.WithLabelValues(outcome).Inc()
}

// StatusTransition counts an applied lifecycle move.
func (m *Metrics) StatusTransition(from, to string) {
	m.transitions.WithLabelValues(from, to).Inc()
}

// EmailOutcome counts an e-mail delivery result.
func (m *Metrics) EmailOutcome(kind, outcome string) {
	m.emails.WithLabelValues(kind, outcome).Inc()
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
