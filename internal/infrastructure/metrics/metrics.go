// Package metrics exposes subscription lifecycle and HTTP metrics to Prometheus.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	vo "github.com/orris-inc/tenancy/internal/domain/subscription/valueobjects"
)

const namespace = "tenancy"

type Metrics struct {
	registry *prometheus.Registry

	TransitionsTotal   *prometheus.CounterVec
	ConfirmationsTotal *prometheus.CounterVec
	RemindersTotal     *prometheus.CounterVec
	ExpiredTotal       prometheus.Counter

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics registers every collector on a fresh registry, alongside the
// Go runtime and process collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		TransitionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "subscription_transitions_total",
				Help:      "Plan change attempts by action and outcome",
			},
			[]string{"action", "outcome"},
		),
		ConfirmationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "payment_confirmations_total",
				Help:      "Payment confirmations by outcome",
			},
			[]string{"outcome"},
		),
		RemindersTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "expiry_reminders_total",
				Help:      "Expiry reminders delivered by days remaining",
			},
			[]string{"days"},
		),
		ExpiredTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "subscriptions_expired_total",
				Help:      "Subscriptions expired by the sweep",
			},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}

	registry.MustRegister(
		m.TransitionsTotal,
		m.ConfirmationsTotal,
		m.RemindersTotal,
		m.ExpiredTotal,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) RecordTransition(action vo.PlanChangeAction, outcome string) {
	m.TransitionsTotal.WithLabelValues(string(action), outcome).Inc()
}

func (m *Metrics) RecordConfirmation(outcome string) {
	m.ConfirmationsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordReminder(days int) {
	m.RemindersTotal.WithLabelValues(strconv.Itoa(days)).Inc()
}

func (m *Metrics) RecordExpired(count int) {
	if count > 0 {
		m.ExpiredTotal.Add(float64(count))
	}
}

func (m *Metrics) RecordHTTPRequest(method, path string, status int, seconds float64) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(seconds)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
