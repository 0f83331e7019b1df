package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

// Operation labels.
const (
	OperationReadBalance = "read_balance"
	OperationDeposit     = "deposit"
)

// Outcome labels.
const (
	OutcomeSuccess          = "success"
	OutcomeUnauthorized     = "unauthorized"
	OutcomeInvalidAmount    = "invalid_amount"
	OutcomeStoreUnavailable = "store_unavailable"
	OutcomeError            = "error"
)

// Metrics holds the service collectors on a dedicated registry.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	depositedAmount prometheus.Counter
}

// New creates and registers the service collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "balance_requests_total",
			Help: "Balance requests by operation and outcome.",
		}, []string{"operation", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "balance_request_duration_seconds",
			Help:    "Balance request latency by operation.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		depositedAmount: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "balance_deposit_amount_total",
			Help: "Sum of committed deposit amounts. Approximate, for monitoring only.",
		}),
	}

	m.registry.MustRegister(
		m.requests,
		m.duration,
		m.depositedAmount,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Observe records one finished request.
func (m *Metrics) Observe(operation, outcome string, elapsed time.Duration) {
	m.requests.WithLabelValues(operation, outcome).Inc()
	m.duration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// ObserveDeposit adds a committed deposit to the amount counter.
func (m *Metrics) ObserveDeposit(amount decimal.Decimal) {
	m.depositedAmount.Add(amount.InexactFloat64())
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
