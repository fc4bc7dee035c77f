// Package metrics holds the Prometheus collectors of the library service.
//
// Counters end in _total, histograms in their unit. Labels stay low
// cardinality: route templates, statuses and actions, never ids.
//
// Call InitMetrics once at startup and expose promhttp.Handler() at /metrics.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var once sync.Once

var (
	// HTTPRequestsTotal counts requests by method, route and status code.
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration observes request latency by method and route.
	HTTPRequestDuration *prometheus.HistogramVec

	HTTPRequestsInProgress prometheus.Gauge

	// HTTPRateLimitedTotal counts requests rejected by a rate limiter, by route.
	HTTPRateLimitedTotal *prometheus.CounterVec

	// LoanTransitionsTotal counts instance writes by action
	// (created/updated/assigned/returned) and resulting status.
	LoanTransitionsTotal *prometheus.CounterVec

	// LoanConflictsTotal counts instance writes lost to a concurrent update.
	LoanConflictsTotal prometheus.Counter

	// SearchQueriesTotal counts searches by outcome (match/empty/blank).
	SearchQueriesTotal *prometheus.CounterVec

	SearchDuration prometheus.Histogram

	// CircuitBreakerState is 0=closed, 1=open, 2=half-open per breaker.
	CircuitBreakerState *prometheus.GaugeVec

	// CircuitBreakerRequests counts calls by breaker and result
	// (success/failure/rejected).
	CircuitBreakerRequests *prometheus.CounterVec

	// SagaExecutionsTotal counts sagas by result (success/failure).
	SagaExecutionsTotal *prometheus.CounterVec

	SagaExecutionDuration prometheus.Histogram

	SagaCompensationsTotal prometheus.Counter

	// MessagesPublishedTotal counts publishes by exchange, routing key and
	// result (success/failure).
	MessagesPublishedTotal *prometheus.CounterVec

	// MessagesConsumedTotal counts deliveries by queue and result.
	MessagesConsumedTotal *prometheus.CounterVec

	MessageProcessingDuration prometheus.Histogram
)

// InitMetrics registers every collector with the default registry.
// Repeated calls are no-ops.
func InitMetrics() {
	once.Do(register)
}

func register() {
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests served.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_progress",
			Help: "HTTP requests currently being served.",
		},
	)

	HTTPRateLimitedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_rate_limited_total",
			Help: "HTTP requests rejected by a rate limiter.",
		},
		[]string{"path"},
	)

	LoanTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_transitions_total",
			Help: "Book instance writes by action and resulting status.",
		},
		[]string{"action", "status"},
	)

	LoanConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "loan_conflicts_total",
			Help: "Book instance writes rejected because of a stale version.",
		},
	)

	SearchQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_search_queries_total",
			Help: "Catalog searches by outcome.",
		},
		[]string{"outcome"},
	)

	SearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "catalog_search_duration_seconds",
			Help:    "Catalog search latency in seconds.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=open, 2=half-open).",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Calls through a circuit breaker by result.",
		},
		[]string{"name", "result"},
	)

	SagaExecutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "saga_executions_total",
			Help: "Saga executions by result.",
		},
		[]string{"result"},
	)

	SagaExecutionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "saga_execution_duration_seconds",
			Help:    "Saga execution time in seconds.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		},
	)

	SagaCompensationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "saga_compensations_total",
			Help: "Saga compensation steps run.",
		},
	)

	MessagesPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_published_total",
			Help: "Messages published by exchange, routing key and result.",
		},
		[]string{"exchange", "routing_key", "result"},
	)

	MessagesConsumedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_consumed_total",
			Help: "Messages consumed by queue and result.",
		},
		[]string{"queue", "result"},
	)

	MessageProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "message_processing_duration_seconds",
			Help:    "Message handler time in seconds.",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5},
		},
	)
}

// IncCounterVec increments a labelled counter. Safe before InitMetrics.
func IncCounterVec(counter *prometheus.CounterVec, labels map[string]string) {
	if counter == nil {
		return
	}
	counter.With(labels).Inc()
}

// IncCounter increments a counter. Safe before InitMetrics.
func IncCounter(counter prometheus.Counter) {
	if counter == nil {
		return
	}
	counter.Inc()
}

// SetGaugeVec sets a labelled gauge. Safe before InitMetrics.
func SetGaugeVec(gauge *prometheus.GaugeVec, labels map[string]string, value float64) {
	if gauge == nil {
		return
	}
	gauge.With(labels).Set(value)
}

// ObserveHistogram records one observation. Safe before InitMetrics.
func ObserveHistogram(histogram prometheus.Histogram, value float64) {
	if histogram == nil {
		return
	}
	histogram.Observe(value)
}

// ObserveHistogramVec records one labelled observation. Safe before InitMetrics.
func ObserveHistogramVec(histogram *prometheus.HistogramVec, labels map[string]string, value float64) {
	if histogram == nil {
		return
	}
	histogram.With(labels).Observe(value)
}
