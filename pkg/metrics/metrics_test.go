package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitMetrics_Idempotent(t *testing.T) {
	InitMetrics()
	first := HTTPRequestsTotal
	InitMetrics()

	require.NotNil(t, first)
	assert.Same(t, first, HTTPRequestsTotal)
	assert.NotNil(t, LoanTransitionsTotal)
	assert.NotNil(t, CircuitBreakerState)
}

func TestLoanTransitions(t *testing.T) {
	InitMetrics()

	assigned := map[string]string{"action": "assigned", "status": "taken"}
	before := testutil.ToFloat64(LoanTransitionsTotal.With(assigned))

	IncCounterVec(LoanTransitionsTotal, assigned)
	IncCounterVec(LoanTransitionsTotal, assigned)
	IncCounterVec(LoanTransitionsTotal, map[string]string{"action": "returned", "status": "available"})

	assert.Equal(t, before+2, testutil.ToFloat64(LoanTransitionsTotal.With(assigned)))
}

func TestGaugeAndHistogram(t *testing.T) {
	InitMetrics()

	SetGaugeVec(CircuitBreakerState, map[string]string{"name": "storage"}, 1)
	assert.Equal(t, float64(1), testutil.ToFloat64(CircuitBreakerState.WithLabelValues("storage")))

	ObserveHistogram(SearchDuration, 0.02)
	ObserveHistogramVec(HTTPRequestDuration, map[string]string{"method": "GET", "path": "/api/v1/books"}, 0.003)
	assert.Positive(t, testutil.CollectAndCount(HTTPRequestDuration))
}

func TestHelpers_NilSafe(t *testing.T) {
	assert.NotPanics(t, func() {
		IncCounter(nil)
		IncCounterVec(nil, nil)
		SetGaugeVec(nil, nil, 1)
		ObserveHistogram(nil, 1)
		ObserveHistogramVec(nil, nil, 1)
	})

	var c prometheus.Counter
	assert.NotPanics(t, func() { IncCounter(c) })
}
