package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errUpstream = errors.New("upstream unavailable")

func fail() error    { return errUpstream }
func succeed() error { return nil }

func tripAfter(n uint32) func(Counts) bool {
	return func(c Counts) bool { return c.ConsecutiveFailures >= n }
}

func TestCircuitBreaker_ClosedState(t *testing.T) {
	cb := NewCircuitBreaker("storage", Config{ReadyToTrip: tripAfter(3)})

	for i := 0; i < 5; i++ {
		require.NoError(t, cb.Execute(succeed))
	}
	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, uint32(5), cb.Counts().TotalSuccesses)

	// failures below the threshold keep it closed
	assert.ErrorIs(t, cb.Execute(fail), errUpstream)
	assert.ErrorIs(t, cb.Execute(fail), errUpstream)
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_OpenState(t *testing.T) {
	cb := NewCircuitBreaker("storage", Config{ReadyToTrip: tripAfter(3), Timeout: time.Minute})

	for i := 0; i < 3; i++ {
		_ = cb.Execute(fail)
	}
	assert.Equal(t, StateOpen, cb.State())

	called := false
	err := cb.Execute(func() error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrOpenState)
	assert.False(t, called)
}

func TestCircuitBreaker_HalfOpenRecovers(t *testing.T) {
	cb := NewCircuitBreaker("broker", Config{
		ReadyToTrip: tripAfter(1),
		Timeout:     20 * time.Millisecond,
		MaxRequests: 1,
	})

	_ = cb.Execute(fail)
	require.Equal(t, StateOpen, cb.State())

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, StateHalfOpen, cb.State())

	require.NoError(t, cb.Execute(succeed))
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreaker_HalfOpenToOpen(t *testing.T) {
	cb := NewCircuitBreaker("broker", Config{ReadyToTrip: tripAfter(1), Timeout: 20 * time.Millisecond})

	_ = cb.Execute(fail)
	time.Sleep(30 * time.Millisecond)
	require.Equal(t, StateHalfOpen, cb.State())

	_ = cb.Execute(fail)
	assert.Equal(t, StateOpen, cb.State())
}

func TestCircuitBreaker_StateChangeCallback(t *testing.T) {
	cb := NewCircuitBreaker("storage", Config{ReadyToTrip: tripAfter(1), Timeout: 20 * time.Millisecond})

	var mu sync.Mutex
	var transitions []string
	cb.SetStateChangeCallback(func(name string, from, to State) {
		mu.Lock()
		defer mu.Unlock()
		transitions = append(transitions, name+":"+from.String()+"->"+to.String())
	})

	_ = cb.Execute(fail)
	time.Sleep(30 * time.Millisecond)
	_ = cb.Execute(succeed)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{
		"storage:CLOSED->OPEN",
		"storage:OPEN->HALF_OPEN",
		"storage:HALF_OPEN->CLOSED",
	}, transitions)
}

func TestCircuitBreaker_FailureRate(t *testing.T) {
	cb := NewCircuitBreaker("storage", Config{
		ReadyToTrip: func(c Counts) bool { return c.Requests >= 4 && c.FailureRate() >= 0.5 },
	})

	_ = cb.Execute(succeed)
	_ = cb.Execute(fail)
	_ = cb.Execute(succeed)
	assert.Equal(t, StateClosed, cb.State())

	_ = cb.Execute(fail)
	assert.Equal(t, StateOpen, cb.State())
}

func TestCircuitBreaker_IsSuccessful(t *testing.T) {
	notFound := errors.New("not found")
	cb := NewCircuitBreaker("storage", Config{
		ReadyToTrip:  tripAfter(1),
		IsSuccessful: func(err error) bool { return err == nil || errors.Is(err, notFound) },
	})

	assert.ErrorIs(t, cb.Execute(func() error { return notFound }), notFound)
	assert.Equal(t, StateClosed, cb.State())

	_ = cb.Execute(fail)
	assert.Equal(t, StateOpen, cb.State())
}

func TestCircuitBreaker_ExecuteContext(t *testing.T) {
	cb := NewCircuitBreaker("storage", Config{ReadyToTrip: tripAfter(1)})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := cb.ExecuteContext(ctx, func(ctx context.Context) error { return errUpstream })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateClosed, cb.State())
	assert.Zero(t, cb.Counts().Requests)

	err = cb.ExecuteContext(context.Background(), func(ctx context.Context) error { return nil })
	assert.NoError(t, err)
}

func TestCircuitBreaker_IntervalResetsCounts(t *testing.T) {
	cb := NewCircuitBreaker("storage", Config{ReadyToTrip: tripAfter(2), Interval: 20 * time.Millisecond})

	_ = cb.Execute(fail)
	time.Sleep(30 * time.Millisecond)
	_ = cb.Execute(fail)

	assert.Equal(t, StateClosed, cb.State())
}
