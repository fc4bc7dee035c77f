// Package saga runs a sequence of steps and undoes the completed ones, in
// reverse order, when a later step fails or the deadline passes.
//
// It is used where one operation spans systems without a shared transaction,
// such as storing an uploaded file and then recording its URL in the database.
package saga

import (
	"context"
	"fmt"
	"time"

	"github.com/xiebiao/library/pkg/logger"
	"github.com/xiebiao/library/pkg/metrics"
)

// Step is one unit of work and its undo. Compensate may be nil.
type Step struct {
	Name       string
	Action     func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

// Saga is not safe for concurrent use; build one per operation.
type Saga struct {
	steps    []Step
	executed []Step
	timeout  time.Duration
}

// NewSaga creates a saga. timeout <= 0 means no deadline of its own.
func NewSaga(timeout time.Duration) *Saga {
	return &Saga{
		steps:   make([]Step, 0),
		timeout: timeout,
	}
}

func (s *Saga) AddStep(name string, action, compensate func(ctx context.Context) error) {
	s.steps = append(s.steps, Step{
		Name:       name,
		Action:     action,
		Compensate: compensate,
	})
}

// Execute runs the steps in order. On failure it compensates and returns the
// step error wrapped with the step name; errors.Is/As still reach the cause.
func (s *Saga) Execute(ctx context.Context) (err error) {
	start := time.Now()
	defer func() {
		result := "success"
		if err != nil {
			result = "failure"
		}
		metrics.IncCounterVec(metrics.SagaExecutionsTotal, map[string]string{"result": result})
		metrics.ObserveHistogram(metrics.SagaExecutionDuration, time.Since(start).Seconds())
	}()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	for i, step := range s.steps {
		select {
		case <-ctx.Done():
			// compensation must not inherit the expired deadline
			s.compensate(context.WithoutCancel(ctx))
			return fmt.Errorf("saga timed out before step %d (%s): %w", i, step.Name, ctx.Err())
		default:
		}

		if step.Action != nil {
			if err := step.Action(ctx); err != nil {
				s.compensate(context.WithoutCancel(ctx))
				return fmt.Errorf("saga step %d (%s): %w", i, step.Name, err)
			}
		}
		s.executed = append(s.executed, step)
	}

	return nil
}

// compensate undoes executed steps newest first. A failing compensation is
// logged and the rest still run.
func (s *Saga) compensate(ctx context.Context) {
	for i := len(s.executed) - 1; i >= 0; i-- {
		step := s.executed[i]
		if step.Compensate == nil {
			continue
		}
		metrics.IncCounter(metrics.SagaCompensationsTotal)
		if err := step.Compensate(ctx); err != nil {
			logger.FromContext(ctx).Error().Err(err).Str("step", step.Name).Msg("saga compensation failed")
		}
	}
	s.executed = nil
}
