// Package messaging publishes loan events to RabbitMQ and reads them back.
package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/xiebiao/library/internal/domain/loan"
	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/circuitbreaker"
	"github.com/xiebiao/library/pkg/logger"
	"github.com/xiebiao/library/pkg/mq"
)

// ExchangeType of the loan exchange. Consumers bind with loan.* patterns.
const ExchangeType = "topic"

// Sender is what LoanEventPublisher needs from a broker client.
// *mq.Publisher satisfies it.
type Sender interface {
	Publish(ctx context.Context, routingKey string, message interface{}) error
}

// LoanEventPublisher sends loan events through a circuit breaker so a broker
// outage fails fast instead of stalling staff requests.
type LoanEventPublisher struct {
	sender  Sender
	breaker *circuitbreaker.CircuitBreaker
	timeout time.Duration
}

func NewLoanEventPublisher(sender Sender) *LoanEventPublisher {
	cb := circuitbreaker.NewCircuitBreaker("loan-events", circuitbreaker.Config{
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(c circuitbreaker.Counts) bool {
			return c.ConsecutiveFailures >= 3
		},
	})
	cb.SetStateChangeCallback(func(name string, from, to circuitbreaker.State) {
		logger.Warn("circuit breaker state changed", map[string]interface{}{
			"name": name,
			"from": from.String(),
			"to":   to.String(),
		})
	})

	return &LoanEventPublisher{
		sender:  sender,
		breaker: cb,
		timeout: 3 * time.Second,
	}
}

func (p *LoanEventPublisher) PublishLoanEvent(ctx context.Context, ev loan.Event) error {
	err := p.breaker.ExecuteContext(ctx, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, p.timeout)
		defer cancel()
		return p.sender.Publish(ctx, string(ev.Type), ev)
	})
	if errors.Is(err, circuitbreaker.ErrOpenState) {
		return apperrors.ErrUnavailable.WithCause(err)
	}
	return err
}

// NopPublisher drops events. Used when messaging is disabled.
type NopPublisher struct{}

func (NopPublisher) PublishLoanEvent(context.Context, loan.Event) error {
	return nil
}

// DecodeLoanEvent parses a message body published by LoanEventPublisher.
func DecodeLoanEvent(body []byte) (loan.Event, error) {
	var ev loan.Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return loan.Event{}, fmt.Errorf("decode loan event: %w", err)
	}
	return ev, nil
}

// LoanEventHandler adapts fn to an mq.Handler. Undecodable bodies are
// reported as handler errors.
func LoanEventHandler(fn func(ctx context.Context, ev loan.Event) error) mq.Handler {
	return func(ctx context.Context, msg mq.Message) error {
		ev, err := DecodeLoanEvent(msg.Body)
		if err != nil {
			return err
		}
		return fn(ctx, ev)
	}
}
