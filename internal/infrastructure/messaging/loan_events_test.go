package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/library/internal/domain/loan"
	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/mq"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Publish(ctx context.Context, routingKey string, message interface{}) error {
	args := m.Called(ctx, routingKey, message)
	return args.Error(0)
}

func assignedEvent() loan.Event {
	reader := uint(10)
	book := uint(1)
	due := time.Date(2024, time.July, 14, 0, 0, 0, 0, time.UTC)
	inst := &loan.Instance{
		ID: 5, UUID: "6b1f", BookID: &book, Status: loan.StatusTaken,
		ReaderID: &reader, DueBack: &due, Version: 3,
	}
	return loan.NewEvent(loan.EventAssigned, inst, 2)
}

func TestLoanEventPublisher_RoutesByType(t *testing.T) {
	sender := new(mockSender)
	ev := assignedEvent()
	sender.On("Publish", mock.Anything, "loan.assigned", ev).Return(nil).Once()

	p := NewLoanEventPublisher(sender)
	require.NoError(t, p.PublishLoanEvent(context.Background(), ev))
	sender.AssertExpectations(t)
}

func TestLoanEventPublisher_OpensAfterFailures(t *testing.T) {
	sender := new(mockSender)
	sender.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("connection reset"))

	p := NewLoanEventPublisher(sender)
	for i := 0; i < 3; i++ {
		assert.Error(t, p.PublishLoanEvent(context.Background(), assignedEvent()))
	}

	err := p.PublishLoanEvent(context.Background(), assignedEvent())
	assert.ErrorIs(t, err, apperrors.ErrUnavailable)
	sender.AssertNumberOfCalls(t, "Publish", 3)
}

func TestLoanEventHandler(t *testing.T) {
	want := assignedEvent()
	body, err := json.Marshal(want)
	require.NoError(t, err)

	var got loan.Event
	h := LoanEventHandler(func(_ context.Context, ev loan.Event) error {
		got = ev
		return nil
	})

	require.NoError(t, h(context.Background(), mq.Message{RoutingKey: "loan.assigned", Body: body}))
	assert.Equal(t, want.InstanceID, got.InstanceID)
	assert.Equal(t, loan.StatusTaken, got.Status)
	assert.Equal(t, uint(10), *got.ReaderID)
	assert.True(t, want.DueBack.Equal(*got.DueBack))

	assert.Error(t, h(context.Background(), mq.Message{Body: []byte("not json")}))
}

func TestNopPublisher(t *testing.T) {
	assert.NoError(t, NopPublisher{}.PublishLoanEvent(context.Background(), assignedEvent()))
}
