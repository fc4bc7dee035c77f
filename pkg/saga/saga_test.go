package saga

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recorder(log *[]string, name string, err error) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		*log = append(*log, name)
		return err
	}
}

func TestSaga_Execute_Success(t *testing.T) {
	var executed []string

	s := NewSaga(time.Second)
	s.AddStep("store file", recorder(&executed, "store", nil), recorder(&executed, "remove", nil))
	s.AddStep("record url", recorder(&executed, "record", nil), recorder(&executed, "restore", nil))

	require.NoError(t, s.Execute(context.Background()))
	assert.Equal(t, []string{"store", "record"}, executed)
}

func TestSaga_Execute_FailureCompensatesInReverse(t *testing.T) {
	var executed []string
	dbDown := errors.New("database down")

	s := NewSaga(time.Second)
	s.AddStep("store file", recorder(&executed, "store", nil), recorder(&executed, "remove", nil))
	s.AddStep("record url", recorder(&executed, "record", nil), recorder(&executed, "restore", nil))
	s.AddStep("delete old", recorder(&executed, "delete", dbDown), recorder(&executed, "undelete", nil))

	err := s.Execute(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, dbDown)
	assert.Contains(t, err.Error(), "delete old")

	assert.Equal(t, []string{"store", "record", "delete", "restore", "remove"}, executed)
}

func TestSaga_Execute_CompensationFailureContinues(t *testing.T) {
	var executed []string

	s := NewSaga(time.Second)
	s.AddStep("first", recorder(&executed, "first", nil), recorder(&executed, "undo first", nil))
	s.AddStep("second", recorder(&executed, "second", nil), recorder(&executed, "undo second", errors.New("boom")))
	s.AddStep("third", recorder(&executed, "third", errors.New("fail")), nil)

	require.Error(t, s.Execute(context.Background()))
	assert.Equal(t, []string{"first", "second", "third", "undo second", "undo first"}, executed)
}

func TestSaga_Execute_Timeout(t *testing.T) {
	var executed []string
	var compensationCtxErr error

	s := NewSaga(20 * time.Millisecond)
	s.AddStep("slow",
		func(ctx context.Context) error {
			executed = append(executed, "slow")
			time.Sleep(50 * time.Millisecond)
			return nil
		},
		func(ctx context.Context) error {
			compensationCtxErr = ctx.Err()
			executed = append(executed, "undo slow")
			return nil
		},
	)
	s.AddStep("never", recorder(&executed, "never", nil), nil)

	err := s.Execute(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, []string{"slow", "undo slow"}, executed)
	assert.NoError(t, compensationCtxErr)
}

func TestSaga_NilCompensateSkipped(t *testing.T) {
	var executed []string

	s := NewSaga(0)
	s.AddStep("no undo", recorder(&executed, "no undo", nil), nil)
	s.AddStep("fails", recorder(&executed, "fails", errors.New("x")), nil)

	require.Error(t, s.Execute(context.Background()))
	assert.Equal(t, []string{"no undo", "fails"}, executed)
}
