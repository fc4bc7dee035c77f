package review

import (
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/library/pkg/errors"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) Create(ctx context.Context, r *Review) error {
	args := m.Called(ctx, r)
	r.ID = 1
	return args.Error(0)
}

func (m *mockRepository) FindByID(ctx context.Context, id uint) (*Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Review), args.Error(1)
}

func (m *mockRepository) ListByBook(ctx context.Context, bookID uint) ([]*Review, error) {
	args := m.Called(ctx, bookID)
	return args.Get(0).([]*Review), args.Error(1)
}

func (m *mockRepository) ListByReviewer(ctx context.Context, reviewerID uint) ([]*Review, error) {
	args := m.Called(ctx, reviewerID)
	return args.Get(0).([]*Review), args.Error(1)
}

func (m *mockRepository) Delete(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

type books map[uint]bool

func (b books) BookExists(_ context.Context, id uint) (bool, error) { return b[id], nil }

func TestService_Submit(t *testing.T) {
	repo := new(mockRepository)
	svc := NewService(repo, books{5: true})
	ctx := context.Background()

	repo.On("Create", ctx, mock.MatchedBy(func(r *Review) bool {
		return *r.BookID == 5 && *r.ReviewerID == 42 && r.Content == "Loved it"
	})).Return(nil).Once()

	r, err := svc.Submit(ctx, 5, 42, Input{Content: "  Loved it "})
	require.NoError(t, err)
	assert.Equal(t, uint(42), *r.ReviewerID)
	assert.False(t, r.CreatedAt.IsZero())
	repo.AssertExpectations(t)
}

func TestService_SubmitRejects(t *testing.T) {
	repo := new(mockRepository)
	svc := NewService(repo, books{5: true})
	ctx := context.Background()

	_, err := svc.Submit(ctx, 5, 42, Input{Content: "   "})
	require.Error(t, err)
	assert.Contains(t, apperrors.GetAppError(err).Fields, "content")

	_, err = svc.Submit(ctx, 5, 42, Input{Content: strings.Repeat("x", MaxContent+1)})
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.Submit(ctx, 6, 42, Input{Content: "fine"})
	assert.ErrorIs(t, err, ErrBookNotFound)

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestService_ListByBookKeepsRepositoryOrder(t *testing.T) {
	repo := new(mockRepository)
	svc := NewService(repo, books{})
	ctx := context.Background()

	stored := []*Review{{ID: 3}, {ID: 2}, {ID: 1}}
	repo.On("ListByBook", ctx, uint(5)).Return(stored, nil)

	got, err := svc.ListByBook(ctx, 5)
	require.NoError(t, err)
	assert.True(t, sort.SliceIsSorted(got, func(i, j int) bool { return got[i].ID > got[j].ID }))
}
