// Package review stores reader reviews of books.
package review

import (
	"context"
)

// Service manages book reviews.
type Service interface {
	// Submit stores a review on bookID written by reviewerID.
	// Content is trimmed and required. An unknown book returns
	// ErrBookNotFound.
	Submit(ctx context.Context, bookID, reviewerID uint, in Input) (*Review, error)

	Get(ctx context.Context, id uint) (*Review, error)

	// ListByBook and ListByReviewer return newest first.
	ListByBook(ctx context.Context, bookID uint) ([]*Review, error)
	ListByReviewer(ctx context.Context, reviewerID uint) ([]*Review, error)

	Delete(ctx context.Context, id uint) error
}

type service struct {
	repo  Repository
	books BookChecker
}

// NewService creates the review service.
func NewService(repo Repository, books BookChecker) Service {
	return &service{repo: repo, books: books}
}

func (s *service) Submit(ctx context.Context, bookID, reviewerID uint, in Input) (*Review, error) {
	in.normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	ok, err := s.books.BookExists(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrBookNotFound
	}

	r := NewReview(bookID, reviewerID, in.Content)
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *service) Get(ctx context.Context, id uint) (*Review, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) ListByBook(ctx context.Context, bookID uint) ([]*Review, error) {
	return s.repo.ListByBook(ctx, bookID)
}

func (s *service) ListByReviewer(ctx context.Context, reviewerID uint) ([]*Review, error) {
	return s.repo.ListByReviewer(ctx, reviewerID)
}

func (s *service) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}
