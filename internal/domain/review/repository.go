package review

import (
	"context"
)

// Repository persists reviews. There is no update: content and creation
// date are fixed once stored.
type Repository interface {
	// Create stores the review and sets its ID. CreatedAt is kept when set.
	Create(ctx context.Context, review *Review) error

	// FindByID returns ErrReviewNotFound for an unknown id.
	FindByID(ctx context.Context, id uint) (*Review, error)

	// ListByBook returns the book's reviews newest first.
	ListByBook(ctx context.Context, bookID uint) ([]*Review, error)

	// ListByReviewer returns the reviewer's reviews newest first.
	ListByReviewer(ctx context.Context, reviewerID uint) ([]*Review, error)

	// Delete returns ErrReviewNotFound when nothing was removed.
	Delete(ctx context.Context, id uint) error
}

// BookChecker reports whether a book exists.
type BookChecker interface {
	BookExists(ctx context.Context, id uint) (bool, error)
}
