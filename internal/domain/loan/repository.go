package loan

import (
	"context"
)

// ListParams selects a resolved page of instances with optional filters.
type ListParams struct {
	Page     int
	PageSize int
	Status   Status // empty means any
	BookID   *uint
}

// Offset is the first row of the page.
func (p ListParams) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// Repository persists book instances.
type Repository interface {
	// Create stores the instance, including its UUID, with version 1.
	Create(ctx context.Context, inst *Instance) error

	// FindByID returns ErrInstanceNotFound for an unknown id.
	FindByID(ctx context.Context, id uint) (*Instance, error)

	// Update writes book, status, reader and due date when the stored version
	// equals expectedVersion, then bumps inst.Version. A version mismatch on an
	// existing row returns ErrStaleInstance and a missing row
	// ErrInstanceNotFound. The UUID column is never written. Due dates are
	// stored as calendar days and read back as UTC midnight.
	Update(ctx context.Context, inst *Instance, expectedVersion uint) error

	// List returns one filtered page ordered by id.
	List(ctx context.Context, params ListParams) ([]*Instance, error)

	// Count applies the same filters as List without paging.
	Count(ctx context.Context, params ListParams) (int64, error)

	// ListByReader returns the reader's instances ordered by due date, then id.
	ListByReader(ctx context.Context, readerID uint) ([]*Instance, error)
	// ListByBook returns the book's instances ordered by id.
	ListByBook(ctx context.Context, bookID uint) ([]*Instance, error)
	// ListAll returns every instance ordered by id.
	ListAll(ctx context.Context) ([]*Instance, error)

	// CountByStatus feeds the summary counters.
	CountByStatus(ctx context.Context, status Status) (int64, error)
}

// BookChecker reports whether a book exists.
type BookChecker interface {
	BookExists(ctx context.Context, id uint) (bool, error)
}

// ReaderChecker reports whether a user exists.
type ReaderChecker interface {
	Exists(ctx context.Context, id uint) (bool, error)
}
