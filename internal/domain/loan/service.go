// Package loan tracks physical copies of books (instances) through their
// lending states.
package loan

import (
	"context"
	"strings"

	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/pagination"
)

// Page is one page of instances.
type Page struct {
	Instances []*Instance
	Page      pagination.Page
}

// Service is the loan state machine over book instances.
// It validates input and references; access checks belong to the caller.
//
// Every write is a compare-and-set on the instance version. Callers may pass
// the version they last saw; without one the version just read is used.
// A lost race returns ErrStaleInstance.
type Service interface {
	// Create registers a copy with a fresh UUID. Status defaults to
	// available; a book id, when set, must exist.
	Create(ctx context.Context, in CreateInput) (*Instance, error)

	// Get returns ErrInstanceNotFound for an unknown id.
	Get(ctx context.Context, id uint) (*Instance, error)

	// List pages instances ordered by id, optionally filtered by status and
	// book. Out-of-range pages clamp.
	List(ctx context.Context, page int, filter Filter) (*Page, error)

	// Update replaces book, status, reader and due date with no transition rules.
	// Referenced book and reader must exist.
	Update(ctx context.Context, id uint, in UpdateInput) (*Instance, error)

	// AssignReader sets reader and due date; status defaults to taken.
	// An unknown reader returns ErrReaderNotFound.
	AssignReader(ctx context.Context, id uint, in AssignInput) (*Instance, error)

	// Return clears reader and due date and sets available.
	Return(ctx context.Context, id uint, version *uint) (*Instance, error)

	// ListByReader returns a reader's copies, soonest due first.
	ListByReader(ctx context.Context, readerID uint) ([]*Instance, error)
	ListByBook(ctx context.Context, bookID uint) ([]*Instance, error)
	ListAll(ctx context.Context) ([]*Instance, error)

	// Count and CountAvailable feed the summary page.
	Count(ctx context.Context) (int64, error)
	CountAvailable(ctx context.Context) (int64, error)
}

type service struct {
	repo     Repository
	books    BookChecker
	readers  ReaderChecker
	pageSize int
}

// NewService creates the loan service.
func NewService(repo Repository, books BookChecker, readers ReaderChecker, pageSize int) Service {
	if pageSize <= 0 {
		pageSize = pagination.DefaultSize
	}
	return &service{
		repo:     repo,
		books:    books,
		readers:  readers,
		pageSize: pageSize,
	}
}

func (s *service) Create(ctx context.Context, in CreateInput) (*Instance, error) {
	in.Status = normalizeStatus(in.Status)
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkBook(ctx, in.BookID); err != nil {
		return nil, err
	}

	inst := NewInstance(in.BookID, Status(in.Status))
	if err := s.repo.Create(ctx, inst); err != nil {
		return nil, err
	}
	return inst, nil
}

func (s *service) Get(ctx context.Context, id uint) (*Instance, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) List(ctx context.Context, page int, filter Filter) (*Page, error) {
	filter.Status = normalizeStatus(filter.Status)
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	params := ListParams{Status: Status(filter.Status), BookID: filter.BookID}
	total, err := s.repo.Count(ctx, params)
	if err != nil {
		return nil, err
	}

	p := pagination.Resolve(total, s.pageSize, page)
	params.Page = p.Number
	params.PageSize = p.Size

	instances, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	return &Page{Instances: instances, Page: p}, nil
}

func (s *service) Update(ctx context.Context, id uint, in UpdateInput) (*Instance, error) {
	in.Status = normalizeStatus(in.Status)
	if err := in.Validate(); err != nil {
		return nil, err
	}

	inst, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkBook(ctx, in.BookID); err != nil {
		return nil, err
	}
	if in.ReaderID != nil {
		if err := s.checkReader(ctx, *in.ReaderID, "reader_id"); err != nil {
			return nil, err
		}
	}

	expected := expectedVersion(inst, in.Version)
	inst.Apply(in.BookID, Status(in.Status), in.ReaderID, in.DueBack)
	if err := s.repo.Update(ctx, inst, expected); err != nil {
		return nil, err
	}
	return inst, nil
}

func (s *service) AssignReader(ctx context.Context, id uint, in AssignInput) (*Instance, error) {
	in.Status = normalizeStatus(in.Status)
	if err := in.Validate(); err != nil {
		return nil, err
	}

	inst, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ok, err := s.readers.Exists(ctx, in.ReaderID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrReaderNotFound
	}

	expected := expectedVersion(inst, in.Version)
	inst.AssignReader(in.ReaderID, in.DueBack, Status(in.Status))
	if err := s.repo.Update(ctx, inst, expected); err != nil {
		return nil, err
	}
	return inst, nil
}

func (s *service) Return(ctx context.Context, id uint, version *uint) (*Instance, error) {
	inst, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	expected := expectedVersion(inst, version)
	inst.Return()
	if err := s.repo.Update(ctx, inst, expected); err != nil {
		return nil, err
	}
	return inst, nil
}

func (s *service) ListByReader(ctx context.Context, readerID uint) ([]*Instance, error) {
	return s.repo.ListByReader(ctx, readerID)
}

func (s *service) ListByBook(ctx context.Context, bookID uint) ([]*Instance, error) {
	return s.repo.ListByBook(ctx, bookID)
}

func (s *service) ListAll(ctx context.Context) ([]*Instance, error) {
	return s.repo.ListAll(ctx)
}

func (s *service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx, ListParams{})
}

func (s *service) CountAvailable(ctx context.Context) (int64, error) {
	return s.repo.CountByStatus(ctx, StatusAvailable)
}

func (s *service) checkBook(ctx context.Context, bookID *uint) error {
	if bookID == nil {
		return nil
	}
	ok, err := s.books.BookExists(ctx, *bookID)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.FieldError("book_id", "book does not exist")
	}
	return nil
}

func (s *service) checkReader(ctx context.Context, readerID uint, field string) error {
	ok, err := s.readers.Exists(ctx, readerID)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.FieldError(field, "reader does not exist")
	}
	return nil
}

// expectedVersion prefers the caller's version over the one just read.
func expectedVersion(inst *Instance, fromCaller *uint) uint {
	if fromCaller != nil {
		return *fromCaller
	}
	return inst.Version
}

func normalizeStatus(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
