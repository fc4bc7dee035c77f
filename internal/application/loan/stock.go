package loan

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/xiebiao/library/internal/domain/access"
	"github.com/xiebiao/library/internal/domain/loan"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// MaxStockCount caps one stocking run.
const MaxStockCount = 100

// Transactor runs fn in one database transaction. Repositories reached
// through the context passed to fn join it.
type Transactor interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// StockRequest adds Count copies of one book, all with the same status.
type StockRequest struct {
	BookID uint   `json:"book_id"`
	Count  int    `json:"count"`
	Status string `json:"status"`
}

func (r StockRequest) Validate() error {
	return apperrors.FromValidation(validation.ValidateStruct(&r,
		validation.Field(&r.BookID, validation.Required),
		validation.Field(&r.Count, validation.Required, validation.Min(1), validation.Max(MaxStockCount)),
	))
}

// StockUseCase registers a delivery of copies. Either every copy is stored
// or none is; events go out only after the commit.
type StockUseCase struct {
	notifier
	loans loan.Service
	books BookLookup
	tx    Transactor
	now   func() time.Time
}

func NewStockUseCase(loanService loan.Service, books BookLookup, tx Transactor, events EventPublisher, summary CacheInvalidator) *StockUseCase {
	return &StockUseCase{
		notifier: notifier{events: events, summary: summary},
		loans:    loanService,
		books:    books,
		tx:       tx,
		now:      time.Now,
	}
}

func (uc *StockUseCase) Execute(ctx context.Context, p access.Principal, req StockRequest) ([]InstanceView, error) {
	if err := p.Authorize(access.OpCreateInstance); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	created := make([]*loan.Instance, 0, req.Count)
	err := uc.tx.Transaction(ctx, func(ctx context.Context) error {
		for i := 0; i < req.Count; i++ {
			inst, err := uc.loans.Create(ctx, loan.CreateInput{BookID: &req.BookID, Status: req.Status})
			if err != nil {
				return err
			}
			created = append(created, inst)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, inst := range created {
		uc.committed(ctx, loan.EventCreated, inst, p)
	}
	return toViews(ctx, uc.books, created, uc.now())
}
