package loan

import (
	"context"
	"time"

	"github.com/xiebiao/library/internal/domain/access"
	"github.com/xiebiao/library/internal/domain/loan"
)

// MyInstancesUseCase lists the copies lent to the caller, soonest due first.
// There is no reader parameter: the caller only ever sees their own copies.
type MyInstancesUseCase struct {
	loans loan.Service
	books BookLookup
	now   func() time.Time
}

func NewMyInstancesUseCase(loanService loan.Service, books BookLookup) *MyInstancesUseCase {
	return &MyInstancesUseCase{
		loans: loanService,
		books: books,
		now:   time.Now,
	}
}

func (uc *MyInstancesUseCase) Execute(ctx context.Context, p access.Principal) ([]InstanceView, error) {
	if err := p.Authorize(access.OpListMyInstances); err != nil {
		return nil, err
	}

	instances, err := uc.loans.ListByReader(ctx, p.UserID)
	if err != nil {
		return nil, err
	}
	return toViews(ctx, uc.books, instances, uc.now())
}
