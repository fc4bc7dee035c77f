package loan

import (
	"context"
	"io"
	"time"

	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/domain/user"
	"github.com/xiebiao/library/internal/infrastructure/report"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// ReaderLookup resolves reader usernames for the register.
type ReaderLookup interface {
	Get(ctx context.Context, id uint) (*user.User, error)
}

// ExportUseCase writes the full instance register as a spreadsheet.
// It is an operator tool run from libraryctl, not an API operation.
type ExportUseCase struct {
	loans   loan.Service
	books   BookLookup
	readers ReaderLookup
	now     func() time.Time
}

func NewExportUseCase(loanService loan.Service, books BookLookup, readers ReaderLookup) *ExportUseCase {
	return &ExportUseCase{
		loans:   loanService,
		books:   books,
		readers: readers,
		now:     time.Now,
	}
}

// Execute writes every instance to w and returns the row count.
func (uc *ExportUseCase) Execute(ctx context.Context, w io.Writer) (int, error) {
	instances, err := uc.loans.ListAll(ctx)
	if err != nil {
		return 0, err
	}
	names, err := titles(ctx, uc.books, instances)
	if err != nil {
		return 0, err
	}

	usernames := map[uint]string{}
	today := uc.now()
	rows := make([]report.InstanceRow, len(instances))
	for i, inst := range instances {
		row := report.InstanceRow{
			ID:      inst.ID,
			UUID:    inst.UUID,
			Status:  inst.Status.Label(),
			DueBack: inst.DueBack,
			Overdue: inst.IsOverdue(today),
		}
		if inst.BookID != nil {
			row.Book = names[*inst.BookID]
		}
		if inst.ReaderID != nil {
			name, err := uc.username(ctx, usernames, *inst.ReaderID)
			if err != nil {
				return 0, err
			}
			row.Reader = name
		}
		rows[i] = row
	}

	if err := report.WriteInstances(w, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (uc *ExportUseCase) username(ctx context.Context, cache map[uint]string, id uint) (string, error) {
	if name, ok := cache[id]; ok {
		return name, nil
	}
	u, err := uc.readers.Get(ctx, id)
	if err != nil && !apperrors.IsNotFound(err) {
		return "", err
	}
	name := ""
	if u != nil {
		name = u.Username
	}
	cache[id] = name
	return name, nil
}
