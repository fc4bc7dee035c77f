package loan

import (
	"context"
	"time"

	"github.com/xiebiao/library/internal/domain/catalog"
	"github.com/xiebiao/library/internal/domain/loan"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

// InstanceView is a copy with its lending state.
type InstanceView struct {
	ID        uint       `json:"id"`
	UUID      string     `json:"uuid"`
	BookID    *uint      `json:"book_id"`
	BookTitle string     `json:"book_title,omitempty"`
	Status    string     `json:"status"`
	DueBack   *time.Time `json:"due_back"`
	ReaderID  *uint      `json:"reader_id"`
	Overdue   bool       `json:"is_overdue"`
	Version   uint       `json:"version"`
}

// BookLookup resolves book titles for instance listings.
type BookLookup interface {
	GetBook(ctx context.Context, id uint) (*catalog.Book, error)
}

// titles loads each distinct book once. Deleted books resolve to "".
func titles(ctx context.Context, books BookLookup, instances []*loan.Instance) (map[uint]string, error) {
	out := map[uint]string{}
	for _, inst := range instances {
		if inst.BookID == nil {
			continue
		}
		id := *inst.BookID
		if _, ok := out[id]; ok {
			continue
		}
		b, err := books.GetBook(ctx, id)
		if err != nil {
			if apperrors.IsNotFound(err) {
				out[id] = ""
				continue
			}
			return nil, err
		}
		out[id] = b.Title
	}
	return out, nil
}

func toView(inst *loan.Instance, title string, today time.Time) InstanceView {
	return InstanceView{
		ID:        inst.ID,
		UUID:      inst.UUID,
		BookID:    inst.BookID,
		BookTitle: title,
		Status:    inst.Status.String(),
		DueBack:   inst.DueBack,
		ReaderID:  inst.ReaderID,
		Overdue:   inst.IsOverdue(today),
		Version:   inst.Version,
	}
}

func toViews(ctx context.Context, books BookLookup, instances []*loan.Instance, today time.Time) ([]InstanceView, error) {
	names, err := titles(ctx, books, instances)
	if err != nil {
		return nil, err
	}
	out := make([]InstanceView, len(instances))
	for i, inst := range instances {
		title := ""
		if inst.BookID != nil {
			title = names[*inst.BookID]
		}
		out[i] = toView(inst, title, today)
	}
	return out, nil
}
