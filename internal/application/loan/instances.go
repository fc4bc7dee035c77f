package loan

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/xiebiao/library/internal/domain/access"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/pkg/logger"
	"github.com/xiebiao/library/pkg/metrics"
	"github.com/xiebiao/library/pkg/pagination"
)

// EventPublisher announces committed instance changes.
type EventPublisher interface {
	PublishLoanEvent(ctx context.Context, ev loan.Event) error
}

// CacheInvalidator drops the cached catalog summary.
type CacheInvalidator interface {
	Delete(ctx context.Context) error
}

type InstanceListResponse struct {
	Instances []InstanceView
	Page      pagination.Page
}

// InstancesUseCase is the staff desk: listing copies, registering new ones
// and moving them through the loan states. Every operation checks the
// principal before touching the store.
type InstancesUseCase struct {
	notifier
	loans loan.Service
	books BookLookup
	now   func() time.Time
}

func NewInstancesUseCase(loanService loan.Service, books BookLookup, events EventPublisher, summary CacheInvalidator) *InstancesUseCase {
	return &InstancesUseCase{
		notifier: notifier{events: events, summary: summary},
		loans:    loanService,
		books:    books,
		now:      time.Now,
	}
}

func (uc *InstancesUseCase) List(ctx context.Context, p access.Principal, page int, filter loan.Filter) (*InstanceListResponse, error) {
	if err := p.Authorize(access.OpListInstances); err != nil {
		return nil, err
	}

	res, err := uc.loans.List(ctx, page, filter)
	if err != nil {
		return nil, err
	}
	views, err := toViews(ctx, uc.books, res.Instances, uc.now())
	if err != nil {
		return nil, err
	}
	return &InstanceListResponse{Instances: views, Page: res.Page}, nil
}

func (uc *InstancesUseCase) Get(ctx context.Context, p access.Principal, id uint) (*InstanceView, error) {
	if err := p.Authorize(access.OpViewInstance); err != nil {
		return nil, err
	}

	inst, err := uc.loans.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return uc.view(ctx, inst)
}

func (uc *InstancesUseCase) Create(ctx context.Context, p access.Principal, in loan.CreateInput) (*InstanceView, error) {
	if err := p.Authorize(access.OpCreateInstance); err != nil {
		return nil, err
	}

	inst, err := uc.loans.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	uc.committed(ctx, loan.EventCreated, inst, p)
	return uc.view(ctx, inst)
}

// Update rewrites status, reader, due date and book with no transition rules.
func (uc *InstancesUseCase) Update(ctx context.Context, p access.Principal, id uint, in loan.UpdateInput) (*InstanceView, error) {
	if err := p.Authorize(access.OpUpdateInstance); err != nil {
		return nil, err
	}

	inst, err := uc.loans.Update(ctx, id, in)
	if err != nil {
		uc.failed(err)
		return nil, err
	}
	uc.committed(ctx, loan.EventUpdated, inst, p)
	return uc.view(ctx, inst)
}

func (uc *InstancesUseCase) AssignReader(ctx context.Context, p access.Principal, id uint, in loan.AssignInput) (*InstanceView, error) {
	if err := p.Authorize(access.OpAssignReader); err != nil {
		return nil, err
	}

	inst, err := uc.loans.AssignReader(ctx, id, in)
	if err != nil {
		uc.failed(err)
		return nil, err
	}
	uc.committed(ctx, loan.EventAssigned, inst, p)
	return uc.view(ctx, inst)
}

func (uc *InstancesUseCase) Return(ctx context.Context, p access.Principal, id uint, version *uint) (*InstanceView, error) {
	if err := p.Authorize(access.OpReturnInstance); err != nil {
		return nil, err
	}

	inst, err := uc.loans.Return(ctx, id, version)
	if err != nil {
		uc.failed(err)
		return nil, err
	}
	uc.committed(ctx, loan.EventReturned, inst, p)
	return uc.view(ctx, inst)
}

func (uc *InstancesUseCase) view(ctx context.Context, inst *loan.Instance) (*InstanceView, error) {
	views, err := toViews(ctx, uc.books, []*loan.Instance{inst}, uc.now())
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (uc *InstancesUseCase) failed(err error) {
	if errors.Is(err, loan.ErrStaleInstance) {
		metrics.IncCounter(metrics.LoanConflictsTotal)
	}
}

// notifier does the bookkeeping that follows a committed instance write.
type notifier struct {
	events  EventPublisher
	summary CacheInvalidator
}

// committed runs after a successful write. The write stands even when the
// event cannot be published; the failure is logged.
func (n notifier) committed(ctx context.Context, typ loan.EventType, inst *loan.Instance, p access.Principal) {
	metrics.IncCounterVec(metrics.LoanTransitionsTotal, map[string]string{
		"action": strings.TrimPrefix(string(typ), "loan."),
		"status": inst.Status.String(),
	})

	log := logger.FromContext(ctx)
	if n.summary != nil {
		if err := n.summary.Delete(ctx); err != nil {
			log.Warn().Err(err).Msg("summary cache not invalidated")
		}
	}

	if n.events == nil {
		return
	}
	if err := n.events.PublishLoanEvent(ctx, loan.NewEvent(typ, inst, p.UserID)); err != nil {
		log.Error().Err(err).
			Str("event", string(typ)).
			Uint("instance_id", inst.ID).
			Msg("loan event not published")
	}
}
