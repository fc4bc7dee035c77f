package catalog

import (
	"context"
	"fmt"

	"github.com/xiebiao/library/internal/domain/access"
	"github.com/xiebiao/library/internal/domain/catalog"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/pkg/logger"
)

// VisitCounter counts summary page visits per visitor.
type VisitCounter interface {
	Incr(ctx context.Context, visitor string) (int64, error)
}

// SummaryCache holds the catalog counts between requests.
type SummaryCache interface {
	Get(ctx context.Context, dest interface{}) (bool, error)
	Set(ctx context.Context, value interface{}) error
}

// Counts are the catalog totals on the home page.
type Counts struct {
	Books              int64 `json:"num_books"`
	Instances          int64 `json:"num_instances"`
	InstancesAvailable int64 `json:"num_instances_available"`
	Authors            int64 `json:"num_authors"`
}

type SummaryResponse struct {
	Counts
	Visits int64 `json:"num_visits"`
}

// SummaryUseCase reports catalog totals and the caller's visit count.
// Redis backs both the cache and the counter; when it fails the counts are
// read from the database and the visit count is zero.
type SummaryUseCase struct {
	catalog catalog.Service
	loans   loan.Service
	visits  VisitCounter
	cache   SummaryCache
}

func NewSummaryUseCase(catalogService catalog.Service, loanService loan.Service, visits VisitCounter, cache SummaryCache) *SummaryUseCase {
	return &SummaryUseCase{
		catalog: catalogService,
		loans:   loanService,
		visits:  visits,
		cache:   cache,
	}
}

// VisitorKey identifies a visitor by user id, or by client address when anonymous.
func VisitorKey(p access.Principal, clientIP string) string {
	if p.Authenticated() {
		return fmt.Sprintf("user:%d", p.UserID)
	}
	return "ip:" + clientIP
}

func (uc *SummaryUseCase) Execute(ctx context.Context, p access.Principal, visitor string) (*SummaryResponse, error) {
	if err := p.Authorize(access.OpViewSummary); err != nil {
		return nil, err
	}

	counts, err := uc.counts(ctx)
	if err != nil {
		return nil, err
	}

	resp := &SummaryResponse{Counts: *counts}
	if uc.visits != nil {
		n, err := uc.visits.Incr(ctx, visitor)
		if err != nil {
			logger.FromContext(ctx).Warn().Err(err).Str("visitor", visitor).Msg("visit counter unavailable")
		} else {
			resp.Visits = n
		}
	}
	return resp, nil
}

func (uc *SummaryUseCase) counts(ctx context.Context) (*Counts, error) {
	log := logger.FromContext(ctx)

	var cached Counts
	if uc.cache != nil {
		ok, err := uc.cache.Get(ctx, &cached)
		if err != nil {
			log.Warn().Err(err).Msg("summary cache read failed")
		} else if ok {
			return &cached, nil
		}
	}

	var (
		c   Counts
		err error
	)
	if c.Books, err = uc.catalog.CountBooks(ctx); err != nil {
		return nil, err
	}
	if c.Instances, err = uc.loans.Count(ctx); err != nil {
		return nil, err
	}
	if c.InstancesAvailable, err = uc.loans.CountAvailable(ctx); err != nil {
		return nil, err
	}
	if c.Authors, err = uc.catalog.CountAuthors(ctx); err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, c); err != nil {
			log.Warn().Err(err).Msg("summary cache write failed")
		}
	}
	return &c, nil
}
