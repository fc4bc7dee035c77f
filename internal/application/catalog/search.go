package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/xiebiao/library/internal/domain/access"
	"github.com/xiebiao/library/internal/domain/catalog"
	"github.com/xiebiao/library/pkg/metrics"
)

type SearchResponse struct {
	Query   string       `json:"query"`
	Books   []BookItem   `json:"books"`
	Authors []AuthorView `json:"authors"`
}

// SearchUseCase finds books and authors by substring.
type SearchUseCase struct {
	catalog catalog.Service
}

func NewSearchUseCase(catalogService catalog.Service) *SearchUseCase {
	return &SearchUseCase{catalog: catalogService}
}

func (uc *SearchUseCase) Execute(ctx context.Context, p access.Principal, query string) (*SearchResponse, error) {
	if err := p.Authorize(access.OpSearch); err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := uc.catalog.Search(ctx, query)
	metrics.ObserveHistogram(metrics.SearchDuration, time.Since(start).Seconds())
	if err != nil {
		metrics.IncCounterVec(metrics.SearchQueriesTotal, map[string]string{"outcome": "error"})
		return nil, err
	}

	outcome := "match"
	switch {
	case strings.TrimSpace(query) == "":
		outcome = "blank"
	case len(res.Books) == 0 && len(res.Authors) == 0:
		outcome = "empty"
	}
	metrics.IncCounterVec(metrics.SearchQueriesTotal, map[string]string{"outcome": outcome})

	return &SearchResponse{
		Query:   query,
		Books:   toBookItems(res.Books),
		Authors: toAuthorViews(res.Authors),
	}, nil
}
