package catalog

import (
	"context"

	"github.com/xiebiao/library/internal/domain/access"
	"github.com/xiebiao/library/internal/domain/review"
)

type SubmitReviewRequest struct {
	BookID  uint
	Content string
}

// SubmitReviewUseCase records a review written by the caller. The request
// has no reviewer field; the reviewer is always the principal.
type SubmitReviewUseCase struct {
	reviews review.Service
}

func NewSubmitReviewUseCase(reviewService review.Service) *SubmitReviewUseCase {
	return &SubmitReviewUseCase{reviews: reviewService}
}

func (uc *SubmitReviewUseCase) Execute(ctx context.Context, p access.Principal, req SubmitReviewRequest) (*ReviewView, error) {
	if err := p.Authorize(access.OpSubmitReview); err != nil {
		return nil, err
	}

	r, err := uc.reviews.Submit(ctx, req.BookID, p.UserID, review.Input{Content: req.Content})
	if err != nil {
		return nil, err
	}

	view := toReviewView(r)
	if view.Reviewer == "" {
		view.Reviewer = p.Username
	}
	return &view, nil
}
