package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/library/internal/domain/review"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository creates the review repository.
func NewReviewRepository(db *gorm.DB) review.Repository {
	return &reviewRepository{db: db}
}

// Create keeps a preset CreatedAt; the column is insert-only.
func (r *reviewRepository) Create(ctx context.Context, rv *review.Review) error {
	model := &BookReviewModel{
		BookID:     rv.BookID,
		ReviewerID: rv.ReviewerID,
		Content:    rv.Content,
		CreatedAt:  rv.CreatedAt,
	}
	if err := getDB(ctx, r.db).Omit("Book", "Reviewer").Create(model).Error; err != nil {
		return apperrors.Wrap(err, "create review")
	}
	rv.ID = model.ID
	rv.CreatedAt = model.CreatedAt
	return nil
}

func (r *reviewRepository) FindByID(ctx context.Context, id uint) (*review.Review, error) {
	var model BookReviewModel
	if err := getDB(ctx, r.db).Preload("Reviewer").First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, review.ErrReviewNotFound
		}
		return nil, apperrors.Wrap(err, "find review")
	}
	return toReviewEntity(&model), nil
}

func (r *reviewRepository) ListByBook(ctx context.Context, bookID uint) ([]*review.Review, error) {
	return r.list(ctx, "book_id = ?", bookID)
}

func (r *reviewRepository) ListByReviewer(ctx context.Context, reviewerID uint) ([]*review.Review, error) {
	return r.list(ctx, "reviewer_id = ?", reviewerID)
}

// list returns newest first.
func (r *reviewRepository) list(ctx context.Context, cond string, arg uint) ([]*review.Review, error) {
	var models []BookReviewModel
	err := getDB(ctx, r.db).
		Preload("Reviewer").
		Where(cond, arg).
		Order("id DESC").
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "list reviews")
	}
	out := make([]*review.Review, len(models))
	for i := range models {
		out[i] = toReviewEntity(&models[i])
	}
	return out, nil
}

func (r *reviewRepository) Delete(ctx context.Context, id uint) error {
	result := getDB(ctx, r.db).Delete(&BookReviewModel{}, id)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "delete review")
	}
	if result.RowsAffected == 0 {
		return review.ErrReviewNotFound
	}
	return nil
}

func toReviewEntity(model *BookReviewModel) *review.Review {
	rv := &review.Review{
		ID:         model.ID,
		BookID:     model.BookID,
		ReviewerID: model.ReviewerID,
		Content:    model.Content,
		CreatedAt:  model.CreatedAt,
	}
	if model.Reviewer != nil {
		rv.ReviewerName = model.Reviewer.Username
	}
	return rv
}
