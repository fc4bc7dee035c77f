package review

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	apperrors "github.com/xiebiao/library/pkg/errors"
)

// MaxContent is the longest review body accepted.
const MaxContent = 2000

// Review is a reader's comment on a book.
// BookID and ReviewerID become nil when the book or the user is deleted.
// CreatedAt is written once on insert.
type Review struct {
	ID         uint
	BookID     *uint
	ReviewerID *uint
	Content    string
	CreatedAt  time.Time

	// ReviewerName is filled on reads when the reviewer still exists.
	ReviewerName string
}

// NewReview builds a review written by reviewerID.
func NewReview(bookID, reviewerID uint, content string) *Review {
	return &Review{
		BookID:     &bookID,
		ReviewerID: &reviewerID,
		Content:    content,
		CreatedAt:  time.Now(),
	}
}

// Input is what a reader submits. It carries no reviewer: the reviewer is
// always the caller.
type Input struct {
	Content string `json:"content"`
}

func (in *Input) normalize() {
	in.Content = strings.TrimSpace(in.Content)
}

func (in Input) Validate() error {
	in.normalize()
	return apperrors.FromValidation(validation.ValidateStruct(&in,
		validation.Field(&in.Content, validation.Required, validation.RuneLength(1, MaxContent)),
	))
}
