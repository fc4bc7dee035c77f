package catalog

import (
	"context"

	"github.com/xiebiao/library/internal/domain/access"
	"github.com/xiebiao/library/internal/domain/catalog"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/domain/review"
	"github.com/xiebiao/library/pkg/pagination"
)

type BookListResponse struct {
	Books []BookItem
	Page  pagination.Page
}

type AuthorListResponse struct {
	Authors []AuthorView
	Page    pagination.Page
}

// BrowseUseCase serves the public catalog pages.
type BrowseUseCase struct {
	catalog catalog.Service
	loans   loan.Service
	reviews review.Service
}

func NewBrowseUseCase(catalogService catalog.Service, loanService loan.Service, reviewService review.Service) *BrowseUseCase {
	return &BrowseUseCase{
		catalog: catalogService,
		loans:   loanService,
		reviews: reviewService,
	}
}

// ListBooks returns one page of books ordered by id.
func (uc *BrowseUseCase) ListBooks(ctx context.Context, p access.Principal, page int) (*BookListResponse, error) {
	if err := p.Authorize(access.OpBrowseCatalog); err != nil {
		return nil, err
	}

	res, err := uc.catalog.ListBooks(ctx, page)
	if err != nil {
		return nil, err
	}
	return &BookListResponse{Books: toBookItems(res.Books), Page: res.Page}, nil
}

// BookDetail returns a book with its genres, copies and reviews (newest first).
func (uc *BrowseUseCase) BookDetail(ctx context.Context, p access.Principal, id uint) (*BookDetail, error) {
	if err := p.Authorize(access.OpBrowseCatalog); err != nil {
		return nil, err
	}

	book, err := uc.catalog.GetBook(ctx, id)
	if err != nil {
		return nil, err
	}
	instances, err := uc.loans.ListByBook(ctx, id)
	if err != nil {
		return nil, err
	}
	reviews, err := uc.reviews.ListByBook(ctx, id)
	if err != nil {
		return nil, err
	}

	return &BookDetail{
		BookItem:  toBookItem(book),
		Summary:   book.Summary,
		Genres:    toGenreViews(book.Genres),
		Instances: toInstanceItems(instances),
		Reviews:   toReviewViews(reviews),
	}, nil
}

func (uc *BrowseUseCase) ListAuthors(ctx context.Context, p access.Principal, page int) (*AuthorListResponse, error) {
	if err := p.Authorize(access.OpBrowseCatalog); err != nil {
		return nil, err
	}

	res, err := uc.catalog.ListAuthors(ctx, page)
	if err != nil {
		return nil, err
	}
	return &AuthorListResponse{Authors: toAuthorViews(res.Authors), Page: res.Page}, nil
}

func (uc *BrowseUseCase) AuthorDetail(ctx context.Context, p access.Principal, id uint) (*AuthorDetail, error) {
	if err := p.Authorize(access.OpBrowseCatalog); err != nil {
		return nil, err
	}

	author, err := uc.catalog.GetAuthor(ctx, id)
	if err != nil {
		return nil, err
	}
	books, err := uc.catalog.BooksByAuthor(ctx, id)
	if err != nil {
		return nil, err
	}
	return &AuthorDetail{AuthorView: toAuthorView(author), Books: toBookItems(books)}, nil
}

func (uc *BrowseUseCase) ListGenres(ctx context.Context, p access.Principal) ([]GenreView, error) {
	if err := p.Authorize(access.OpBrowseCatalog); err != nil {
		return nil, err
	}

	genres, err := uc.catalog.ListGenres(ctx)
	if err != nil {
		return nil, err
	}
	return toGenreViews(genres), nil
}
