package catalog

import (
	"context"
	"fmt"

	"github.com/xiebiao/library/internal/application/media"
	"github.com/xiebiao/library/internal/domain/access"
	"github.com/xiebiao/library/internal/domain/catalog"
	"github.com/xiebiao/library/pkg/logger"
)

// CacheInvalidator drops a cached value after a write.
type CacheInvalidator interface {
	Delete(ctx context.Context) error
}

// ManageUseCase is staff administration of genres, authors and books.
type ManageUseCase struct {
	catalog catalog.Service
	images  *media.Replacer
	summary CacheInvalidator
}

func NewManageUseCase(catalogService catalog.Service, images *media.Replacer, summary CacheInvalidator) *ManageUseCase {
	return &ManageUseCase{
		catalog: catalogService,
		images:  images,
		summary: summary,
	}
}

func (uc *ManageUseCase) authorize(p access.Principal) error {
	return p.Authorize(access.OpManageCatalog)
}

// countsChanged drops the cached summary. Failure only delays fresh counts
// until the cache entry expires.
func (uc *ManageUseCase) countsChanged(ctx context.Context) {
	if uc.summary == nil {
		return
	}
	if err := uc.summary.Delete(ctx); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Msg("summary cache not invalidated")
	}
}

func (uc *ManageUseCase) CreateGenre(ctx context.Context, p access.Principal, in catalog.GenreInput) (*GenreView, error) {
	if err := uc.authorize(p); err != nil {
		return nil, err
	}
	g, err := uc.catalog.CreateGenre(ctx, in)
	if err != nil {
		return nil, err
	}
	v := toGenreView(g)
	return &v, nil
}

func (uc *ManageUseCase) UpdateGenre(ctx context.Context, p access.Principal, id uint, in catalog.GenreInput) (*GenreView, error) {
	if err := uc.authorize(p); err != nil {
		return nil, err
	}
	g, err := uc.catalog.UpdateGenre(ctx, id, in)
	if err != nil {
		return nil, err
	}
	v := toGenreView(g)
	return &v, nil
}

func (uc *ManageUseCase) DeleteGenre(ctx context.Context, p access.Principal, id uint) error {
	if err := uc.authorize(p); err != nil {
		return err
	}
	return uc.catalog.DeleteGenre(ctx, id)
}

func (uc *ManageUseCase) CreateAuthor(ctx context.Context, p access.Principal, in catalog.AuthorInput) (*AuthorView, error) {
	if err := uc.authorize(p); err != nil {
		return nil, err
	}
	a, err := uc.catalog.CreateAuthor(ctx, in)
	if err != nil {
		return nil, err
	}
	uc.countsChanged(ctx)
	v := toAuthorView(a)
	return &v, nil
}

func (uc *ManageUseCase) UpdateAuthor(ctx context.Context, p access.Principal, id uint, in catalog.AuthorInput) (*AuthorView, error) {
	if err := uc.authorize(p); err != nil {
		return nil, err
	}
	a, err := uc.catalog.UpdateAuthor(ctx, id, in)
	if err != nil {
		return nil, err
	}
	v := toAuthorView(a)
	return &v, nil
}

// DeleteAuthor keeps the author's books with no author.
func (uc *ManageUseCase) DeleteAuthor(ctx context.Context, p access.Principal, id uint) error {
	if err := uc.authorize(p); err != nil {
		return err
	}
	if err := uc.catalog.DeleteAuthor(ctx, id); err != nil {
		return err
	}
	uc.countsChanged(ctx)
	return nil
}

func (uc *ManageUseCase) CreateBook(ctx context.Context, p access.Principal, in catalog.BookInput) (*BookItem, error) {
	if err := uc.authorize(p); err != nil {
		return nil, err
	}
	b, err := uc.catalog.CreateBook(ctx, in)
	if err != nil {
		return nil, err
	}
	uc.countsChanged(ctx)
	item := toBookItem(b)
	return &item, nil
}

func (uc *ManageUseCase) UpdateBook(ctx context.Context, p access.Principal, id uint, in catalog.BookInput) (*BookItem, error) {
	if err := uc.authorize(p); err != nil {
		return nil, err
	}
	b, err := uc.catalog.UpdateBook(ctx, id, in)
	if err != nil {
		return nil, err
	}
	item := toBookItem(b)
	return &item, nil
}

// DeleteBook keeps the book's copies and reviews with no book.
func (uc *ManageUseCase) DeleteBook(ctx context.Context, p access.Principal, id uint) error {
	if err := uc.authorize(p); err != nil {
		return err
	}
	if err := uc.catalog.DeleteBook(ctx, id); err != nil {
		return err
	}
	uc.countsChanged(ctx)
	return nil
}

// UploadCover stores a new cover image and replaces the previous one.
func (uc *ManageUseCase) UploadCover(ctx context.Context, p access.Principal, id uint, up media.Upload) (*BookItem, error) {
	if err := uc.authorize(p); err != nil {
		return nil, err
	}
	book, err := uc.catalog.GetBook(ctx, id)
	if err != nil {
		return nil, err
	}

	var updated *catalog.Book
	_, err = uc.images.Replace(ctx, fmt.Sprintf("covers/%d", id), up, book.CoverURL,
		func(ctx context.Context, url string) error {
			b, err := uc.catalog.SetBookCover(ctx, id, url)
			updated = b
			return err
		})
	if err != nil {
		return nil, err
	}
	item := toBookItem(updated)
	return &item, nil
}
