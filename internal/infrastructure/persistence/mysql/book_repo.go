package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/xiebiao/library/internal/domain/catalog"
	apperrors "github.com/xiebiao/library/pkg/errors"
)

type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository creates the book repository.
func NewBookRepository(db *gorm.DB) catalog.BookRepository {
	return &bookRepository{db: db}
}

// Create inserts the book and its book_genres rows.
func (r *bookRepository) Create(ctx context.Context, b *catalog.Book) error {
	model := toBookModel(b)
	// Genres.* links existing genres without upserting them.
	if err := getDB(ctx, r.db).Omit("Author", "Genres.*").Create(model).Error; err != nil {
		return apperrors.Wrap(err, "create book")
	}
	b.ID = model.ID
	b.CreatedAt = model.CreatedAt
	b.UpdatedAt = model.UpdatedAt
	return nil
}

func (r *bookRepository) FindByID(ctx context.Context, id uint) (*catalog.Book, error) {
	var model BookModel
	if err := r.withRelations(getDB(ctx, r.db)).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrBookNotFound
		}
		return nil, apperrors.Wrap(err, "find book")
	}
	return toBookEntity(&model), nil
}

func (r *bookRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var n int64
	if err := getDB(ctx, r.db).Model(&BookModel{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, apperrors.Wrap(err, "check book")
	}
	return n > 0, nil
}

// Update saves the columns and replaces the genre links in one transaction.
func (r *bookRepository) Update(ctx context.Context, b *catalog.Book) error {
	model := toBookModel(b)
	return getDB(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&BookModel{ID: b.ID}).Updates(map[string]interface{}{
			"title":      b.Title,
			"summary":    b.Summary,
			"isbn":       b.ISBN,
			"author_id":  b.AuthorID,
			"search_key": searchKey(b.Title, b.Summary),
		}).Error
		if err != nil {
			return apperrors.Wrap(err, "update book")
		}
		assoc := tx.Model(&BookModel{ID: b.ID}).Omit("Genres.*").Association("Genres")
		if len(model.Genres) == 0 {
			err = assoc.Clear()
		} else {
			err = assoc.Replace(model.Genres)
		}
		if err != nil {
			return apperrors.Wrap(err, "replace book genres")
		}
		return nil
	})
}

func (r *bookRepository) UpdateCover(ctx context.Context, id uint, coverURL string) error {
	result := getDB(ctx, r.db).Model(&BookModel{}).Where("id = ?", id).Update("cover_url", coverURL)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "update book cover")
	}
	if result.RowsAffected == 0 {
		return catalog.ErrBookNotFound
	}
	return nil
}

// Delete keeps instances and reviews of the book and clears their book_id.
func (r *bookRepository) Delete(ctx context.Context, id uint) error {
	return getDB(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&BookInstanceModel{}).Where("book_id = ?", id).Update("book_id", nil).Error; err != nil {
			return apperrors.Wrap(err, "detach book instances")
		}
		if err := tx.Model(&BookReviewModel{}).Where("book_id = ?", id).Update("book_id", nil).Error; err != nil {
			return apperrors.Wrap(err, "detach book reviews")
		}
		if err := tx.Exec("DELETE FROM book_genres WHERE book_id = ?", id).Error; err != nil {
			return apperrors.Wrap(err, "unlink book genres")
		}
		result := tx.Delete(&BookModel{}, id)
		if result.Error != nil {
			return apperrors.Wrap(result.Error, "delete book")
		}
		if result.RowsAffected == 0 {
			return catalog.ErrBookNotFound
		}
		return nil
	})
}

func (r *bookRepository) List(ctx context.Context, params catalog.ListParams) ([]*catalog.Book, error) {
	var models []BookModel
	err := r.withRelations(getDB(ctx, r.db)).
		Order("id ASC").
		Limit(params.PageSize).
		Offset(params.Offset()).
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "list books")
	}
	return toBookEntities(models), nil
}

func (r *bookRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := getDB(ctx, r.db).Model(&BookModel{}).Count(&n).Error; err != nil {
		return 0, apperrors.Wrap(err, "count books")
	}
	return n, nil
}

func (r *bookRepository) ListByAuthor(ctx context.Context, authorID uint) ([]*catalog.Book, error) {
	var models []BookModel
	err := r.withRelations(getDB(ctx, r.db)).
		Where("author_id = ?", authorID).
		Order("id ASC").
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "list author books")
	}
	return toBookEntities(models), nil
}

// Search joins authors so a book matches on its author's names too. Books
// without an author still match on their own key.
func (r *bookRepository) Search(ctx context.Context, term string) ([]*catalog.Book, error) {
	p := containsPattern(term)
	var models []BookModel
	err := r.withRelations(getDB(ctx, r.db)).
		Select("books.*").
		Joins("LEFT JOIN authors ON authors.id = books.author_id").
		Where("books.search_key LIKE ? ESCAPE '!' OR authors.search_key LIKE ? ESCAPE '!'", p, p).
		Order("books.id ASC").
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "search books")
	}
	return toBookEntities(models), nil
}

// withRelations preloads the author and genres in id order.
func (r *bookRepository) withRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("Author").Preload("Genres", func(db *gorm.DB) *gorm.DB {
		return db.Order("genres.id ASC")
	})
}

// toBookModel also derives the search key.
func toBookModel(b *catalog.Book) *BookModel {
	genres := make([]GenreModel, len(b.Genres))
	for i, g := range b.Genres {
		genres[i] = GenreModel{ID: g.ID, Name: g.Name}
	}
	return &BookModel{
		ID:        b.ID,
		Title:     b.Title,
		Summary:   b.Summary,
		ISBN:      b.ISBN,
		AuthorID:  b.AuthorID,
		Genres:    genres,
		CoverURL:  b.CoverURL,
		SearchKey: searchKey(b.Title, b.Summary),
	}
}

func toBookEntity(model *BookModel) *catalog.Book {
	b := &catalog.Book{
		ID:        model.ID,
		Title:     model.Title,
		Summary:   model.Summary,
		ISBN:      model.ISBN,
		AuthorID:  model.AuthorID,
		Genres:    make([]*catalog.Genre, len(model.Genres)),
		CoverURL:  model.CoverURL,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
	if model.Author != nil {
		b.Author = toAuthorEntity(model.Author)
	}
	for i := range model.Genres {
		b.Genres[i] = toGenreEntity(&model.Genres[i])
	}
	return b
}

func toBookEntities(models []BookModel) []*catalog.Book {
	books := make([]*catalog.Book, len(models))
	for i := range models {
		books[i] = toBookEntity(&models[i])
	}
	return books
}
