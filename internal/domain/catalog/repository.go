package catalog

import (
	"context"
)

// ListParams selects one resolved page. Page is 1-indexed and already clamped
// by the caller; repositories only translate it into offset/limit.
type ListParams struct {
	Page     int
	PageSize int
}

// Offset is the first row of the page.
func (p ListParams) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// GenreRepository persists genres. Names are unique; the store enforces it.
type GenreRepository interface {
	// Create stores the genre and sets its ID.
	// A taken name returns ErrGenreDuplicate.
	Create(ctx context.Context, genre *Genre) error

	// FindByID returns ErrGenreNotFound for an unknown id.
	FindByID(ctx context.Context, id uint) (*Genre, error)

	// FindByIDs returns the genres that exist among ids, ordered by id.
	// Unknown ids are skipped; the caller compares lengths.
	FindByIDs(ctx context.Context, ids []uint) ([]*Genre, error)

	// Update renames the genre. A name held by another genre returns
	// ErrGenreDuplicate.
	Update(ctx context.Context, genre *Genre) error

	// Delete removes the genre and its book links. Books are kept.
	Delete(ctx context.Context, id uint) error

	// List returns every genre ordered by id.
	List(ctx context.Context) ([]*Genre, error)
}

// AuthorRepository persists authors.
type AuthorRepository interface {
	// Create stores the author and sets its ID.
	Create(ctx context.Context, author *Author) error

	// FindByID returns ErrAuthorNotFound for an unknown id.
	FindByID(ctx context.Context, id uint) (*Author, error)

	// Exists reports whether id names a stored author.
	Exists(ctx context.Context, id uint) (bool, error)

	// Update writes names and description. The caller checks existence first.
	Update(ctx context.Context, author *Author) error

	// Delete removes the author and clears books.author_id in one transaction.
	Delete(ctx context.Context, id uint) error

	// List returns one page ordered by id.
	List(ctx context.Context, params ListParams) ([]*Author, error)

	// Count returns the number of stored authors.
	Count(ctx context.Context) (int64, error)

	// Search matches term case-insensitively as a substring of first or last
	// name, ordered by id. Case folding covers non-ASCII letters; accents
	// still count.
	Search(ctx context.Context, term string) ([]*Author, error)
}

// BookRepository persists books together with their genre links.
// Reads load the author and genres.
type BookRepository interface {
	// Create stores the book with its genre links and sets its ID.
	Create(ctx context.Context, book *Book) error

	// FindByID returns ErrBookNotFound for an unknown id.
	FindByID(ctx context.Context, id uint) (*Book, error)

	// Exists reports whether id names a stored book.
	Exists(ctx context.Context, id uint) (bool, error)

	// Update saves fields and replaces the genre links.
	Update(ctx context.Context, book *Book) error

	// UpdateCover sets only the cover URL. ErrBookNotFound for an unknown id.
	UpdateCover(ctx context.Context, id uint, coverURL string) error

	// Delete removes the book and its genre links, and clears book_id on
	// instances and reviews in one transaction.
	Delete(ctx context.Context, id uint) error

	// List returns one page ordered by id.
	List(ctx context.Context, params ListParams) ([]*Book, error)

	// Count returns the number of stored books.
	Count(ctx context.Context) (int64, error)

	// ListByAuthor returns the author's books ordered by id.
	ListByAuthor(ctx context.Context, authorID uint) ([]*Book, error)

	// Search matches term case-insensitively as a substring of title, summary,
	// author first name or author last name, ordered by id. Wildcards in
	// term are literal.
	Search(ctx context.Context, term string) ([]*Book, error)
}
