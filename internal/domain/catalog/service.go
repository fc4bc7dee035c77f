// Package catalog holds genres, authors and books, their validation rules
// and the catalog search.
package catalog

import (
	"context"
	"strings"

	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/pagination"
)

// BookPage is one page of books.
type BookPage struct {
	Books []*Book
	Page  pagination.Page
}

// AuthorPage is one page of authors.
type AuthorPage struct {
	Authors []*Author
	Page    pagination.Page
}

// SearchResult holds both halves of a catalog search.
type SearchResult struct {
	Books   []*Book
	Authors []*Author
}

// Service is the catalog store and query engine for genres, authors and books.
// It validates input and references; access checks belong to the caller.
type Service interface {
	// CreateGenre trims and validates the name.
	// Rules:
	// - name is required, at most MaxGenreName characters
	// - name is unique (ErrGenreDuplicate)
	CreateGenre(ctx context.Context, in GenreInput) (*Genre, error)

	// UpdateGenre renames an existing genre under the same rules.
	UpdateGenre(ctx context.Context, id uint, in GenreInput) (*Genre, error)

	// DeleteGenre unlinks the genre from its books and removes it.
	DeleteGenre(ctx context.Context, id uint) error

	GetGenre(ctx context.Context, id uint) (*Genre, error)
	ListGenres(ctx context.Context) ([]*Genre, error)

	// CreateAuthor trims and validates both names, each at most
	// MaxAuthorName characters.
	CreateAuthor(ctx context.Context, in AuthorInput) (*Author, error)

	// UpdateAuthor overwrites names and description of an existing author.
	UpdateAuthor(ctx context.Context, id uint, in AuthorInput) (*Author, error)

	// DeleteAuthor keeps the author's books with no author.
	DeleteAuthor(ctx context.Context, id uint) error

	GetAuthor(ctx context.Context, id uint) (*Author, error)

	// ListAuthors returns the requested page ordered by id; out-of-range pages clamp.
	ListAuthors(ctx context.Context, page int) (*AuthorPage, error)
	CountAuthors(ctx context.Context) (int64, error)

	// CreateBook validates fields and references, then stores the book.
	// Rules:
	// - title and ISBN are required; lengths count characters
	// - author_id, when set, must name an existing author
	// - every genre id must exist; duplicates collapse
	// The returned book has its author and genres loaded.
	CreateBook(ctx context.Context, in BookInput) (*Book, error)

	// UpdateBook applies the same rules and replaces the genre set.
	UpdateBook(ctx context.Context, id uint, in BookInput) (*Book, error)

	// SetBookCover records an uploaded cover without touching other fields.
	SetBookCover(ctx context.Context, id uint, coverURL string) (*Book, error)

	// DeleteBook keeps the book's copies and reviews with no book.
	DeleteBook(ctx context.Context, id uint) error

	GetBook(ctx context.Context, id uint) (*Book, error)
	BookExists(ctx context.Context, id uint) (bool, error)

	// ListBooks returns the requested page ordered by id; out-of-range pages clamp.
	ListBooks(ctx context.Context, page int) (*BookPage, error)
	BooksByAuthor(ctx context.Context, authorID uint) ([]*Book, error)
	CountBooks(ctx context.Context) (int64, error)

	// Search ORs case-insensitive substring matches over books (title,
	// summary, author names) and authors (names). A blank query matches
	// nothing.
	Search(ctx context.Context, query string) (*SearchResult, error)
}

type service struct {
	genres   GenreRepository
	authors  AuthorRepository
	books    BookRepository
	pageSize int
}

// NewService creates the catalog service. pageSize <= 0 uses pagination.DefaultSize.
func NewService(genres GenreRepository, authors AuthorRepository, books BookRepository, pageSize int) Service {
	if pageSize <= 0 {
		pageSize = pagination.DefaultSize
	}
	return &service{
		genres:   genres,
		authors:  authors,
		books:    books,
		pageSize: pageSize,
	}
}

// =========================================
// Genres
// =========================================

func (s *service) CreateGenre(ctx context.Context, in GenreInput) (*Genre, error) {
	in.normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	genre := NewGenre(in.Name)
	if err := s.genres.Create(ctx, genre); err != nil {
		return nil, err
	}
	return genre, nil
}

func (s *service) UpdateGenre(ctx context.Context, id uint, in GenreInput) (*Genre, error) {
	in.normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	genre, err := s.genres.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	genre.Name = in.Name

	if err := s.genres.Update(ctx, genre); err != nil {
		return nil, err
	}
	return genre, nil
}

func (s *service) DeleteGenre(ctx context.Context, id uint) error {
	return s.genres.Delete(ctx, id)
}

func (s *service) GetGenre(ctx context.Context, id uint) (*Genre, error) {
	return s.genres.FindByID(ctx, id)
}

func (s *service) ListGenres(ctx context.Context) ([]*Genre, error) {
	return s.genres.List(ctx)
}

// =========================================
// Authors
// =========================================

func (s *service) CreateAuthor(ctx context.Context, in AuthorInput) (*Author, error) {
	in.normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	author := NewAuthor(in.FirstName, in.LastName, in.Description)
	if err := s.authors.Create(ctx, author); err != nil {
		return nil, err
	}
	return author, nil
}

func (s *service) UpdateAuthor(ctx context.Context, id uint, in AuthorInput) (*Author, error) {
	in.normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	author, err := s.authors.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	author.Apply(in)

	if err := s.authors.Update(ctx, author); err != nil {
		return nil, err
	}
	return author, nil
}

func (s *service) DeleteAuthor(ctx context.Context, id uint) error {
	return s.authors.Delete(ctx, id)
}

func (s *service) GetAuthor(ctx context.Context, id uint) (*Author, error) {
	return s.authors.FindByID(ctx, id)
}

func (s *service) ListAuthors(ctx context.Context, page int) (*AuthorPage, error) {
	total, err := s.authors.Count(ctx)
	if err != nil {
		return nil, err
	}

	p := pagination.Resolve(total, s.pageSize, page)
	authors, err := s.authors.List(ctx, ListParams{Page: p.Number, PageSize: p.Size})
	if err != nil {
		return nil, err
	}

	return &AuthorPage{Authors: authors, Page: p}, nil
}

func (s *service) CountAuthors(ctx context.Context) (int64, error) {
	return s.authors.Count(ctx)
}

// =========================================
// Books
// =========================================

func (s *service) CreateBook(ctx context.Context, in BookInput) (*Book, error) {
	in.normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	genres, err := s.resolveReferences(ctx, in)
	if err != nil {
		return nil, err
	}

	book := NewBook(in, genres)
	if err := s.books.Create(ctx, book); err != nil {
		return nil, err
	}
	return s.books.FindByID(ctx, book.ID)
}

func (s *service) UpdateBook(ctx context.Context, id uint, in BookInput) (*Book, error) {
	in.normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	book, err := s.books.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	genres, err := s.resolveReferences(ctx, in)
	if err != nil {
		return nil, err
	}

	book.Apply(in, genres)
	if err := s.books.Update(ctx, book); err != nil {
		return nil, err
	}
	return s.books.FindByID(ctx, id)
}

func (s *service) SetBookCover(ctx context.Context, id uint, coverURL string) (*Book, error) {
	if err := s.books.UpdateCover(ctx, id, coverURL); err != nil {
		return nil, err
	}
	return s.books.FindByID(ctx, id)
}

func (s *service) DeleteBook(ctx context.Context, id uint) error {
	return s.books.Delete(ctx, id)
}

func (s *service) GetBook(ctx context.Context, id uint) (*Book, error) {
	return s.books.FindByID(ctx, id)
}

func (s *service) BookExists(ctx context.Context, id uint) (bool, error) {
	return s.books.Exists(ctx, id)
}

func (s *service) ListBooks(ctx context.Context, page int) (*BookPage, error) {
	total, err := s.books.Count(ctx)
	if err != nil {
		return nil, err
	}

	p := pagination.Resolve(total, s.pageSize, page)
	books, err := s.books.List(ctx, ListParams{Page: p.Number, PageSize: p.Size})
	if err != nil {
		return nil, err
	}

	return &BookPage{Books: books, Page: p}, nil
}

func (s *service) BooksByAuthor(ctx context.Context, authorID uint) ([]*Book, error) {
	return s.books.ListByAuthor(ctx, authorID)
}

func (s *service) CountBooks(ctx context.Context) (int64, error) {
	return s.books.Count(ctx)
}

// resolveReferences checks that the author exists and loads the genres.
func (s *service) resolveReferences(ctx context.Context, in BookInput) ([]*Genre, error) {
	if in.AuthorID != nil {
		ok, err := s.authors.Exists(ctx, *in.AuthorID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperrors.FieldError("author_id", "author does not exist")
		}
	}

	ids := uniqueIDs(in.GenreIDs)
	if len(ids) == 0 {
		return []*Genre{}, nil
	}

	genres, err := s.genres.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(genres) != len(ids) {
		return nil, apperrors.FieldError("genre_ids", "one or more genres do not exist")
	}
	return genres, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// =========================================
// Search
// =========================================

func (s *service) Search(ctx context.Context, query string) (*SearchResult, error) {
	term := strings.TrimSpace(query)
	if term == "" {
		return &SearchResult{Books: []*Book{}, Authors: []*Author{}}, nil
	}

	books, err := s.books.Search(ctx, term)
	if err != nil {
		return nil, err
	}
	authors, err := s.authors.Search(ctx, term)
	if err != nil {
		return nil, err
	}

	return &SearchResult{Books: books, Authors: authors}, nil
}
