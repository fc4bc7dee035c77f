package catalog

import (
	"strings"
	"time"
)

// Genre is a book category, e.g. "Science Fiction".
type Genre struct {
	ID   uint
	Name string
}

// NewGenre creates a genre.
func NewGenre(name string) *Genre {
	return &Genre{Name: name}
}

// Author owns zero or more books. Deleting an author keeps the books and
// clears their author reference.
type Author struct {
	ID          uint
	FirstName   string
	LastName    string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewAuthor creates an author.
func NewAuthor(firstName, lastName, description string) *Author {
	now := time.Now()
	return &Author{
		FirstName:   firstName,
		LastName:    lastName,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// DisplayName renders "Last, First".
func (a *Author) DisplayName() string {
	return a.LastName + ", " + a.FirstName
}

// Apply overwrites the author's editable fields.
func (a *Author) Apply(in AuthorInput) {
	a.FirstName = in.FirstName
	a.LastName = in.LastName
	a.Description = in.Description
	a.UpdatedAt = time.Now()
}

// Book is the bibliographic record. Physical copies live in the loan package.
type Book struct {
	ID       uint
	Title    string
	Summary  string
	ISBN     string
	AuthorID *uint
	Author   *Author // loaded on reads, nil when AuthorID is nil
	Genres   []*Genre
	CoverURL string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBook creates a book from validated input. Genres are resolved by the service.
func NewBook(in BookInput, genres []*Genre) *Book {
	now := time.Now()
	return &Book{
		Title:     in.Title,
		Summary:   in.Summary,
		ISBN:      in.ISBN,
		AuthorID:  in.AuthorID,
		Genres:    genres,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Apply overwrites the book's editable fields. The cover is managed separately.
func (b *Book) Apply(in BookInput, genres []*Genre) {
	b.Title = in.Title
	b.Summary = in.Summary
	b.ISBN = in.ISBN
	b.AuthorID = in.AuthorID
	b.Author = nil
	b.Genres = genres
	b.UpdatedAt = time.Now()
}

// displayGenreLimit caps the genres shown in listings.
const displayGenreLimit = 3

// DisplayGenre joins the first three genre names.
func (b *Book) DisplayGenre() string {
	names := make([]string, 0, displayGenreLimit)
	for i, g := range b.Genres {
		if i == displayGenreLimit {
			break
		}
		names = append(names, g.Name)
	}
	return strings.Join(names, ", ")
}

// GenreIDs lists the ids of the book's genres.
func (b *Book) GenreIDs() []uint {
	ids := make([]uint, len(b.Genres))
	for i, g := range b.Genres {
		ids[i] = g.ID
	}
	return ids
}
