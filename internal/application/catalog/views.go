package catalog

import (
	"time"

	"github.com/xiebiao/library/internal/domain/catalog"
	"github.com/xiebiao/library/internal/domain/loan"
	"github.com/xiebiao/library/internal/domain/review"
)

type GenreView struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type AuthorView struct {
	ID          uint   `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description,omitempty"`
}

// BookItem is a book in listings and search results.
type BookItem struct {
	ID           uint        `json:"id"`
	Title        string      `json:"title"`
	ISBN         string      `json:"isbn"`
	Author       *AuthorView `json:"author"`
	DisplayGenre string      `json:"display_genre"`
	CoverURL     string      `json:"cover_url,omitempty"`
}

// InstanceItem is a copy as shown on a book page.
type InstanceItem struct {
	ID      uint       `json:"id"`
	UUID    string     `json:"uuid"`
	Status  string     `json:"status"`
	DueBack *time.Time `json:"due_back,omitempty"`
}

type ReviewView struct {
	ID          uint      `json:"id"`
	BookID      *uint     `json:"book_id"`
	ReviewerID  *uint     `json:"reviewer_id"`
	Reviewer    string    `json:"reviewer"`
	Content     string    `json:"content"`
	DateCreated time.Time `json:"date_created"`
}

// BookDetail is a book with its genres, copies and reviews.
type BookDetail struct {
	BookItem
	Summary   string         `json:"summary"`
	Genres    []GenreView    `json:"genres"`
	Instances []InstanceItem `json:"instances"`
	Reviews   []ReviewView   `json:"reviews"`
}

// AuthorDetail is an author with their books.
type AuthorDetail struct {
	AuthorView
	Books []BookItem `json:"books"`
}

func toGenreView(g *catalog.Genre) GenreView {
	return GenreView{ID: g.ID, Name: g.Name}
}

func toGenreViews(genres []*catalog.Genre) []GenreView {
	out := make([]GenreView, len(genres))
	for i, g := range genres {
		out[i] = toGenreView(g)
	}
	return out
}

func toAuthorView(a *catalog.Author) AuthorView {
	return AuthorView{
		ID:          a.ID,
		FirstName:   a.FirstName,
		LastName:    a.LastName,
		DisplayName: a.DisplayName(),
		Description: a.Description,
	}
}

func toAuthorViews(authors []*catalog.Author) []AuthorView {
	out := make([]AuthorView, len(authors))
	for i, a := range authors {
		out[i] = toAuthorView(a)
	}
	return out
}

func toBookItem(b *catalog.Book) BookItem {
	item := BookItem{
		ID:           b.ID,
		Title:        b.Title,
		ISBN:         b.ISBN,
		DisplayGenre: b.DisplayGenre(),
		CoverURL:     b.CoverURL,
	}
	if b.Author != nil {
		a := toAuthorView(b.Author)
		a.Description = ""
		item.Author = &a
	}
	return item
}

func toBookItems(books []*catalog.Book) []BookItem {
	out := make([]BookItem, len(books))
	for i, b := range books {
		out[i] = toBookItem(b)
	}
	return out
}

func toInstanceItems(instances []*loan.Instance) []InstanceItem {
	out := make([]InstanceItem, len(instances))
	for i, inst := range instances {
		out[i] = InstanceItem{
			ID:      inst.ID,
			UUID:    inst.UUID,
			Status:  inst.Status.String(),
			DueBack: inst.DueBack,
		}
	}
	return out
}

func toReviewView(r *review.Review) ReviewView {
	return ReviewView{
		ID:          r.ID,
		BookID:      r.BookID,
		ReviewerID:  r.ReviewerID,
		Reviewer:    r.ReviewerName,
		Content:     r.Content,
		DateCreated: r.CreatedAt,
	}
}

func toReviewViews(reviews []*review.Review) []ReviewView {
	out := make([]ReviewView, len(reviews))
	for i, r := range reviews {
		out[i] = toReviewView(r)
	}
	return out
}
