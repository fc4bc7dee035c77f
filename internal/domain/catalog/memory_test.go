package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// memStore backs the in-memory repositories used by the service tests.
type memStore struct {
	mu      sync.Mutex
	nextID  uint
	genres  map[uint]*Genre
	authors map[uint]*Author
	books   map[uint]*Book
}

func newMemStore() *memStore {
	return &memStore{
		genres:  map[uint]*Genre{},
		authors: map[uint]*Author{},
		books:   map[uint]*Book{},
	}
}

func (m *memStore) id() uint {
	m.nextID++
	return m.nextID
}

type memGenres struct{ *memStore }
type memAuthors struct{ *memStore }
type memBooks struct{ *memStore }

func (r memGenres) Create(_ context.Context, g *Genre) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.genres {
		if existing.Name == g.Name {
			return ErrGenreDuplicate
		}
	}
	g.ID = r.id()
	cp := *g
	r.genres[g.ID] = &cp
	return nil
}

func (r memGenres) FindByID(_ context.Context, id uint) (*Genre, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.genres[id]
	if !ok {
		return nil, ErrGenreNotFound
	}
	cp := *g
	return &cp, nil
}

func (r memGenres) FindByIDs(_ context.Context, ids []uint) ([]*Genre, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*Genre{}
	for _, id := range ids {
		if g, ok := r.genres[id]; ok {
			cp := *g
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memGenres) Update(_ context.Context, g *Genre) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.genres[g.ID]; !ok {
		return ErrGenreNotFound
	}
	cp := *g
	r.genres[g.ID] = &cp
	return nil
}

func (r memGenres) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.genres[id]; !ok {
		return ErrGenreNotFound
	}
	delete(r.genres, id)
	return nil
}

func (r memGenres) List(_ context.Context) ([]*Genre, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*Genre{}
	for _, g := range r.genres {
		cp := *g
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memAuthors) Create(_ context.Context, a *Author) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.ID = r.id()
	cp := *a
	r.authors[a.ID] = &cp
	return nil
}

func (r memAuthors) FindByID(_ context.Context, id uint) (*Author, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.authors[id]
	if !ok {
		return nil, ErrAuthorNotFound
	}
	cp := *a
	return &cp, nil
}

func (r memAuthors) Exists(_ context.Context, id uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.authors[id]
	return ok, nil
}

func (r memAuthors) Update(_ context.Context, a *Author) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *a
	r.authors[a.ID] = &cp
	return nil
}

func (r memAuthors) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.authors[id]; !ok {
		return ErrAuthorNotFound
	}
	delete(r.authors, id)
	for _, b := range r.books {
		if b.AuthorID != nil && *b.AuthorID == id {
			b.AuthorID = nil
		}
	}
	return nil
}

func (r memAuthors) sorted() []*Author {
	out := []*Author{}
	for _, a := range r.authors {
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r memAuthors) List(_ context.Context, p ListParams) ([]*Author, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return window(r.sorted(), p), nil
}

func (r memAuthors) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.authors)), nil
}

func (r memAuthors) Search(_ context.Context, term string) ([]*Author, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*Author{}
	for _, a := range r.sorted() {
		if containsFold(a.FirstName, term) || containsFold(a.LastName, term) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r memBooks) load(b *Book) *Book {
	cp := *b
	cp.Author = nil
	if b.AuthorID != nil {
		if a, ok := r.authors[*b.AuthorID]; ok {
			ac := *a
			cp.Author = &ac
		}
	}
	return &cp
}

func (r memBooks) Create(_ context.Context, b *Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b.ID = r.id()
	cp := *b
	r.books[b.ID] = &cp
	return nil
}

func (r memBooks) FindByID(_ context.Context, id uint) (*Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.books[id]
	if !ok {
		return nil, ErrBookNotFound
	}
	return r.load(b), nil
}

func (r memBooks) Exists(_ context.Context, id uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.books[id]
	return ok, nil
}

func (r memBooks) Update(_ context.Context, b *Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *b
	r.books[b.ID] = &cp
	return nil
}

func (r memBooks) UpdateCover(_ context.Context, id uint, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.books[id]
	if !ok {
		return ErrBookNotFound
	}
	b.CoverURL = url
	return nil
}

func (r memBooks) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.books[id]; !ok {
		return ErrBookNotFound
	}
	delete(r.books, id)
	return nil
}

func (r memBooks) sorted() []*Book {
	out := []*Book{}
	for _, b := range r.books {
		out = append(out, r.load(b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r memBooks) List(_ context.Context, p ListParams) ([]*Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return window(r.sorted(), p), nil
}

func (r memBooks) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.books)), nil
}

func (r memBooks) ListByAuthor(_ context.Context, authorID uint) ([]*Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*Book{}
	for _, b := range r.sorted() {
		if b.AuthorID != nil && *b.AuthorID == authorID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r memBooks) Search(_ context.Context, term string) ([]*Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*Book{}
	for _, b := range r.sorted() {
		match := containsFold(b.Title, term) || containsFold(b.Summary, term)
		if b.Author != nil {
			match = match || containsFold(b.Author.FirstName, term) || containsFold(b.Author.LastName, term)
		}
		if match {
			out = append(out, b)
		}
	}
	return out, nil
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func window[T any](items []T, p ListParams) []T {
	start := p.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + p.PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func newTestService() (Service, *memStore) {
	store := newMemStore()
	return NewService(memGenres{store}, memAuthors{store}, memBooks{store}, 3), store
}
