// Package pagination resolves 1-indexed page requests against a collection
// size. Out-of-range requests clamp: anything below 1 becomes the first page,
// anything past the end becomes the last page, and an empty collection still
// has one (empty) page.
package pagination

// DefaultSize is the catalog listing page size.
const DefaultSize = 3

// Page is a resolved page.
type Page struct {
	Number     int   // 1-indexed, always within [1, TotalPages]
	Size       int   // items per page
	Total      int64 // items in the collection
	TotalPages int   // at least 1
}

// Resolve clamps number into the valid range for a collection of total items.
// A non-positive size falls back to DefaultSize.
func Resolve(total int64, size, number int) Page {
	if size <= 0 {
		size = DefaultSize
	}
	if total < 0 {
		total = 0
	}

	totalPages := int(total / int64(size))
	if total%int64(size) != 0 {
		totalPages++
	}
	if totalPages == 0 {
		totalPages = 1
	}

	if number < 1 {
		number = 1
	}
	if number > totalPages {
		number = totalPages
	}

	return Page{
		Number:     number,
		Size:       size,
		Total:      total,
		TotalPages: totalPages,
	}
}

// Offset is the index of the first item on the page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// Limit is the page size.
func (p Page) Limit() int {
	return p.Size
}

func (p Page) HasNext() bool {
	return p.Number < p.TotalPages
}

func (p Page) HasPrevious() bool {
	return p.Number > 1
}

// Slice returns the page's window over an in-memory sequence.
func Slice[T any](items []T, p Page) []T {
	start := p.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + p.Size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
