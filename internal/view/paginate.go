package view

// PageSizes are the selectable page sizes
var PageSizes = []int{10, 25, 50, 100}

// DefaultPageSize is used when none is given
const DefaultPageSize = 25

// Page describes one slice of a paginated listing
type Page struct {
	Number     int // 1-based, after reset
	TotalPages int
	TotalItems int
	Size       int
	Start      int // inclusive index
	End        int // exclusive index
}

// HasPrev reports whether a previous page exists
func (p Page) HasPrev() bool { return p.Number > 1 }

// HasNext reports whether a next page exists
func (p Page) HasNext() bool { return p.Number < p.TotalPages }

// Paginate computes the window for a 1-based page.
// A page past the end, or below 1, resets to the first page.
func Paginate(total, size, page int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	if total < 0 {
		total = 0
	}

	pages := (total + size - 1) / size
	if page < 1 || page > pages {
		page = 1
	}

	start := (page - 1) * size
	end := min(start+size, total)
	if start > end {
		start = end
	}

	return Page{
		Number:     page,
		TotalPages: pages,
		TotalItems: total,
		Size:       size,
		Start:      start,
		End:        end,
	}
}

// Slice returns the rows inside the page window
func Slice[T any](rows []T, p Page) []T {
	if p.Start >= len(rows) {
		return rows[:0]
	}
	return rows[p.Start:min(p.End, len(rows))]
}
