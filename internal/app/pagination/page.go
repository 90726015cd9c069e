// Package pagination computes page windows for list views.
package pagination

const (
	// DefaultSize is used when a caller asks for a non-positive page size.
	DefaultSize = 5
	// MaxSize caps caller-supplied page sizes.
	MaxSize = 100
	// WindowSize is how many page links are shown at once.
	WindowSize = 5
)

// Page describes one page of a filtered list.
type Page struct {
	Current     int
	Size        int
	TotalCount  int
	TotalPages  int
	HasPrevious bool
	HasNext     bool
	Range       []int
}

// New computes the page for the requested page number. The requested page is
// clamped to [1, TotalPages]; an empty list still reports page 1.
func New(requested, totalCount, size int) Page {
	if size <= 0 {
		size = DefaultSize
	}
	if size > MaxSize {
		size = MaxSize
	}
	if totalCount < 0 {
		totalCount = 0
	}

	totalPages := (totalCount + size - 1) / size

	current := requested
	if current > totalPages {
		current = totalPages
	}
	if current < 1 {
		current = 1
	}

	p := Page{
		Current:     current,
		Size:        size,
		TotalCount:  totalCount,
		TotalPages:  totalPages,
		HasPrevious: current > 1,
		HasNext:     current < totalPages,
	}

	if totalPages > 0 {
		start := (current-1)/WindowSize*WindowSize + 1
		end := start + WindowSize - 1
		if end > totalPages {
			end = totalPages
		}
		p.Range = make([]int, 0, end-start+1)
		for n := start; n <= end; n++ {
			p.Range = append(p.Range, n)
		}
	}
	return p
}

// Offset is the number of rows to skip for the current page.
func (p Page) Offset() int {
	return (p.Current - 1) * p.Size
}

// Limit is the number of rows on a page.
func (p Page) Limit() int {
	return p.Size
}

// PreviousPage returns the page before Current, never below 1.
func (p Page) PreviousPage() int {
	if p.Current <= 1 {
		return 1
	}
	return p.Current - 1
}

// NextPage returns the page after Current, never beyond TotalPages.
func (p Page) NextPage() int {
	if p.Current >= p.TotalPages {
		return p.Current
	}
	return p.Current + 1
}

// Empty reports whether the list has no rows at all.
func (p Page) Empty() bool {
	return p.TotalCount == 0
}
