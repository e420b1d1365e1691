package listing

// Page is one fixed-size slice of a list.
type Page[T any] struct {
	Items      []T `json:"items"`
	Number     int `json:"page"`
	Size       int `json:"per_page"`
	TotalPages int `json:"total_pages"`
	TotalItems int `json:"total_items"`
}

// HasPrev reports whether a previous page exists.
func (p Page[T]) HasPrev() bool {
	return p.Number > 1
}

// HasNext reports whether a next page exists.
func (p Page[T]) HasNext() bool {
	return p.Number < p.TotalPages
}

// TotalPages returns the number of pages needed for n items. An empty list
// still has one (empty) page. A non-positive size puts everything on one page.
func TotalPages(n, size int) int {
	if n == 0 || size <= 0 {
		return 1
	}
	return (n + size - 1) / size
}

// Paginate returns the 1-based page of items. The page number is clamped
// into [1, TotalPages].
func Paginate[T any](items []T, page, size int) Page[T] {
	total := TotalPages(len(items), size)
	page = min(max(page, 1), total)
	if size <= 0 {
		size = len(items)
	}

	start := min((page-1)*size, len(items))
	end := min(start+size, len(items))
	pageItems := items[start:end:end]
	if pageItems == nil {
		pageItems = []T{}
	}
	return Page[T]{
		Items:      pageItems,
		Number:     page,
		Size:       size,
		TotalPages: total,
		TotalItems: len(items),
	}
}
