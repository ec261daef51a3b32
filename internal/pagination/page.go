// Package pagination carries page descriptors between the service layer
// and the HTTP handlers and renders the list-navigation response headers.
package pagination

// Page is one page of a larger result set. Number is zero-based.
type Page[T any] struct {
	Items         []T
	Number        int
	Size          int
	TotalElements int64
	TotalPages    int
}

// NewPage builds a page descriptor. TotalPages is derived:
// ceil(totalElements/size), and zero exactly when totalElements is zero.
func NewPage[T any](items []T, number, size int, totalElements int64) *Page[T] {
	totalPages := 0
	if size > 0 {
		totalPages = int((totalElements + int64(size) - 1) / int64(size))
	}

	return &Page[T]{
		Items:         items,
		Number:        number,
		Size:          size,
		TotalElements: totalElements,
		TotalPages:    totalPages,
	}
}

// HasPrevious reports whether a previous page exists.
func (p *Page[T]) HasPrevious() bool {
	return p.Number > 0
}

// HasNext reports whether a next page exists.
func (p *Page[T]) HasNext() bool {
	return p.Number+1 < p.TotalPages
}
