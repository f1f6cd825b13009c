package domain

// DefaultPageSize is used when callers do not pick a page size.
const DefaultPageSize = 10

// Entity is anything a collection container can address by identifier.
type Entity interface {
	EntityID() int64
}

// PageRequest selects a page of a listing.
type PageRequest struct {
	Page int
	Size int
}

// DefaultPage is the first page with the default size.
func DefaultPage() PageRequest {
	return PageRequest{Page: 0, Size: DefaultPageSize}
}

// Normalize applies defaults to out-of-range values.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 0 {
		p.Page = 0
	}
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	return p
}

// Page is the paginated envelope the backend returns.
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalPages    int   `json:"totalPages"`
	TotalElements int64 `json:"totalElements"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
}

// PageOf wraps an unpaginated listing.
func PageOf[T any](items []T) Page[T] {
	pages := 0
	if len(items) > 0 {
		pages = 1
	}
	return Page[T]{
		Content:       items,
		TotalPages:    pages,
		TotalElements: int64(len(items)),
		Size:          len(items),
	}
}
