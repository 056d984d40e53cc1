package repository

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
)

// Page represents a simple limit/offset window for listing operations.
type Page struct {
	Limit  int
	Offset int
}

// Window returns a usable limit and offset: a non-positive limit becomes the
// default, large limits are capped and negative offsets start at zero.
func (p Page) Window() (limit, offset int) {
	limit, offset = p.Limit, p.Offset
	switch {
	case limit <= 0:
		limit = defaultPageLimit
	case limit > maxPageLimit:
		limit = maxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// PageResult carries a slice of items and the total count matching the query.
// I return the total so clients can compute pagination without an extra round trip.
type PageResult[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}
