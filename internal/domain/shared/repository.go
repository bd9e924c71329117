package shared

// Filter holds the paging, sorting and free-text options common to list queries.
// A zero Page or PageSize disables paging.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
}

// DefaultFilter returns the first page of 20, newest first
func DefaultFilter() Filter {
	return Filter{Page: 1, PageSize: 20, OrderBy: "created_at", OrderDir: "desc"}
}

// Paged reports whether the filter limits the result set
func (f Filter) Paged() bool {
	return f.Page > 0 && f.PageSize > 0
}

// Offset returns the number of rows to skip for the current page
func (f Filter) Offset() int {
	if !f.Paged() {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}
