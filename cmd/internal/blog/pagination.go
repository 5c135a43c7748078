package blog

// PageSize is the fixed number of items per listing page.
const PageSize = 20

// Pagination describes the page actually served. Total is the number
// of pages, not items.
type Pagination struct {
	Page  int
	Total int
}

// pageWindow clamps the requested page against the item count and
// returns the slice window plus the pagination to report. An empty
// collection still yields page 1 of 1.
func pageWindow(totalItems, page int) (offset, limit int, pg Pagination) {
	totalPages := (totalItems + PageSize - 1) / PageSize
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}
	return (page - 1) * PageSize, PageSize, Pagination{Page: page, Total: totalPages}
}
