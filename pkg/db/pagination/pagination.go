package pagination

import "math"

// Pagination is the 1-based page request shared by every list endpoint.
type Pagination struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

// Meta describes the page returned to the client.
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

// Offset returns the number of rows to skip for a 1-based page. It saturates
// at math.MaxInt64 instead of wrapping for very large pages.
func (p Pagination) Offset() int64 {
	page := int64(p.Page)
	if page < 1 {
		page = 1
	}
	limit := int64(p.Limit)
	if limit < 1 {
		limit = 1
	}
	if page-1 > math.MaxInt64/limit {
		return math.MaxInt64
	}
	return (page - 1) * limit
}

// Window returns the [start, end) bounds of the page inside a result set of
// size n. An offset past the end yields an empty window.
func (p Pagination) Window(n int) (int, int) {
	offset := p.Offset()
	if offset >= int64(n) {
		return n, n
	}
	start := int(offset)
	end := n
	if p.Limit > 0 && p.Limit < n-start {
		end = start + p.Limit
	}
	return start, end
}

// Skip returns the offset of the page inside a result set of size total, or
// false when the page starts at or past the end.
func (p Pagination) Skip(total int64) (int64, bool) {
	offset := p.Offset()
	if offset >= total {
		return 0, false
	}
	return offset, true
}

// TotalPages is ceil(total/limit) with a floor of one page.
func TotalPages(total int64, limit int) int {
	if limit < 1 || total <= 0 {
		return 1
	}
	pages := (total + int64(limit) - 1) / int64(limit)
	if pages < 1 {
		return 1
	}
	return int(pages)
}

// BuildMeta assembles the page metadata for a result.
func BuildMeta(total int64, p Pagination) Meta {
	return Meta{
		Total:      total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: TotalPages(total, p.Limit),
	}
}
