package listutil

import (
	"net/url"
	"slices"
	"strconv"
)

// DefaultPerPage is the rows-per-page default for history tables.
const DefaultPerPage = 20

// PerPageOptions are the accepted per_page values; anything else falls
// back to the default.
var PerPageOptions = []int{10, 20, 50}

// PageParams carries pagination parameters parsed from a request.
type PageParams struct {
	Page    int // 1-indexed
	PerPage int
}

// SortParams carries sorting parameters parsed from a request.
type SortParams struct {
	Sort string // column key, "" when unsorted
	Dir  string // "asc" or "desc"
}

// ParsePageParams extracts page and per_page from query values, applying
// defaults for missing or out-of-range input.
func ParsePageParams(q url.Values) PageParams {
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	if !slices.Contains(PerPageOptions, perPage) {
		perPage = DefaultPerPage
	}
	return PageParams{Page: page, PerPage: perPage}
}

// ParseSortParams extracts sort and dir. The sort column is checked
// against an allow-list so query input never reaches SQL identifiers.
// POST: Dir is always "asc" or "desc"
func ParseSortParams(q url.Values, allowedColumns []string) SortParams {
	sort := q.Get("sort")
	if !slices.Contains(allowedColumns, sort) {
		sort = ""
	}
	dir := q.Get("dir")
	if dir != "asc" && dir != "desc" {
		dir = "desc"
	}
	return SortParams{Sort: sort, Dir: dir}
}

// PageInfo carries pagination metadata for rendering.
type PageInfo struct {
	Page       int
	PerPage    int
	Total      int
	TotalPages int
}

// NewPageInfo computes pagination metadata, clamping the page into range.
// PRE: total >= 0
func NewPageInfo(page, perPage, total int) PageInfo {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	totalPages := max((total+perPage-1)/perPage, 1)
	page = min(max(page, 1), totalPages)
	return PageInfo{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}
}

// Offset returns the SQL OFFSET for the current page.
func (p PageInfo) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// StartRow returns the 1-indexed first row on the page, 0 when empty.
func (p PageInfo) StartRow() int {
	if p.Total == 0 {
		return 0
	}
	return p.Offset() + 1
}

// EndRow returns the 1-indexed last row on the page.
func (p PageInfo) EndRow() int {
	return min(p.Offset()+p.PerPage, p.Total)
}

// PageNumbers returns up to 5 page numbers centered on the current page,
// for rendering pagination buttons.
func (p PageInfo) PageNumbers() []int {
	const maxButtons = 5
	start := max(p.Page-maxButtons/2, 1)
	end := start + maxButtons - 1
	if end > p.TotalPages {
		end = p.TotalPages
		start = max(end-maxButtons+1, 1)
	}
	pages := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		pages = append(pages, i)
	}
	return pages
}

// ShowPagination reports whether the result set spans multiple pages.
func (p PageInfo) ShowPagination() bool {
	return p.Total > p.PerPage
}
