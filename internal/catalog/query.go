// Package catalog holds the rules of the books page: how query parameters
// are normalized, which form actions exist and how they are validated, and
// the service that combines the book store with the assistant.
package catalog

import (
	"net/url"
	"strconv"
	"strings"
)

// PageSize is the number of books shown per page.
const PageSize = 10

// SearchField selects which column the search term is matched against.
type SearchField string

const (
	SearchAll          SearchField = "all"
	SearchTitle        SearchField = "title"
	SearchAuthor       SearchField = "author"
	SearchIsCheckedOut SearchField = "is_checked_out"
	SearchCreatedAt    SearchField = "created_at"
)

// SortField is a column the book list may be ordered by.
type SortField string

const (
	SortTitle        SortField = "title"
	SortAuthor       SortField = "author"
	SortCreatedAt    SortField = "created_at"
	SortIsCheckedOut SortField = "is_checked_out"
)

// SortDirection is ascending or descending order.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Defaults applied when a parameter is missing or not recognised.
const (
	DefaultSearchField = SearchAll
	DefaultSortField   = SortCreatedAt
	DefaultSortDir     = SortDesc
)

// Option is a value/label pair rendered in a select box.
type Option struct {
	Value string
	Label string
}

// SearchFieldOptions lists the fields in the "Search In" select.
var SearchFieldOptions = []Option{
	{Value: string(SearchAll), Label: "All Fields"},
	{Value: string(SearchTitle), Label: "Title"},
	{Value: string(SearchAuthor), Label: "Author"},
	{Value: string(SearchIsCheckedOut), Label: "Status"},
	{Value: string(SearchCreatedAt), Label: "Added On"},
}

// SortOptions lists the fields in the "Sort By" select.
var SortOptions = []Option{
	{Value: string(SortTitle), Label: "Title"},
	{Value: string(SortAuthor), Label: "Author"},
	{Value: string(SortCreatedAt), Label: "Added On"},
	{Value: string(SortIsCheckedOut), Label: "Status"},
}

// DirectionOptions lists the entries of the "Direction" select.
var DirectionOptions = []Option{
	{Value: string(SortAsc), Label: "Ascending"},
	{Value: string(SortDesc), Label: "Descending"},
}

// ParseSearchField returns the matching field or DefaultSearchField.
func ParseSearchField(s string) SearchField {
	switch f := SearchField(strings.ToLower(strings.TrimSpace(s))); f {
	case SearchAll, SearchTitle, SearchAuthor, SearchIsCheckedOut, SearchCreatedAt:
		return f
	}
	return DefaultSearchField
}

// ParseSortField returns the matching field or DefaultSortField.
func ParseSortField(s string) SortField {
	switch f := SortField(strings.ToLower(strings.TrimSpace(s))); f {
	case SortTitle, SortAuthor, SortCreatedAt, SortIsCheckedOut:
		return f
	}
	return DefaultSortField
}

// ParseSortDirection returns the matching direction or DefaultSortDir.
func ParseSortDirection(s string) SortDirection {
	switch d := SortDirection(strings.ToLower(strings.TrimSpace(s))); d {
	case SortAsc, SortDesc:
		return d
	}
	return DefaultSortDir
}

// Filters is the normalized search/sort state echoed back to the page.
type Filters struct {
	Search string        `json:"search"`
	Field  SearchField   `json:"field"`
	Sort   SortField     `json:"sort"`
	Dir    SortDirection `json:"dir"`
}

// DefaultFilters is what the page shows when nothing was requested.
func DefaultFilters() Filters {
	return Filters{
		Field: DefaultSearchField,
		Sort:  DefaultSortField,
		Dir:   DefaultSortDir,
	}
}

// ListQuery is a fully normalized request for one page of books.
type ListQuery struct {
	Filters
	Page     int
	AIPrompt string
}

// ParseListQuery normalizes raw query parameters. It never fails.
func ParseListQuery(values url.Values) ListQuery {
	page, err := strconv.Atoi(strings.TrimSpace(values.Get("page")))
	if err != nil || page < 1 {
		page = 1
	}

	return ListQuery{
		Filters: Filters{
			Search: strings.TrimSpace(values.Get("search")),
			Field:  ParseSearchField(values.Get("field")),
			Sort:   ParseSortField(values.Get("sort")),
			Dir:    ParseSortDirection(values.Get("dir")),
		},
		Page:     page,
		AIPrompt: strings.TrimSpace(values.Get("ai_prompt")),
	}
}

// Offset is the number of rows skipped before this page.
func (q ListQuery) Offset() int {
	return (q.Page - 1) * PageSize
}

// Limit is the number of rows on a page.
func (q ListQuery) Limit() int {
	return PageSize
}

// HasSearch reports whether a search filter applies.
func (q ListQuery) HasSearch() bool {
	return q.Search != ""
}

// Values encodes the query back into URL parameters. Empty search and
// prompt are omitted.
func (q ListQuery) Values() url.Values {
	v := url.Values{}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	v.Set("field", string(q.Field))
	v.Set("sort", string(q.Sort))
	v.Set("dir", string(q.Dir))
	v.Set("page", strconv.Itoa(q.Page))
	if q.AIPrompt != "" {
		v.Set("ai_prompt", q.AIPrompt)
	}
	return v
}

// PageURL returns a relative link to page n keeping every other parameter.
func (q ListQuery) PageURL(n int) string {
	v := q.Values()
	v.Set("page", strconv.Itoa(n))
	return "?" + v.Encode()
}

// Pagination describes where the current page sits in the result set.
type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalBooks  int64 `json:"totalBooks"`
}

// NewPagination derives the page count from the total number of matches.
func NewPagination(page int, total int64) Pagination {
	if page < 1 {
		page = 1
	}
	if total < 0 {
		total = 0
	}
	return Pagination{
		CurrentPage: page,
		TotalPages:  int((total + PageSize - 1) / PageSize),
		TotalBooks:  total,
	}
}

func (p Pagination) HasPrevious() bool {
	return p.CurrentPage > 1
}

func (p Pagination) HasNext() bool {
	return p.CurrentPage < p.TotalPages
}
