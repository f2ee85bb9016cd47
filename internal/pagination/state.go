package pagination

import (
	"errors"
	"math"
)

// Page size defaults and limits.
const (
	DefaultPage          = 1
	DefaultPageSize      = 10
	DefaultUsersPageSize = 15
	MinPage              = 1
	MinPageSize          = 1
	MaxPageSize          = 1000
)

// Validation errors.
var (
	ErrInvalidPage     = errors.New("page must be >= 1")
	ErrInvalidPageSize = errors.New("page-size must be between 1 and 1000")
)

// State is the pagination of one section.
type State struct {
	CurrentPage int `json:"currentPage" yaml:"current_page"`
	PageSize    int `json:"pageSize"    yaml:"page_size"`
	TotalCount  int `json:"totalCount"  yaml:"total_count"`
	TotalPages  int `json:"totalPages"  yaml:"total_pages"`
}

// NewState returns a first-page state with the given page size.
func NewState(pageSize int) State {
	return State{CurrentPage: DefaultPage, PageSize: pageSize}
}

// Ready reports whether both page and size are set. Zero values come from
// uninitialised or reset state and must not produce a fetch.
func (s State) Ready() bool {
	return s.CurrentPage > 0 && s.PageSize > 0
}

// Validate checks the page and size bounds.
func (s State) Validate() error {
	if s.CurrentPage < MinPage {
		return ErrInvalidPage
	}
	if s.PageSize < MinPageSize || s.PageSize > MaxPageSize {
		return ErrInvalidPageSize
	}
	return nil
}

// Request returns the fetch parameters for the current page.
func (s State) Request() Request {
	return Request{Page: s.CurrentPage, PageSize: s.PageSize}
}

// HasPrevious reports whether a page precedes the current one.
func (s State) HasPrevious() bool {
	return s.CurrentPage > 1
}

// HasNext reports whether a page follows the current one.
func (s State) HasNext() bool {
	return s.CurrentPage < s.TotalPages
}

// Request is what a section fetch sends to the service.
type Request struct {
	Page     int
	PageSize int
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	CurrentPage *int
	PageSize    *int
}

// ToPage returns a patch that moves to page n.
func ToPage(n int) Patch {
	return Patch{CurrentPage: &n}
}

// WithSize returns a patch that changes the page size to n.
func WithSize(n int) Patch {
	return Patch{PageSize: &n}
}

// Meta is the pagination reported by the service with a page of results.
type Meta struct {
	CurrentPage int
	PageSize    int
	TotalCount  int
	TotalPages  int
}

// NewMeta builds Meta from a response. When the service omits total pages it
// is derived from the count and size.
func NewMeta(currentPage, pageSize, totalCount, totalPages int) Meta {
	if totalPages == 0 && pageSize > 0 {
		totalPages = CalculateTotalPages(totalCount, pageSize)
	}
	return Meta{
		CurrentPage: currentPage,
		PageSize:    pageSize,
		TotalCount:  totalCount,
		TotalPages:  totalPages,
	}
}

// CalculateTotalPages returns the number of pages needed for total items.
func CalculateTotalPages(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(pageSize)))
}
