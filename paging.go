package marketd

import (
	"fmt"
	"math"

	"github.com/marketd/marketd/kit/platform/errors"
)

const (
	// DefaultPage is the page used when the caller does not supply one.
	DefaultPage = 1

	// DefaultPageSize is the page size used when the caller does not supply one.
	DefaultPageSize = 10

	// MaxPageSize is the largest page size a caller may request.
	MaxPageSize = 100

	// DefaultSortField orders listings by creation time unless the caller
	// chooses another sortable field.
	DefaultSortField = "created_at"
)

var (
	// ErrPageTooSmall is returned for page values below 1.
	ErrPageTooSmall = &errors.Error{
		Code: errors.EInvalid,
		Msg:  "page must be no less than 1",
	}

	// ErrPageSizeTooSmall is returned for limit values below 1. Out-of-range
	// limits are rejected rather than clamped so client bugs stay visible.
	ErrPageSizeTooSmall = &errors.Error{
		Code: errors.EInvalid,
		Msg:  "limit must be no less than 1",
	}

	// ErrPageSizeTooLarge is returned for limit values above MaxPageSize.
	ErrPageSizeTooLarge = &errors.Error{
		Code: errors.EInvalid,
		Msg:  fmt.Sprintf("limit must be no greater than %d", MaxPageSize),
	}
)

// listingSortFields is the allow-list of fields a caller may sort by. Sorting
// is never performed on arbitrary client-chosen columns.
var listingSortFields = map[string]bool{
	"created_at": true,
	"name":       true,
	"price":      true,
}

// ErrInvalidSortBy returns an error for a sort field outside the allow-list.
func ErrInvalidSortBy(field string) *errors.Error {
	return &errors.Error{
		Code: errors.EInvalid,
		Msg:  fmt.Sprintf("cannot sort by field %q", field),
	}
}

// FindOptions represents options passed to all find methods with multiple
// results: a pagination window plus an ordering over the full result set.
type FindOptions struct {
	Page       int
	Limit      int
	SortBy     string
	Descending bool
}

// DefaultFindOptions returns the options used when a caller supplies none:
// the first page of ten results, newest first.
func DefaultFindOptions() FindOptions {
	return FindOptions{
		Page:       DefaultPage,
		Limit:      DefaultPageSize,
		SortBy:     DefaultSortField,
		Descending: true,
	}
}

// Validate rejects windows and orderings outside the allowed ranges.
func (o FindOptions) Validate() error {
	if o.Page < 1 {
		return ErrPageTooSmall
	}
	if o.Limit < 1 {
		return ErrPageSizeTooSmall
	}
	if o.Limit > MaxPageSize {
		return ErrPageSizeTooLarge
	}
	if !listingSortFields[o.SortBy] {
		return ErrInvalidSortBy(o.SortBy)
	}
	return nil
}

// Offset returns the number of rows preceding the requested window. A window
// whose offset does not fit in an int lies past the end of any result set, so
// the offset saturates instead of wrapping around.
func (o FindOptions) Offset() int {
	if o.Limit > 0 && o.Page-1 > math.MaxInt/o.Limit {
		return math.MaxInt
	}
	return (o.Page - 1) * o.Limit
}

// Pagination describes the window a page of results was cut from.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewPagination computes the pagination envelope for a result window.
// TotalPages is the ceiling of total divided by the page size.
func NewPagination(opts FindOptions, total int) Pagination {
	return Pagination{
		Page:       opts.Page,
		Limit:      opts.Limit,
		Total:      total,
		TotalPages: (total + opts.Limit - 1) / opts.Limit,
	}
}

// ListingPage is one window of the full ordered result set, together with
// the pagination math describing that window.
type ListingPage struct {
	Data       []*Listing `json:"data"`
	Pagination Pagination `json:"pagination"`
}
