package domain

import "math"

// SortField enumerates sortable user fields.
type SortField string

const (
	SortByFirstName   SortField = "firstName"
	SortByLastName    SortField = "lastName"
	SortByEmail       SortField = "email"
	SortByDateCreated SortField = "dateCreated"
)

// SortOrder is the listing direction.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

const (
	DefaultPage      = 1
	DefaultPageSize  = 10
	MaxPageSize      = 100
	DefaultSortBy    = SortByDateCreated
	DefaultSortOrder = SortDesc
)

// QueryShape is the normalized set of listing parameters.
type QueryShape struct {
	Page      int
	PageSize  int
	Search    string
	IsActive  *bool
	SortBy    SortField
	SortOrder SortOrder
}

// ActiveFilter is the comparable form of QueryShape.IsActive.
type ActiveFilter int8

const (
	ActiveAny ActiveFilter = iota
	ActiveOnly
	InactiveOnly
)

// ShapeKey is a comparable projection of QueryShape used for cache lookups.
type ShapeKey struct {
	Page      int
	PageSize  int
	Search    string
	Active    ActiveFilter
	SortBy    SortField
	SortOrder SortOrder
}

// Key returns the structural identity of the shape.
func (q QueryShape) Key() ShapeKey {
	active := ActiveAny
	if q.IsActive != nil {
		if *q.IsActive {
			active = ActiveOnly
		} else {
			active = InactiveOnly
		}
	}
	return ShapeKey{
		Page:      q.Page,
		PageSize:  q.PageSize,
		Search:    q.Search,
		Active:    active,
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
	}
}

// DefaultQueryShape returns the listing defaults.
func DefaultQueryShape() QueryShape {
	return QueryShape{
		Page:      DefaultPage,
		PageSize:  DefaultPageSize,
		SortBy:    DefaultSortBy,
		SortOrder: DefaultSortOrder,
	}
}

// PagedResult is one page of a filtered, sorted listing.
type PagedResult struct {
	Data       []User
	TotalCount int
	Page       int
	PageSize   int
}

func (p PagedResult) TotalPages() int {
	if p.PageSize <= 0 {
		return 0
	}
	return int(math.Ceil(float64(p.TotalCount) / float64(p.PageSize)))
}

func (p PagedResult) HasNextPage() bool {
	return p.Page < p.TotalPages()
}

func (p PagedResult) HasPreviousPage() bool {
	return p.Page > 1
}

// Clone returns a copy whose Data slice is not shared with p.
func (p PagedResult) Clone() PagedResult {
	out := p
	out.Data = make([]User, len(p.Data))
	copy(out.Data, p.Data)
	return out
}
