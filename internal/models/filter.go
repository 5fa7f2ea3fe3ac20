package models

import "time"

// FilterAll is the sentinel select value meaning "no constraint".
const FilterAll = "All"

// FilterState holds every supported list predicate. Empty string fields and
// nil bounds impose no constraint.
type FilterState struct {
	// Name matches as a case-insensitive substring.
	Name string `json:"name,omitempty"`
	// Status, Role and Location match exactly unless empty or FilterAll.
	Status   string `json:"status,omitempty"`
	Role     string `json:"role,omitempty"`
	Location string `json:"location,omitempty"`
	// CreatedFrom and CreatedTo are inclusive.
	CreatedFrom *time.Time `json:"createdFrom,omitempty"`
	CreatedTo   *time.Time `json:"createdTo,omitempty"`
}

// IsSet reports whether an equality predicate value constrains anything.
func IsSet(v string) bool {
	return v != "" && v != FilterAll
}

// SortField names a sortable record attribute.
type SortField string

const (
	SortByID        SortField = "id"
	SortByName      SortField = "name"
	SortByRole      SortField = "role"
	SortByStatus    SortField = "status"
	SortByLocation  SortField = "location"
	SortByCreatedAt SortField = "createdAt"
)

// SortFields lists the sortable attributes in column order.
var SortFields = []SortField{SortByID, SortByName, SortByRole, SortByStatus, SortByLocation, SortByCreatedAt}

// Valid reports whether f is sortable.
func (f SortField) Valid() bool {
	for _, s := range SortFields {
		if s == f {
			return true
		}
	}
	return false
}

// SortOrder is ascending or descending.
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// SortState is the active single-key ordering.
type SortState struct {
	Field SortField `json:"field"`
	Order SortOrder `json:"order"`
}

// DefaultSort orders by name ascending.
var DefaultSort = SortState{Field: SortByName, Order: OrderAsc}

// Normalize replaces unknown fields or orders with the defaults.
func (s SortState) Normalize() SortState {
	if !s.Field.Valid() {
		s.Field = DefaultSort.Field
	}
	if s.Order != OrderDesc {
		s.Order = OrderAsc
	}
	return s
}

// Next is the state after the user picks field: the same field toggles the
// order, a new field starts ascending.
func (s SortState) Next(field SortField) SortState {
	s = s.Normalize()
	if field == s.Field {
		if s.Order == OrderAsc {
			s.Order = OrderDesc
		} else {
			s.Order = OrderAsc
		}
		return s
	}
	return SortState{Field: field, Order: OrderAsc}.Normalize()
}
