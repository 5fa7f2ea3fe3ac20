package roster

import "github.com/noah-isme/teacher-admin/internal/models"

// Query is one list request.
type Query struct {
	Filter models.FilterState
	Sort   models.SortState
	Page   int
	// Fingerprint is the value echoed from the previous response, if any.
	Fingerprint string
}

// View is the rendered list state.
type View struct {
	Page        Page
	Filter      models.FilterState
	Sort        models.SortState
	Fingerprint string
	// Roles and Locations feed the filter dropdowns and are drawn from the
	// unfiltered set.
	Roles     []string
	Locations []string
}

// Apply runs filter, sort and pagination over the full record set.
func Apply(records []models.Teacher, q Query) View {
	sortState := q.Sort.Normalize()
	rows := Sort(Filter(records, q.Filter), sortState)
	return View{
		Page:        Paginate(rows, ResolvePage(q.Page, q.Fingerprint, q.Filter)),
		Filter:      q.Filter,
		Sort:        sortState,
		Fingerprint: Fingerprint(q.Filter),
		Roles:       Roles(records),
		Locations:   Locations(records),
	}
}

// Ordered returns every matching record in order, without paging. Roster
// exports use it.
func Ordered(records []models.Teacher, f models.FilterState, s models.SortState) []models.Teacher {
	return Sort(Filter(records, f), s)
}
