package roster

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/noah-isme/teacher-admin/internal/models"
)

// Collation is the locale used for string ordering.
var Collation = language.English

// Sort returns a sorted copy of records. Equal keys fall back to id order so
// the descending result is the exact reverse of the ascending one.
func Sort(records []models.Teacher, s models.SortState) []models.Teacher {
	s = s.Normalize()
	out := make([]models.Teacher, len(records))
	copy(out, records)

	// collators keep scratch buffers, so each call gets its own
	col := collate.New(Collation)
	less := func(i, j int) bool {
		c := compareField(col, out[i], out[j], s.Field)
		if c == 0 {
			c = compareInt(int64(out[i].ID), int64(out[j].ID))
		}
		if s.Order == models.OrderDesc {
			c = -c
		}
		return c < 0
	}
	sort.SliceStable(out, less)
	return out
}

func compareField(col *collate.Collator, a, b models.Teacher, field models.SortField) int {
	switch field {
	case models.SortByID:
		return compareInt(int64(a.ID), int64(b.ID))
	case models.SortByRole:
		return col.CompareString(a.Role, b.Role)
	case models.SortByStatus:
		return col.CompareString(string(a.Status), string(b.Status))
	case models.SortByLocation:
		return col.CompareString(a.Location, b.Location)
	case models.SortByCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	default:
		return col.CompareString(a.Name, b.Name)
	}
}

func compareInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
