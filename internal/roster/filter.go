// Package roster is the in-memory list and aggregation engine run over an
// already fetched teacher record set. Nothing here performs I/O.
package roster

import (
	"strings"

	"github.com/noah-isme/teacher-admin/internal/models"
)

// Filter keeps the records matching every set predicate of f, preserving order.
func Filter(records []models.Teacher, f models.FilterState) []models.Teacher {
	needle := strings.ToLower(f.Name)
	out := make([]models.Teacher, 0, len(records))
	for _, t := range records {
		if matches(t, f, needle) {
			out = append(out, t)
		}
	}
	return out
}

func matches(t models.Teacher, f models.FilterState, needle string) bool {
	if needle != "" && !strings.Contains(strings.ToLower(t.Name), needle) {
		return false
	}
	if models.IsSet(f.Status) && string(t.Status) != f.Status {
		return false
	}
	if models.IsSet(f.Role) && t.Role != f.Role {
		return false
	}
	if models.IsSet(f.Location) && t.Location != f.Location {
		return false
	}
	if f.CreatedFrom == nil && f.CreatedTo == nil {
		return true
	}
	// a record without a creation time cannot be placed inside a range
	if !t.HasCreatedAt() {
		return false
	}
	if f.CreatedFrom != nil && t.CreatedAt.Before(*f.CreatedFrom) {
		return false
	}
	if f.CreatedTo != nil && t.CreatedAt.After(*f.CreatedTo) {
		return false
	}
	return true
}

// Roles returns the distinct roles in first-seen order, skipping blanks.
func Roles(records []models.Teacher) []string {
	return distinct(records, func(t models.Teacher) string { return t.Role })
}

// Locations returns the distinct locations in first-seen order, skipping blanks.
func Locations(records []models.Teacher) []string {
	return distinct(records, func(t models.Teacher) string { return t.Location })
}

func distinct(records []models.Teacher, key func(models.Teacher) string) []string {
	seen := make(map[string]struct{}, len(records))
	out := make([]string, 0)
	for _, t := range records {
		k := key(t)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
