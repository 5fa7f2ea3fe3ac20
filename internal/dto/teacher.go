package dto

import (
	"github.com/noah-isme/teacher-admin/internal/models"
	"github.com/noah-isme/teacher-admin/internal/roster"
)

// TeacherListMeta describes the list state next to a page of rows.
type TeacherListMeta struct {
	Sort        models.SortState   `json:"sort"`
	Filter      models.FilterState `json:"filter"`
	Fingerprint string             `json:"fingerprint"`
	Pages       []int              `json:"pages"`
	Empty       bool               `json:"empty"`
	Roles       []string           `json:"roles"`
	Locations   []string           `json:"locations"`
}

// NewTeacherListMeta extracts list metadata from a view.
func NewTeacherListMeta(v *roster.View) TeacherListMeta {
	return TeacherListMeta{
		Sort:        v.Sort,
		Filter:      v.Filter,
		Fingerprint: v.Fingerprint,
		Pages:       v.Page.Numbers,
		Empty:       v.Page.Empty,
		Roles:       v.Roles,
		Locations:   v.Locations,
	}
}
