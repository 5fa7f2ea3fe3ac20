package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/teacher-admin/internal/models"
	"github.com/noah-isme/teacher-admin/internal/roster"
)

const dateLayout = "2006-01-02"

// FilterQuery binds list and analytics filter parameters.
type FilterQuery struct {
	Name     string `form:"name"`
	Status   string `form:"status"`
	Role     string `form:"role"`
	Location string `form:"location"`
	From     string `form:"from"`
	To       string `form:"to"`
}

// ListQuery binds the teacher list parameters.
type ListQuery struct {
	FilterQuery
	Sort  string `form:"sort"`
	Order string `form:"order"`
	Page  int    `form:"page"`
	// Fingerprint is echoed back from the previous list response.
	Fingerprint string `form:"fp"`
}

// FilterState converts the bound values. Dates accept YYYY-MM-DD or RFC3339;
// a date-only upper bound covers the whole day in loc.
func (q FilterQuery) FilterState(loc *time.Location) (models.FilterState, error) {
	if loc == nil {
		loc = time.UTC
	}
	state := models.FilterState{
		Name:     strings.TrimSpace(q.Name),
		Status:   strings.TrimSpace(q.Status),
		Role:     strings.TrimSpace(q.Role),
		Location: strings.TrimSpace(q.Location),
	}
	from, err := parseBound(q.From, loc, false)
	if err != nil {
		return state, fmt.Errorf("invalid from date: %w", err)
	}
	to, err := parseBound(q.To, loc, true)
	if err != nil {
		return state, fmt.Errorf("invalid to date: %w", err)
	}
	state.CreatedFrom, state.CreatedTo = from, to
	return state, nil
}

// Query converts the bound values into a list engine query.
func (q ListQuery) Query(loc *time.Location) (roster.Query, error) {
	filter, err := q.FilterState(loc)
	if err != nil {
		return roster.Query{}, err
	}
	return roster.Query{
		Filter: filter,
		Sort: models.SortState{
			Field: models.SortField(q.Sort),
			Order: models.SortOrder(strings.ToLower(q.Order)),
		}.Normalize(),
		Page:        q.Page,
		Fingerprint: q.Fingerprint,
	}, nil
}

func parseBound(raw string, loc *time.Location, endOfDay bool) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return &ts, nil
	}
	day, err := time.ParseInLocation(dateLayout, raw, loc)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		day = day.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return &day, nil
}
