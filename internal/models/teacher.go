package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TeacherStatus is the employment state of a roster entry.
type TeacherStatus string

const (
	StatusActive   TeacherStatus = "Active"
	StatusInactive TeacherStatus = "Inactive"
)

// Statuses lists every status in summary order.
var Statuses = []TeacherStatus{StatusActive, StatusInactive}

// DefaultLocations is the location set offered by the teacher form.
var DefaultLocations = []string{"Delhi", "Mumbai", "Chennai", "Bangalore", "Hyderabad"}

// TeacherID is the server-assigned identifier. The record service may encode
// it either as a JSON number or as a numeric string.
type TeacherID int64

// UnmarshalJSON accepts 7 and "7".
func (id *TeacherID) UnmarshalJSON(data []byte) error {
	raw := bytes.Trim(data, `"`)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		*id = 0
		return nil
	}
	v, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return fmt.Errorf("teacher id %s: %w", data, err)
	}
	*id = TeacherID(v)
	return nil
}

func (id TeacherID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// ParseTeacherID parses a path parameter.
func ParseTeacherID(raw string) (TeacherID, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid teacher id %q", raw)
	}
	return TeacherID(v), nil
}

// Teacher is one roster record as served by the record service.
type Teacher struct {
	ID        TeacherID     `json:"id"`
	Name      string        `json:"name"`
	Role      string        `json:"role"`
	Status    TeacherStatus `json:"status"`
	Location  string        `json:"location"`
	CreatedAt time.Time     `json:"createdAt"`
}

// createdAtLayouts are tried in order when decoding createdAt.
var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// UnmarshalJSON tolerates the timestamp shapes the record service has been seen
// to emit. A missing or unparseable createdAt leaves the zero time.
func (t *Teacher) UnmarshalJSON(data []byte) error {
	type alias Teacher
	aux := struct {
		*alias
		CreatedAt string `json:"createdAt"`
	}{alias: (*alias)(t)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	t.CreatedAt = ParseCreatedAt(aux.CreatedAt)
	return nil
}

// ParseCreatedAt parses an ISO timestamp, returning the zero time on failure.
func ParseCreatedAt(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range createdAtLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts
		}
	}
	return time.Time{}
}

// HasCreatedAt reports whether the record carries a usable creation time.
func (t Teacher) HasCreatedAt() bool {
	return !t.CreatedAt.IsZero()
}

// TeacherInput is the create/update payload. It never carries id or createdAt.
type TeacherInput struct {
	Name     string        `json:"name" form:"name" validate:"required,personname"`
	Role     string        `json:"role" form:"role"`
	Status   TeacherStatus `json:"status" form:"status" validate:"required,oneof=Active Inactive"`
	Location string        `json:"location" form:"location" validate:"required,location"`
}

// InputFrom copies the mutable fields of a record, used to prefill the edit form.
func InputFrom(t Teacher) TeacherInput {
	return TeacherInput{Name: t.Name, Role: t.Role, Status: t.Status, Location: t.Location}
}
