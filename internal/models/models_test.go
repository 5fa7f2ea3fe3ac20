package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeacherDecodesNumericAndStringIDs(t *testing.T) {
	var list []Teacher
	payload := `[
		{"id": 3, "name": "Jane Doe", "role": "Math", "status": "Active", "location": "Delhi", "createdAt": "2024-03-05T10:00:00.000Z"},
		{"id": "7", "name": "Ravi", "role": "Art", "status": "Inactive", "location": "Mumbai", "createdAt": "2024-02-01"}
	]`
	require.NoError(t, json.Unmarshal([]byte(payload), &list))
	require.Len(t, list, 2)

	assert.Equal(t, TeacherID(3), list[0].ID)
	assert.Equal(t, time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC), list[0].CreatedAt)
	assert.Equal(t, TeacherID(7), list[1].ID)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), list[1].CreatedAt)
}

func TestTeacherToleratesMissingCreatedAt(t *testing.T) {
	var rec Teacher
	require.NoError(t, json.Unmarshal([]byte(`{"id": 1, "name": "A"}`), &rec))
	assert.False(t, rec.HasCreatedAt())

	require.Error(t, json.Unmarshal([]byte(`{"id": "x"}`), &rec))
}

func TestTeacherInputOmitsServerFields(t *testing.T) {
	raw, err := json.Marshal(InputFrom(Teacher{ID: 9, Name: "Jane", Status: StatusActive, Location: "Delhi", CreatedAt: time.Now()}))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "id")
	assert.NotContains(t, string(raw), "createdAt")
}

func TestParseTeacherID(t *testing.T) {
	id, err := ParseTeacherID("12")
	require.NoError(t, err)
	assert.Equal(t, TeacherID(12), id)

	for _, bad := range []string{"", "0", "-1", "abc"} {
		_, err := ParseTeacherID(bad)
		assert.Error(t, err, bad)
	}
}

func TestSortStateNext(t *testing.T) {
	s := DefaultSort
	s = s.Next(SortByName)
	assert.Equal(t, SortState{Field: SortByName, Order: OrderDesc}, s)
	s = s.Next(SortByName)
	assert.Equal(t, SortState{Field: SortByName, Order: OrderAsc}, s)

	s = SortState{Field: SortByName, Order: OrderDesc}.Next(SortByLocation)
	assert.Equal(t, SortState{Field: SortByLocation, Order: OrderAsc}, s)
}

func TestSortStateNormalize(t *testing.T) {
	assert.Equal(t, DefaultSort, SortState{Field: "salary", Order: "sideways"}.Normalize())
	assert.Equal(t, SortState{Field: SortByCreatedAt, Order: OrderDesc}, SortState{Field: SortByCreatedAt, Order: OrderDesc}.Normalize())
}

func TestIsSet(t *testing.T) {
	assert.False(t, IsSet(""))
	assert.False(t, IsSet(FilterAll))
	assert.True(t, IsSet("Active"))
}
