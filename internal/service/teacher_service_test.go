package service

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/teacher-admin/internal/models"
	"github.com/noah-isme/teacher-admin/internal/roster"
	appErrors "github.com/noah-isme/teacher-admin/pkg/errors"
)

type mockTeacherRepo struct {
	mu        sync.Mutex
	items     []models.Teacher
	listErr   error
	writeErr  error
	created   []models.TeacherInput
	updated   map[models.TeacherID]models.TeacherInput
	deleted   []models.TeacherID
	listCalls int
}

func (m *mockTeacherRepo) List(ctx context.Context) ([]models.Teacher, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]models.Teacher, len(m.items))
	copy(out, m.items)
	return out, nil
}

func (m *mockTeacherRepo) FindByID(ctx context.Context, id models.TeacherID) (*models.Teacher, error) {
	for _, t := range m.items {
		if t.ID == id {
			cp := t
			return &cp, nil
		}
	}
	return nil, errors.New("status 404")
}

func (m *mockTeacherRepo) Create(ctx context.Context, input models.TeacherInput) (*models.Teacher, error) {
	if m.writeErr != nil {
		return nil, m.writeErr
	}
	m.created = append(m.created, input)
	return &models.Teacher{ID: models.TeacherID(len(m.items) + 1), Name: input.Name, Role: input.Role, Status: input.Status, Location: input.Location}, nil
}

func (m *mockTeacherRepo) Update(ctx context.Context, id models.TeacherID, input models.TeacherInput) (*models.Teacher, error) {
	if m.writeErr != nil {
		return nil, m.writeErr
	}
	if m.updated == nil {
		m.updated = make(map[models.TeacherID]models.TeacherInput)
	}
	m.updated[id] = input
	return &models.Teacher{ID: id, Name: input.Name, Role: input.Role, Status: input.Status, Location: input.Location}, nil
}

func (m *mockTeacherRepo) Delete(ctx context.Context, id models.TeacherID) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	m.deleted = append(m.deleted, id)
	return nil
}

func sampleTeachers() []models.Teacher {
	day := func(y int, mth time.Month, d int) time.Time { return time.Date(y, mth, d, 9, 0, 0, 0, time.UTC) }
	return []models.Teacher{
		{ID: 1, Name: "Anita Rao", Role: "Math", Status: models.StatusActive, Location: "Delhi", CreatedAt: day(2024, 2, 10)},
		{ID: 2, Name: "Bala Iyer", Role: "Science", Status: models.StatusInactive, Location: "Chennai", CreatedAt: day(2024, 3, 2)},
		{ID: 3, Name: "Chitra Nair", Role: "Math", Status: models.StatusActive, Location: "Mumbai", CreatedAt: day(2024, 3, 12)},
		{ID: 4, Name: "Dev Kapoor", Role: "History", Status: models.StatusActive, Location: "Delhi", CreatedAt: day(2024, 3, 14)},
		{ID: 5, Name: "Esha Gupta", Role: "Science", Status: models.StatusActive, Location: "Delhi"},
		{ID: 6, Name: "Farah Khan", Role: "Math", Status: models.StatusInactive, Location: "Hyderabad", CreatedAt: day(2024, 1, 5)},
	}
}

func newTeacherService(repo *mockTeacherRepo) *TeacherService {
	return NewTeacherService(repo, nil, zap.NewNop(), nil)
}

func TestToTitleCase(t *testing.T) {
	cases := map[string]string{
		"jane doe":      "Jane Doe",
		"JANE DOE":      "Jane Doe",
		"  mary  ann ":  "  Mary  Ann ",
		"o'neil":        "O'neil",
		"(bob) smith":   "(Bob) Smith",
		"":              "",
		"élodie martin": "éLodie Martin",
		" jane\tDOE ":    " Jane\tDoe ",
		"ann-marie lee": "Ann-marie Lee",
	}
	for in, want := range cases {
		assert.Equal(t, want, ToTitleCase(in), in)
	}
}

func TestTeacherServiceCreateFormatsName(t *testing.T) {
	repo := &mockTeacherRepo{}
	svc := newTeacherService(repo)

	created, err := svc.Create(context.Background(), models.TeacherInput{Name: "  jane doe ", Role: "Math", Location: "Delhi"})
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", created.Name)
	require.Len(t, repo.created, 1)
	assert.Equal(t, models.StatusActive, repo.created[0].Status)
}

func TestTeacherServiceValidationMessages(t *testing.T) {
	svc := newTeacherService(&mockTeacherRepo{})

	cases := []struct {
		name  string
		input models.TeacherInput
		msg   string
	}{
		{"missing name", models.TeacherInput{Role: "Math", Location: "Delhi"}, MsgFillAllFields},
		{"missing location", models.TeacherInput{Name: "Jane", Role: "Math"}, MsgFillAllFields},
		{"digits in name", models.TeacherInput{Name: "Jane 2", Role: "Math", Location: "Delhi"}, MsgNameLettersOnly},
		{"bad status", models.TeacherInput{Name: "Jane", Role: "Math", Status: "Retired", Location: "Delhi"}, MsgInvalidStatus},
		{"unknown location", models.TeacherInput{Name: "Jane", Role: "Math", Location: "Pune"}, MsgInvalidLocation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.input)
			require.Error(t, err)
			appErr := appErrors.FromError(err)
			assert.Equal(t, http.StatusBadRequest, appErr.Status)
			assert.Equal(t, tc.msg, appErr.Message)
		})
	}
}

func TestTeacherServiceUpstreamFailures(t *testing.T) {
	repo := &mockTeacherRepo{listErr: errors.New("connection refused"), writeErr: errors.New("status 500")}
	svc := newTeacherService(repo)
	ctx := context.Background()

	_, err := svc.List(ctx, roster.Query{})
	assert.True(t, errors.Is(err, appErrors.ErrUpstream))
	assert.Equal(t, "Failed to load teachers", appErrors.FromError(err).Message)

	_, err = svc.Get(ctx, 99)
	assert.Equal(t, "Failed to load teacher details", appErrors.FromError(err).Message)

	_, err = svc.Update(ctx, 1, models.TeacherInput{Name: "jane", Role: "Math", Location: "Delhi"})
	assert.Equal(t, http.StatusBadGateway, appErrors.FromError(err).Status)
	assert.Equal(t, "Operation failed", appErrors.FromError(err).Message)

	err = svc.Delete(ctx, 1)
	assert.Equal(t, "Delete failed", appErrors.FromError(err).Message)
}

func TestTeacherServiceListAppliesQuery(t *testing.T) {
	repo := &mockTeacherRepo{items: sampleTeachers()}
	svc := newTeacherService(repo)

	view, err := svc.List(context.Background(), roster.Query{
		Filter: models.FilterState{Role: "Math"},
		Sort:   models.SortState{Field: models.SortByName, Order: models.OrderDesc},
	})
	require.NoError(t, err)
	require.Len(t, view.Page.Rows, 3)
	assert.Equal(t, "Farah Khan", view.Page.Rows[0].Name)
	assert.Equal(t, "Anita Rao", view.Page.Rows[2].Name)
	assert.Equal(t, []string{"Math", "Science", "History"}, view.Roles)
}

func TestTeacherServiceUpdateAndDelete(t *testing.T) {
	repo := &mockTeacherRepo{items: sampleTeachers()}
	svc := newTeacherService(repo)
	ctx := context.Background()

	_, err := svc.Update(ctx, 2, models.TeacherInput{Name: "bala IYER", Role: "Science", Status: models.StatusActive, Location: "Chennai"})
	require.NoError(t, err)
	assert.Equal(t, "Bala Iyer", repo.updated[2].Name)

	require.NoError(t, svc.Delete(ctx, 3))
	assert.Equal(t, []models.TeacherID{3}, repo.deleted)

	teacher, err := svc.Get(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, "Dev Kapoor", teacher.Name)
}

func TestTeacherServiceCustomLocations(t *testing.T) {
	svc := NewTeacherService(&mockTeacherRepo{}, nil, nil, []string{"Pune"})
	assert.Equal(t, []string{"Pune"}, svc.Locations())

	_, err := svc.Prepare(models.TeacherInput{Name: "Jane", Role: "Math", Location: "Pune"})
	require.NoError(t, err)
	_, err = svc.Prepare(models.TeacherInput{Name: "Jane", Role: "Math", Location: "Delhi"})
	require.Error(t, err)
}
