package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/teacher-admin/internal/dto"
	"github.com/noah-isme/teacher-admin/internal/models"
	"github.com/noah-isme/teacher-admin/internal/roster"
	"github.com/noah-isme/teacher-admin/internal/service"
	appErrors "github.com/noah-isme/teacher-admin/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func performRequest(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

const validToken = "valid-token"

var testSession = models.Session{
	ID:        "sess-1",
	Email:     "admin@school.test",
	FullName:  "Admin",
	IssuedAt:  time.Date(2024, 3, 15, 8, 0, 0, 0, time.UTC),
	ExpiresAt: time.Date(2024, 3, 15, 20, 0, 0, 0, time.UTC),
}

type fakeAuth struct {
	loginErr   error
	remember   bool
	lastLogin  models.LoginRequest
	loggedOut  *models.Session
	verifyHits int
}

func (f *fakeAuth) Login(_ context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	f.lastLogin = req
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	session := testSession
	session.RememberMe = req.RememberMe || f.remember
	return &models.LoginResponse{Token: validToken, ExpiresIn: 3600, ExpiresAt: session.ExpiresAt, Session: session}, nil
}

func (f *fakeAuth) Verify(_ context.Context, token string) (*models.Session, error) {
	f.verifyHits++
	if token != validToken {
		return nil, appErrors.ErrUnauthorized
	}
	session := testSession
	return &session, nil
}

func (f *fakeAuth) Logout(_ context.Context, session *models.Session) error {
	f.loggedOut = session
	return nil
}

type fakeTeachers struct {
	records   []models.Teacher
	err       error
	lastQuery roster.Query
	created   *models.TeacherInput
	updated   *models.TeacherInput
	deleted   models.TeacherID
}

func (f *fakeTeachers) List(_ context.Context, q roster.Query) (*roster.View, error) {
	f.lastQuery = q
	if f.err != nil {
		return nil, f.err
	}
	view := roster.Apply(f.records, q)
	return &view, nil
}

func (f *fakeTeachers) Get(_ context.Context, id models.TeacherID) (*models.Teacher, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, t := range f.records {
		if t.ID == id {
			out := t
			return &out, nil
		}
	}
	return nil, appErrors.Upstream(nil, "Failed to load teacher details")
}

func (f *fakeTeachers) Create(_ context.Context, input models.TeacherInput) (*models.Teacher, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = &input
	return &models.Teacher{ID: 99, Name: input.Name, Role: input.Role, Status: input.Status, Location: input.Location}, nil
}

func (f *fakeTeachers) Update(_ context.Context, id models.TeacherID, input models.TeacherInput) (*models.Teacher, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.updated = &input
	return &models.Teacher{ID: id, Name: input.Name, Role: input.Role, Status: input.Status, Location: input.Location}, nil
}

func (f *fakeTeachers) Delete(_ context.Context, id models.TeacherID) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = id
	return nil
}

func (f *fakeTeachers) Locations() []string {
	return models.DefaultLocations
}

type fakeExports struct {
	err        error
	chart      models.ChartTab
	format     models.ExportFormat
	lastFilter models.FilterState
	lastSort   models.SortState
	download   *service.Download
}

func (f *fakeExports) result(format models.ExportFormat) *models.ExportResult {
	return &models.ExportResult{
		ID: "exp-1",
		Files: []models.ExportFile{{
			Format:   format,
			FileName: "teachers." + string(format),
			Token:    "tok",
			URL:      "/api/v1/exports/tok",
		}},
	}
}

func (f *fakeExports) ExportRoster(_ context.Context, format models.ExportFormat, filter models.FilterState, sort models.SortState) (*models.ExportResult, error) {
	f.format, f.lastFilter, f.lastSort = format, filter, sort
	if f.err != nil {
		return nil, f.err
	}
	return f.result(format), nil
}

func (f *fakeExports) ExportChart(_ context.Context, chart models.ChartTab, filter models.FilterState) (*models.ExportResult, error) {
	f.chart, f.lastFilter = chart, filter
	if f.err != nil {
		return nil, f.err
	}
	if !chart.Valid() {
		return nil, nil
	}
	res := f.result(models.FormatPNG)
	res.Chart = chart
	return res, nil
}

func (f *fakeExports) ChartPNG(_ context.Context, chart models.ChartTab, filter models.FilterState) ([]byte, error) {
	f.chart, f.lastFilter = chart, filter
	if f.err != nil {
		return nil, f.err
	}
	if !chart.Valid() {
		return nil, nil
	}
	return []byte("\x89PNG"), nil
}

func (f *fakeExports) Open(token string) (*service.Download, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.download == nil || token != "tok" {
		return nil, appErrors.New("EXPORT_LINK_INVALID", http.StatusNotFound, "export link is invalid")
	}
	return f.download, nil
}

type fakeDashboard struct {
	err       error
	seq       uint64
	refreshes []string
}

func (f *fakeDashboard) Stats(context.Context) (*dto.DashboardResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &dto.DashboardResponse{
		Stats:       roster.Stats{Total: 6, Active: 4, Inactive: 2},
		LastUpdated: "10:30:00",
		SnapshotSeq: f.seq,
	}, nil
}

func (f *fakeDashboard) Refresh(_ context.Context, trigger string) (*service.Snapshot, error) {
	f.refreshes = append(f.refreshes, trigger)
	if f.err != nil {
		return nil, f.err
	}
	f.seq++
	return &service.Snapshot{Seq: f.seq}, nil
}

type fakeAnalytics struct {
	err        error
	lastFilter models.FilterState
}

func (f *fakeAnalytics) Summary(_ context.Context, filter models.FilterState) (*dto.AnalyticsResponse, error) {
	f.lastFilter = filter
	if f.err != nil {
		return nil, f.err
	}
	return &dto.AnalyticsResponse{
		Total:    3,
		Status:   []roster.Bucket{{Label: "Active", Count: 2}, {Label: "Inactive", Count: 1}},
		Location: []roster.Bucket{{Label: "Delhi", Count: 2}, {Label: "Mumbai", Count: 1}},
		Trend:    []roster.Bucket{{Label: "2024-03", Count: 3}},
		Filter:   filter,
	}, nil
}

func sampleRoster() []models.Teacher {
	at := func(day int) time.Time { return time.Date(2024, 3, day, 9, 0, 0, 0, time.UTC) }
	return []models.Teacher{
		{ID: 1, Name: "Asha Rao", Role: "Math", Status: models.StatusActive, Location: "Delhi", CreatedAt: at(1)},
		{ID: 2, Name: "Bilal Khan", Role: "Science", Status: models.StatusInactive, Location: "Mumbai", CreatedAt: at(2)},
		{ID: 3, Name: "Chitra Iyer", Role: "Math", Status: models.StatusActive, Location: "Chennai", CreatedAt: at(3)},
		{ID: 4, Name: "Dev Patel", Role: "English", Status: models.StatusActive, Location: "Delhi", CreatedAt: at(4)},
		{ID: 5, Name: "Esha Nair", Role: "Science", Status: models.StatusActive, Location: "Bangalore", CreatedAt: at(5)},
		{ID: 6, Name: "Farhan Ali", Role: "Math", Status: models.StatusInactive, Location: "Hyderabad", CreatedAt: at(6)},
	}
}
