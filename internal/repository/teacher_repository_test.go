package repository

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/teacher-admin/internal/models"
	"github.com/noah-isme/teacher-admin/pkg/config"
	"github.com/noah-isme/teacher-admin/pkg/middleware/requestid"
)

type observation struct {
	operation string
	outcome   string
}

type recordingObserver struct {
	mu   sync.Mutex
	seen []observation
}

func (o *recordingObserver) ObserveRecordRequest(operation, outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seen = append(o.seen, observation{operation, outcome})
}

func newTestRepo(t *testing.T, handler http.HandlerFunc) (*TeacherRepository, *recordingObserver) {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	obs := &recordingObserver{}
	return NewTeacherRepository(config.RecordAPIConfig{BaseURL: srv.URL}, obs, nil), obs
}

func TestTeacherRepositoryList(t *testing.T) {
	repo, obs := newTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/teachers", r.URL.Path)
		assert.Equal(t, "req-42", r.Header.Get(requestid.Header))
		_, _ = io.WriteString(w, `[{"id":1,"name":"Jane Doe","role":"Math","status":"Active","location":"Delhi","createdAt":"2024-01-05T00:00:00Z"}]`)
	})

	ctx := requestid.WithContext(context.Background(), "req-42")
	teachers, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, teachers, 1)
	assert.Equal(t, "Jane Doe", teachers[0].Name)
	assert.Equal(t, []observation{{"list", OutcomeSuccess}}, obs.seen)
}

func TestTeacherRepositoryListEmptyArray(t *testing.T) {
	repo, _ := newTestRepo(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `[]`)
	})
	teachers, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, teachers)
	assert.Empty(t, teachers)
}

func TestTeacherRepositoryFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		outcome string
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
			outcome: OutcomeHTTP,
		},
		{
			name: "not found",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
			outcome: OutcomeHTTP,
		},
		{
			name: "garbage body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = io.WriteString(w, `<html>`)
			},
			outcome: OutcomeDecode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, obs := newTestRepo(t, tt.handler)
			_, err := repo.FindByID(context.Background(), 3)
			require.Error(t, err)
			assert.Equal(t, []observation{{"get", tt.outcome}}, obs.seen)
		})
	}
}

func TestTeacherRepositoryTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	obs := &recordingObserver{}
	repo := NewTeacherRepository(config.RecordAPIConfig{BaseURL: srv.URL}, obs, nil)

	_, err := repo.List(context.Background())
	require.Error(t, err)
	assert.Equal(t, []observation{{"list", OutcomeTransport}}, obs.seen)
}

func TestTeacherRepositorySingleAttempt(t *testing.T) {
	var calls int
	repo, _ := newTestRepo(t, func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	require.Error(t, repo.Delete(context.Background(), 4))
	assert.Equal(t, 1, calls)
}

func TestTeacherRepositoryUpdateSendsOnlyMutableFields(t *testing.T) {
	repo, _ := newTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/teachers/9", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.NotContains(t, body, "id")
		assert.NotContains(t, body, "createdAt")
		assert.Equal(t, "Jane Doe", body["name"])

		_, _ = io.WriteString(w, `{"id":9,"name":"Jane Doe","role":"Math","status":"Inactive","location":"Delhi","createdAt":"2024-01-05T00:00:00Z"}`)
	})

	teacher, err := repo.Update(context.Background(), 9, models.TeacherInput{Name: "Jane Doe", Role: "Math", Status: models.StatusInactive, Location: "Delhi"})
	require.NoError(t, err)
	assert.Equal(t, models.TeacherID(9), teacher.ID)
	assert.True(t, teacher.HasCreatedAt())
}

func TestTeacherRepositoryCreateToleratesEmptyBody(t *testing.T) {
	repo, _ := newTestRepo(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.WriteHeader(http.StatusCreated)
	})

	teacher, err := repo.Create(context.Background(), models.TeacherInput{Name: "Jane Doe", Status: models.StatusActive, Location: "Delhi"})
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", teacher.Name)
}

func TestTeacherRepositoryHonoursTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	repo := NewTeacherRepository(config.RecordAPIConfig{BaseURL: srv.URL, Timeout: 20 * time.Millisecond}, nil, nil)
	_, err := repo.List(context.Background())
	require.Error(t, err)
}
