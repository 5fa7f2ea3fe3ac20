package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/teacher-admin/internal/models"
	"github.com/noah-isme/teacher-admin/pkg/config"
	"github.com/noah-isme/teacher-admin/pkg/middleware/requestid"
)

// Outcomes recorded for every record service call.
const (
	OutcomeSuccess   = "success"
	OutcomeTransport = "transport_error"
	OutcomeHTTP      = "http_error"
	OutcomeDecode    = "decode_error"
)

// RecordObserver receives the latency of each record service call.
type RecordObserver interface {
	ObserveRecordRequest(operation, outcome string, elapsed time.Duration)
}

// TeacherRepository talks to the external REST service that owns teacher
// records. Every call is a single attempt.
type TeacherRepository struct {
	baseURL  string
	http     *http.Client
	observer RecordObserver
	logger   *zap.Logger
}

// NewTeacherRepository builds the client. A zero timeout leaves requests
// bounded only by the caller's context.
func NewTeacherRepository(cfg config.RecordAPIConfig, observer RecordObserver, logger *zap.Logger) *TeacherRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherRepository{
		baseURL:  cfg.BaseURL,
		http:     &http.Client{Timeout: cfg.Timeout},
		observer: observer,
		logger:   logger,
	}
}

// List returns every record.
func (r *TeacherRepository) List(ctx context.Context) ([]models.Teacher, error) {
	var teachers []models.Teacher
	if err := r.do(ctx, "list", http.MethodGet, "/teachers", nil, &teachers); err != nil {
		return nil, err
	}
	if teachers == nil {
		teachers = []models.Teacher{}
	}
	return teachers, nil
}

// FindByID returns one record. A remote 404 is reported like any other failure.
func (r *TeacherRepository) FindByID(ctx context.Context, id models.TeacherID) (*models.Teacher, error) {
	var teacher models.Teacher
	if err := r.do(ctx, "get", http.MethodGet, "/teachers/"+id.String(), nil, &teacher); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// Create submits a new record; the service assigns id and createdAt.
func (r *TeacherRepository) Create(ctx context.Context, input models.TeacherInput) (*models.Teacher, error) {
	teacher := models.Teacher{Name: input.Name, Role: input.Role, Status: input.Status, Location: input.Location}
	if err := r.do(ctx, "create", http.MethodPost, "/teachers", input, &teacher); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// Update replaces the mutable fields of a record.
func (r *TeacherRepository) Update(ctx context.Context, id models.TeacherID, input models.TeacherInput) (*models.Teacher, error) {
	teacher := models.Teacher{ID: id, Name: input.Name, Role: input.Role, Status: input.Status, Location: input.Location}
	if err := r.do(ctx, "update", http.MethodPut, "/teachers/"+id.String(), input, &teacher); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// Delete removes a record.
func (r *TeacherRepository) Delete(ctx context.Context, id models.TeacherID) error {
	return r.do(ctx, "delete", http.MethodDelete, "/teachers/"+id.String(), nil, nil)
}

// do performs one round trip. An empty success body leaves dest untouched.
func (r *TeacherRepository) do(ctx context.Context, operation, method, path string, body, dest interface{}) (err error) {
	start := time.Now()
	outcome := OutcomeSuccess
	defer func() {
		if r.observer != nil {
			r.observer.ObserveRecordRequest(operation, outcome, time.Since(start))
		}
		if err != nil {
			r.logger.Warn("record service call failed",
				zap.String("operation", operation),
				zap.String("outcome", outcome),
				zap.String("request_id", requestid.FromContext(ctx)),
				zap.Error(err),
			)
		}
	}()

	var reader io.Reader
	if body != nil {
		payload, mErr := json.Marshal(body)
		if mErr != nil {
			outcome = OutcomeTransport
			return fmt.Errorf("encode %s payload: %w", operation, mErr)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, reader)
	if err != nil {
		outcome = OutcomeTransport
		return fmt.Errorf("build %s request: %w", operation, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := requestid.FromContext(ctx); id != "" {
		req.Header.Set(requestid.Header, id)
	}

	resp, err := r.http.Do(req)
	if err != nil {
		outcome = OutcomeTransport
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		outcome = OutcomeHTTP
		snippet := make([]byte, 512)
		n, _ := io.ReadFull(resp.Body, snippet)
		return fmt.Errorf("%s %s returned HTTP %d: %s", method, path, resp.StatusCode, bytes.TrimSpace(snippet[:n]))
	}

	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		outcome = OutcomeDecode
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}
