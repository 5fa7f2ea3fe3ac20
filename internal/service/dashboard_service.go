package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/teacher-admin/internal/dto"
	"github.com/noah-isme/teacher-admin/internal/models"
	"github.com/noah-isme/teacher-admin/internal/roster"
	appErrors "github.com/noah-isme/teacher-admin/pkg/errors"
	"github.com/noah-isme/teacher-admin/pkg/jobs"
)

// Background job types.
const (
	JobDashboardRefresh = "dashboard.refresh"
	JobExportCleanup    = "exports.cleanup"
	JobSessionSweep     = "sessions.sweep"
)

// Refresh triggers, used as metric labels.
const (
	TriggerInitial = "initial"
	TriggerPoll    = "poll"
	TriggerManual  = "manual"
)

type recordLister interface {
	List(ctx context.Context) ([]models.Teacher, error)
}

// Snapshot is one committed fetch of the record set.
type Snapshot struct {
	Seq       uint64
	Records   []models.Teacher
	FetchedAt time.Time
}

// DashboardService keeps the latest record snapshot and derives stats from it.
// Fetches may overlap; a result only replaces the snapshot when its sequence
// id is newer than the one on display.
type DashboardService struct {
	records recordLister
	metrics *MetricsService
	logger  *zap.Logger
	loc     *time.Location
	now     func() time.Time

	seq     uint64
	mu      sync.RWMutex
	current *Snapshot
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(records recordLister, metrics *MetricsService, loc *time.Location, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardService{
		records: records,
		metrics: metrics,
		logger:  logger,
		loc:     loc,
		now:     time.Now,
	}
}

// Begin reserves the next sequence id.
func (s *DashboardService) Begin() uint64 {
	return atomic.AddUint64(&s.seq, 1)
}

// Commit installs records as the current snapshot unless a newer one is
// already displayed.
func (s *DashboardService) Commit(seq uint64, records []models.Teacher, fetchedAt time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil && seq <= s.current.Seq {
		return false
	}
	s.current = &Snapshot{Seq: seq, Records: records, FetchedAt: fetchedAt}
	return true
}

// Current returns the displayed snapshot, or nil before the first commit.
func (s *DashboardService) Current() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	snap := *s.current
	return &snap
}

// Refresh fetches the record set once. A failed fetch leaves the previous
// snapshot in place.
func (s *DashboardService) Refresh(ctx context.Context, trigger string) (*Snapshot, error) {
	seq := s.Begin()
	records, err := s.records.List(ctx)
	if err != nil {
		s.metrics.RecordRefresh(trigger, false, seq, false)
		s.logger.Warn("dashboard refresh failed", zap.String("trigger", trigger), zap.Uint64("seq", seq), zap.Error(err))
		return nil, appErrors.Upstream(err, "Failed to load teachers")
	}

	committed := s.Commit(seq, records, s.now())
	s.metrics.RecordRefresh(trigger, true, seq, committed)
	if !committed {
		s.logger.Debug("dropped stale dashboard snapshot", zap.String("trigger", trigger), zap.Uint64("seq", seq))
	}
	return s.Current(), nil
}

// Stats derives the dashboard counters from the current snapshot, fetching
// synchronously when none exists yet.
func (s *DashboardService) Stats(ctx context.Context) (*dto.DashboardResponse, error) {
	snap := s.Current()
	if snap == nil {
		var err error
		if snap, err = s.Refresh(ctx, TriggerInitial); err != nil {
			return nil, err
		}
	}
	return s.respond(snap), nil
}

func (s *DashboardService) respond(snap *Snapshot) *dto.DashboardResponse {
	fetched := snap.FetchedAt.In(s.loc)
	return &dto.DashboardResponse{
		Stats:       roster.DeriveStats(snap.Records, s.now().In(s.loc)),
		LastUpdated: fetched.Format("15:04:05"),
		SnapshotSeq: snap.Seq,
		FetchedAt:   fetched,
	}
}

// HandleRefreshJob is the poller's queue handler.
func (s *DashboardService) HandleRefreshJob(ctx context.Context, job jobs.Job) error {
	trigger := TriggerPoll
	if t, ok := job.Payload.(string); ok && t != "" {
		trigger = t
	}
	_, err := s.Refresh(ctx, trigger)
	return err
}
