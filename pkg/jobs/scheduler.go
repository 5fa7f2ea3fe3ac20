package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type enqueuer interface {
	TryEnqueue(job Job) error
}

type schedule struct {
	interval time.Duration
	jobType  string
	payload  interface{}
}

// Scheduler turns tickers into queued jobs. A tick that finds the queue full
// is dropped rather than blocking the ticker.
type Scheduler struct {
	queue     enqueuer
	logger    *zap.Logger
	schedules []schedule
	wg        sync.WaitGroup
}

// NewScheduler builds a scheduler feeding queue.
func NewScheduler(queue enqueuer, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{queue: queue, logger: logger}
}

// Every registers a periodic job. Non-positive intervals are ignored.
func (s *Scheduler) Every(interval time.Duration, jobType string, payload interface{}) *Scheduler {
	if interval > 0 {
		s.schedules = append(s.schedules, schedule{interval: interval, jobType: jobType, payload: payload})
	}
	return s
}

// Run starts one ticker goroutine per schedule. They exit when ctx is done.
func (s *Scheduler) Run(ctx context.Context) {
	for _, sc := range s.schedules {
		s.wg.Add(1)
		go s.loop(ctx, sc)
	}
}

// Wait blocks until every ticker goroutine has returned.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context, sc schedule) {
	defer s.wg.Done()
	ticker := time.NewTicker(sc.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.fire(sc)
		}
	}
}

func (s *Scheduler) fire(sc schedule) {
	err := s.queue.TryEnqueue(Job{ID: uuid.NewString(), Type: sc.jobType, Payload: sc.payload})
	switch {
	case err == nil:
	case errors.Is(err, ErrQueueFull):
		s.logger.Debug("tick dropped, queue busy", zap.String("type", sc.jobType))
	default:
		s.logger.Warn("failed to enqueue scheduled job", zap.String("type", sc.jobType), zap.Error(err))
	}
}
