package jobs

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingQueue struct {
	mu   sync.Mutex
	jobs []Job
	err  error
}

func (q *recordingQueue) TryEnqueue(job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *recordingQueue) count(jobType string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for _, j := range q.jobs {
		if j.Type == jobType {
			n++
		}
	}
	return n
}

func TestSchedulerEnqueuesOnEveryTick(t *testing.T) {
	q := &recordingQueue{}
	ctx, cancel := context.WithCancel(context.Background())
	s := NewScheduler(q, nil).
		Every(5*time.Millisecond, "refresh", "poll").
		Every(0, "ignored", nil)
	s.Run(ctx)

	require.Eventually(t, func() bool { return q.count("refresh") >= 2 }, time.Second, time.Millisecond)
	cancel()
	s.Wait()

	assert.Zero(t, q.count("ignored"))
	q.mu.Lock()
	defer q.mu.Unlock()
	assert.Equal(t, "poll", q.jobs[0].Payload)
	assert.NotEmpty(t, q.jobs[0].ID)
}

func TestSchedulerToleratesFullQueue(t *testing.T) {
	q := &recordingQueue{err: ErrQueueFull}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	s := NewScheduler(q, nil).Every(2*time.Millisecond, "refresh", nil)
	s.Run(ctx)
	s.Wait()
	assert.Zero(t, q.count("refresh"))
}
