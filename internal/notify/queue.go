package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/tonynouhra/taskmanager/internal/domain"
)

// Reason says why a notification job was enqueued.
type Reason string

const (
	// ReasonStatusChanged is a status transition detected on a write.
	ReasonStatusChanged Reason = "status_changed"
	// ReasonReminder is an overdue reminder produced by the scheduled scan.
	ReasonReminder Reason = "reminder"
)

// Job is the unit of work handed to the notification workers. For status
// changes it carries the old/new pair captured at submit time; reminders
// leave the pair empty.
type Job struct {
	Reason    Reason
	Kind      domain.Kind
	EntityID  string
	OldStatus domain.Status
	NewStatus domain.Status
}

// Queue accepts notification jobs for asynchronous execution. Enqueue
// returns immediately; delivery is at-least-once with no ordering
// guarantee across workers.
type Queue interface {
	Enqueue(job Job) error
}

// JobHandler executes a single notification job and reports the outcome
// as a human-readable string. It must never panic or propagate transport
// failures: every outcome, including failure, is terminal for the attempt.
type JobHandler interface {
	Handle(ctx context.Context, job Job) string
}

// ErrQueueClosed is returned by Enqueue after the pool has been stopped.
var ErrQueueClosed = errors.New("notification queue is closed")

// ErrQueueFull is returned by Enqueue when the buffer has no room.
var ErrQueueFull = errors.New("notification queue is full")

// WorkerPool runs notification jobs on a fixed set of goroutines fed by a
// buffered channel. Submission never blocks the caller: when the buffer is
// full the job is rejected and the event is lost, which is the documented
// lifecycle for transition events.
type WorkerPool struct {
	handler JobHandler
	jobs    chan Job
	workers int

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewWorkerPool creates a worker pool with the given concurrency and
// buffer size. Call Start before enqueuing.
func NewWorkerPool(handler JobHandler, workers, buffer int) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	return &WorkerPool{
		handler: handler,
		jobs:    make(chan Job, buffer),
		workers: workers,
	}
}

// Start launches the worker goroutines. Workers run until Stop is called
// and the buffer is drained; ctx bounds the execution of each job.
func (p *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				outcome := p.handler.Handle(ctx, job)
				slog.Info("notification job finished",
					"reason", job.Reason,
					"kind", job.Kind,
					"entity_id", job.EntityID,
					"outcome", outcome,
				)
			}
		}()
	}
}

// Enqueue submits a job without blocking. It fails when the pool is
// stopped or the buffer is full.
func (p *WorkerPool) Enqueue(job Job) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrQueueClosed
	}

	select {
	case p.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop closes the queue and waits for in-flight and buffered jobs to finish.
func (p *WorkerPool) Stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()

	p.wg.Wait()
}

// SyncQueue runs every job immediately on the caller's goroutine. It is
// the deterministic stand-in for tests; production always uses WorkerPool.
type SyncQueue struct {
	Handler  JobHandler
	Jobs     []Job
	Outcomes []string
}

// Enqueue records the job and, when a handler is set, executes it right away.
func (q *SyncQueue) Enqueue(job Job) error {
	q.Jobs = append(q.Jobs, job)
	if q.Handler != nil {
		q.Outcomes = append(q.Outcomes, q.Handler.Handle(context.Background(), job))
	}
	return nil
}
