package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"NewsAggregator/internal/domain"
	"NewsAggregator/internal/ports"
)

// Handler executes one fetch task. A returned error means the task
// finished terminally; retries are re-enqueued by the handler itself.
type Handler func(ctx context.Context, task domain.FetchTask) error

// Queue is an in-process task queue: a fixed worker pool pulling fetch
// tasks from a buffered channel, with delay-scheduled re-enqueue for
// transient failures.
type Queue struct {
	tasks   chan domain.FetchTask
	wg      sync.WaitGroup
	workers int
	logger  *slog.Logger
}

var _ ports.TaskQueue = (*Queue)(nil)

// NewQueue builds a queue with the given pool size and channel buffer.
func NewQueue(workers, buffer int, logger *slog.Logger) *Queue {
	if workers <= 0 {
		workers = 4
	}
	if buffer <= 0 {
		buffer = 64
	}
	return &Queue{
		tasks:   make(chan domain.FetchTask, buffer),
		workers: workers,
		logger:  logger,
	}
}

// Start launches the worker pool. Workers run until ctx is cancelled;
// tasks still queued at that point, including delayed re-enqueues that
// land later, are discarded so Drain never blocks on abandoned work.
func (q *Queue) Start(ctx context.Context, handler Handler) {
	for i := 0; i < q.workers; i++ {
		go q.worker(ctx, i, handler)
	}
	go q.reap(ctx)
}

func (q *Queue) reap(ctx context.Context) {
	<-ctx.Done()
	for task := range q.tasks {
		q.logger.Warn("discarding task after shutdown",
			"job_id", task.JobID,
			"source_id", task.SourceID,
			"attempt", task.Attempt)
		q.wg.Done()
	}
}

func (q *Queue) worker(ctx context.Context, id int, handler Handler) {
	for {
		select {
		case <-ctx.Done():
			return
		case task := <-q.tasks:
			if err := handler(ctx, task); err != nil {
				q.logger.Error("fetch task failed",
					"worker", id,
					"job_id", task.JobID,
					"source_id", task.SourceID,
					"attempt", task.Attempt,
					"error", err)
			}
			q.wg.Done()
		}
	}
}

// Enqueue schedules a task for immediate execution.
func (q *Queue) Enqueue(task domain.FetchTask) {
	q.wg.Add(1)
	q.tasks <- task
}

// EnqueueAfter schedules a task after the given delay. The task counts as
// in flight for Drain during the whole wait.
func (q *Queue) EnqueueAfter(delay time.Duration, task domain.FetchTask) {
	q.wg.Add(1)
	time.AfterFunc(delay, func() {
		q.tasks <- task
	})
}

// Drain blocks until every enqueued task, including delayed retries, has
// been handled.
func (q *Queue) Drain() {
	q.wg.Wait()
}
