package usecase

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"NewsAggregator/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestQueueProcessesAllTasks(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewQueue(3, 16, discardLogger())

	var handled int64
	q.Start(ctx, func(_ context.Context, task domain.FetchTask) error {
		atomic.AddInt64(&handled, 1)
		return nil
	})

	for i := 1; i <= 5; i++ {
		q.Enqueue(domain.FetchTask{JobID: int64(i), SourceID: int64(i), Attempt: 1})
	}
	q.Drain()

	if got := atomic.LoadInt64(&handled); got != 5 {
		t.Fatalf("expected 5 handled tasks, got %d", got)
	}
}

func TestQueueEnqueueAfterDelays(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewQueue(1, 4, discardLogger())

	var executedAt atomic.Value
	q.Start(ctx, func(_ context.Context, task domain.FetchTask) error {
		executedAt.Store(time.Now())
		return nil
	})

	delay := 50 * time.Millisecond
	start := time.Now()
	q.EnqueueAfter(delay, domain.FetchTask{JobID: 1, SourceID: 1, Attempt: 2})
	q.Drain()

	at, ok := executedAt.Load().(time.Time)
	if !ok {
		t.Fatalf("delayed task never executed")
	}
	if at.Sub(start) < delay {
		t.Fatalf("task ran after %v, want at least %v", at.Sub(start), delay)
	}
}

func TestQueueDrainReturnsAfterCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())

	q := NewQueue(1, 8, discardLogger())
	q.Start(ctx, func(_ context.Context, task domain.FetchTask) error {
		return nil
	})

	cancel()

	// Tasks enqueued around cancellation, buffered or delayed, must not
	// wedge Drain once the workers are gone.
	q.Enqueue(domain.FetchTask{JobID: 1, SourceID: 1, Attempt: 1})
	q.Enqueue(domain.FetchTask{JobID: 2, SourceID: 2, Attempt: 1})
	q.EnqueueAfter(10*time.Millisecond, domain.FetchTask{JobID: 3, SourceID: 3, Attempt: 2})

	done := make(chan struct{})
	go func() {
		q.Drain()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Drain did not return after cancellation")
	}
}

func TestQueueDrainWaitsForRequeue(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewQueue(2, 8, discardLogger())

	var attempts int64
	q.Start(ctx, func(_ context.Context, task domain.FetchTask) error {
		atomic.AddInt64(&attempts, 1)
		if task.Attempt == 1 {
			next := task
			next.Attempt++
			q.EnqueueAfter(10*time.Millisecond, next)
		}
		return nil
	})

	q.Enqueue(domain.FetchTask{JobID: 1, SourceID: 1, Attempt: 1})
	q.Drain()

	if got := atomic.LoadInt64(&attempts); got != 2 {
		t.Fatalf("drain must cover the delayed retry, got %d attempts", got)
	}
}
