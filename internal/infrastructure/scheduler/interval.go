package scheduler

import (
	"context"
	"sync"
	"time"

	"NewsAggregator/internal/ports"
)

// Interval fires a job immediately and then on a fixed period. It stands
// in for the external scheduling trigger that enqueues ingestion runs.
type Interval struct {
	every time.Duration

	mu   sync.Mutex
	stop chan struct{}
}

var _ ports.Trigger = (*Interval)(nil)

// NewInterval builds a trigger with the given period.
func NewInterval(every time.Duration) *Interval {
	return &Interval{every: every}
}

// Start begins ticking; the first invocation happens right away.
func (s *Interval) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	s.mu.Lock()
	if s.stop != nil {
		s.mu.Unlock()
		return nil
	}
	stop := make(chan struct{})
	s.stop = stop
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(s.every)
		defer ticker.Stop()
		job(time.Now())
		for {
			select {
			case t := <-ticker.C:
				job(t)
			case <-ctx.Done():
				return
			case <-stop:
				return
			}
		}
	}()

	return nil
}

// Stop halts the ticker goroutine. Safe to call more than once.
func (s *Interval) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stop == nil {
		return nil
	}
	close(s.stop)
	s.stop = nil
	return nil
}
