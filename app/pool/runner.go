package pool

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Runner bounds the number of concurrently executing tasks. Submissions beyond
// the limit wait in FIFO order until a running task finishes. A task's failure
// is returned to its own caller and never affects other tasks.
type Runner struct {
	sem *semaphore.Weighted
	max int
}

const DefaultConcurrency = 6

func NewRunner(maxConcurrency int) *Runner {
	if maxConcurrency <= 0 {
		maxConcurrency = DefaultConcurrency
	}
	return &Runner{
		sem: semaphore.NewWeighted(int64(maxConcurrency)),
		max: maxConcurrency,
	}
}

func (r *Runner) MaxConcurrency() int {
	return r.max
}

// Do runs fn once a slot is available. It blocks until fn returns, or until
// ctx is cancelled while still waiting for a slot.
func (r *Runner) Do(ctx context.Context, fn func() error) error {
	if err := r.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer r.sem.Release(1)

	return fn()
}
