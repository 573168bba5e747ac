// Package semaphore provides a counting semaphore whose count can grow
// without bound through Notify.
package semaphore

import (
	"context"
	"math"
	"time"

	xsem "golang.org/x/sync/semaphore"
)

// capacity is the weight of the underlying semaphore. The weight it holds is
// capacity minus the current count, so Notify can always release one unit.
const capacity = math.MaxInt64

// Semaphore is a counting signal. Wait blocks until the count is positive and
// then decrements it; Notify increments it and wakes one waiter.
//
// It is safe for concurrent use. Waiters are served in FIFO order.
type Semaphore struct {
	w *xsem.Weighted
}

// New creates a semaphore with the given initial count.
// It panics if count is negative.
func New(count int) *Semaphore {
	if count < 0 {
		panic("semaphore: negative initial count")
	}
	w := xsem.NewWeighted(capacity)
	w.TryAcquire(capacity - int64(count))
	return &Semaphore{w: w}
}

// Wait blocks until the count is positive, then decrements it.
func (s *Semaphore) Wait() {
	// Acquire with a background context only fails if the weight exceeds capacity.
	_ = s.w.Acquire(context.Background(), 1)
}

// WaitContext is Wait bounded by ctx. It returns ctx.Err() if the context
// ends before the count could be decremented.
func (s *Semaphore) WaitContext(ctx context.Context) error {
	return s.w.Acquire(ctx, 1)
}

// Notify increments the count and wakes exactly one waiter, if any.
func (s *Semaphore) Notify() {
	s.w.Release(1)
}

// TryWait decrements the count if it is positive and reports whether it did.
func (s *Semaphore) TryWait() bool {
	return s.w.TryAcquire(1)
}

// TimedWait is Wait bounded by timeout. It reports whether the count was
// decremented before the timeout elapsed.
func (s *Semaphore) TimedWait(timeout time.Duration) bool {
	if s.TryWait() {
		return true
	}
	if timeout <= 0 {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.w.Acquire(ctx, 1) == nil
}
