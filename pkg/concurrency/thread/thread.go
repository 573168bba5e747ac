// Package thread wraps a goroutine with a synchronous start, cooperative
// interruption and join.
package thread

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/vnykmshr/flowrt/pkg/concurrency/semaphore"
)

// Runner is the body of a Thread. Long-running bodies should poll
// t.IsInterruptionRequested or select on t.Interrupted.
type Runner interface {
	Run(t *Thread)
}

// RunnerFunc is a function type that implements the Runner interface.
type RunnerFunc func(t *Thread)

// Run implements the Runner interface for RunnerFunc.
func (f RunnerFunc) Run(t *Thread) {
	f(t)
}

// Thread owns one goroutine. Start returns only once the goroutine is
// running, and Close requests interruption and joins, so a Thread never
// leaves a detached goroutine behind when its owner shuts it down.
//
// A Thread can be started again after its body has returned.
type Thread struct {
	runner  Runner
	started *semaphore.Semaphore

	startMu sync.Mutex // serializes Start

	mu          sync.Mutex
	done        chan struct{}
	interruptCh chan struct{}

	running     atomic.Bool
	interrupted atomic.Bool
}

// New creates a Thread that runs r when started.
func New(r Runner) *Thread {
	if r == nil {
		panic("thread: New called with nil Runner")
	}
	return &Thread{
		runner:      r,
		started:     semaphore.New(0),
		interruptCh: make(chan struct{}),
	}
}

// NewFunc creates a Thread that runs fn when started.
func NewFunc(fn func(t *Thread)) *Thread {
	if fn == nil {
		panic("thread: NewFunc called with nil function")
	}
	return New(RunnerFunc(fn))
}

// Start launches the body in a new goroutine and blocks until that goroutine
// has signalled it is running. Start on a running Thread is a no-op.
// It also clears any earlier interruption request.
func (t *Thread) Start() {
	t.startMu.Lock()
	defer t.startMu.Unlock()

	if t.running.Load() {
		return
	}
	// A previous run may still be unwinding its deferred bookkeeping.
	t.Wait()

	t.mu.Lock()
	done := make(chan struct{})
	t.done = done
	t.interruptCh = make(chan struct{})
	t.interrupted.Store(false)
	t.mu.Unlock()

	go t.body(done)
	t.started.Wait()
}

func (t *Thread) body(done chan struct{}) {
	defer close(done)
	defer t.running.Store(false)

	t.running.Store(true)
	t.started.Notify()
	t.runner.Run(t)
}

// IsRunning reports whether the body is currently executing.
func (t *Thread) IsRunning() bool {
	return t.running.Load()
}

// RequestInterruption asks the body to stop. It is cooperative: the body
// has to observe IsInterruptionRequested or Interrupted.
func (t *Thread) RequestInterruption() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.interrupted.Swap(true) {
		return
	}
	close(t.interruptCh)
}

// IsInterruptionRequested reports whether RequestInterruption was called
// since the last Start.
func (t *Thread) IsInterruptionRequested() bool {
	return t.interrupted.Load()
}

// Interrupted returns a channel that is closed when interruption is requested.
func (t *Thread) Interrupted() <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.interruptCh
}

// Done returns a channel that is closed when the current run finishes.
// Before the first Start it returns a closed channel.
func (t *Thread) Done() <-chan struct{} {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done == nil {
		c := make(chan struct{})
		close(c)
		return c
	}
	return t.done
}

// Wait blocks until the body has returned. It returns immediately if the
// Thread was never started. A body must not Wait on its own Thread.
func (t *Thread) Wait() {
	<-t.Done()
}

// WaitTimeout is Wait bounded by timeout and reports whether the body returned.
func (t *Thread) WaitTimeout(timeout time.Duration) bool {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-t.Done():
		return true
	case <-timer.C:
		return false
	}
}

// Close requests interruption if the body is running and joins it.
func (t *Thread) Close() {
	if t.IsRunning() {
		t.RequestInterruption()
	}
	t.Wait()
}
