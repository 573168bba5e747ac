package threadpool

import (
	"runtime/debug"
	"time"

	"go.uber.org/zap"

	"github.com/vnykmshr/flowrt/pkg/concurrency/thread"
)

type workerState int

const (
	stateStarting workerState = iota
	stateActive
	stateIdle
	stateExpired
	numStates
)

func (s workerState) String() string {
	switch s {
	case stateStarting:
		return "starting"
	case stateActive:
		return "active"
	case stateIdle:
		return "idle"
	case stateExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// worker is one pool-owned goroutine. task and state are guarded by pool.mu.
type worker struct {
	id     uint64
	pool   *ThreadPool
	thread *thread.Thread
	task   *Task
	state  workerState

	// wake carries at most one pending hand-off signal.
	wake chan struct{}
}

func newWorker(p *ThreadPool, id uint64, task *Task) *worker {
	w := &worker{
		id:    id,
		pool:  p,
		task:  task,
		state: stateStarting,
		wake:  make(chan struct{}, 1),
	}
	w.thread = thread.NewFunc(w.run)
	return w
}

// run is the worker loop. It holds pool.mu except while executing a task
// or waiting for a hand-off.
func (w *worker) run(t *thread.Thread) {
	p := w.pool
	p.mu.Lock()
	defer p.mu.Unlock()

	p.setState(w, stateActive)
	for {
		if task := w.task; task != nil {
			w.task = nil
			p.mu.Unlock()
			ok := p.execute(w, task)
			p.mu.Lock()
			if !ok {
				p.expireLocked(w)
				// Queued work must not strand behind the failed worker.
				p.startQueuedLocked(w)
				p.updateGaugesLocked()
				return
			}
		}

		if p.exiting || p.tooManyThreadsActiveLocked() {
			p.expireLocked(w)
			return
		}

		if len(p.queue) > 0 {
			w.task = p.popLocked()
			p.updateGaugesLocked()
			continue
		}

		p.setState(w, stateIdle)
		p.updateGaugesLocked()
		p.notifyIfQuietLocked()
		expiry := p.expiry

		p.mu.Unlock()
		w.waitForWork(t, expiry)
		p.mu.Lock()

		if w.state == stateIdle {
			p.expireLocked(w)
			return
		}
		// A hand-off raced with the timeout; drop its leftover signal.
		select {
		case <-w.wake:
		default:
		}
	}
}

func (w *worker) waitForWork(t *thread.Thread, expiry time.Duration) {
	var timeout <-chan time.Time
	if expiry >= 0 {
		timer := time.NewTimer(expiry)
		defer timer.Stop()
		timeout = timer.C
	}
	select {
	case <-w.wake:
	case <-timeout:
	case <-t.Interrupted():
	}
}

func (w *worker) signal() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// execute runs task outside the pool lock and reports whether it returned
// normally. A panic is logged exactly once and handed to the PanicHandler.
func (p *ThreadPool) execute(w *worker, task *Task) (ok bool) {
	start := time.Now()
	defer func() {
		r := recover()
		ok = r == nil
		p.metrics.taskExecuted(time.Since(start), !ok)
		p.executed.Add(1)
		if ok {
			return
		}
		p.failed.Add(1)
		p.logger.Error("task panicked",
			zap.String("pool", p.name),
			zap.Uint64("worker", w.id),
			zap.String("task", task.Name()),
			zap.Any("panic", r),
			zap.ByteString("stack", debug.Stack()),
		)
		if p.panicHandler != nil {
			p.panicHandler(task, r)
		}
	}()
	task.fn()
	return true
}
