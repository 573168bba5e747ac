package threadpool

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	rterrors "github.com/vnykmshr/flowrt/pkg/common/errors"
	"github.com/vnykmshr/flowrt/pkg/common/validation"
)

// ThreadPool is an elastic set of reusable workers consuming a FIFO task
// queue. Workers are started on demand up to MaxThreadCount, hand off to
// idle workers before spawning new ones, and exit after ExpiryTimeout
// without work.
type ThreadPool struct {
	name         string
	logger       *zap.Logger
	metrics      poolMetrics
	panicHandler func(*Task, interface{})

	mu         sync.Mutex
	queue      []*Task
	workers    map[uint64]*worker
	idle       []*worker // LIFO; mirrors workers in stateIdle
	counts     [numStates]int
	maxThreads int
	expiry     time.Duration
	closed     bool
	exiting    bool
	nextID     uint64

	// quiet is closed and replaced whenever the pool becomes quiescent.
	quiet chan struct{}
	// resetDone is closed when the reset in flight has joined every worker.
	resetDone chan struct{}

	submitted atomic.Uint64
	executed  atomic.Uint64
	failed    atomic.Uint64
	canceled  atomic.Uint64
}

// Stats is a point-in-time snapshot of pool state.
type Stats struct {
	Name           string
	MaxThreadCount int
	ExpiryTimeout  time.Duration
	ActiveThreads  int
	IdleThreads    int
	ExpiredThreads int
	QueuedTasks    int
	Submitted      uint64
	Executed       uint64
	Failed         uint64
	Canceled       uint64
}

// New creates a pool with DefaultConfig.
func New() *ThreadPool {
	p, err := NewWithConfig(Config{})
	if err != nil {
		// The zero Config always validates.
		panic(err)
	}
	return p
}

// NewWithConfig creates a pool with the specified configuration.
func NewWithConfig(config Config) (*ThreadPool, error) {
	cfg, err := config.withDefaults()
	if err != nil {
		return nil, err
	}
	p := &ThreadPool{
		name:         cfg.Name,
		logger:       cfg.Logger,
		metrics:      poolMetrics{registry: cfg.Metrics, name: cfg.Name},
		panicHandler: cfg.PanicHandler,
		workers:      make(map[uint64]*worker),
		maxThreads:   cfg.MaxThreadCount,
		expiry:       cfg.ExpiryTimeout,
		quiet:        make(chan struct{}),
	}
	return p, nil
}

// Name returns the pool name used in logs and metrics.
func (p *ThreadPool) Name() string {
	return p.name
}

// AddTask queues task for execution. Adding a task that is already queued
// is a no-op. The task is handed to an idle worker or a new worker when
// capacity allows, and appended to the pending queue otherwise.
func (p *ThreadPool) AddTask(task *Task) error {
	if !task.valid() {
		return rterrors.NewValidationError("threadpool", "task", nil, "cannot be nil").
			WithHint("create tasks with NewTask")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return rterrors.NewOperationError("threadpool", "AddTask", rterrors.ErrClosed).
			WithContext(p.name)
	}
	if slices.Contains(p.queue, task) {
		return nil
	}

	p.submitted.Add(1)
	p.metrics.taskSubmitted()
	if !p.tryStartLocked(task, nil) {
		p.queue = append(p.queue, task)
	}
	p.updateGaugesLocked()
	return nil
}

// Submit wraps fn in a new Task and adds it.
func (p *ThreadPool) Submit(fn func()) (*Task, error) {
	task := NewTask(fn)
	if err := p.AddTask(task); err != nil {
		return nil, err
	}
	return task, nil
}

// TryStartTask starts task immediately on an idle or new worker. It never
// queues, and returns false if the pool is closed or at capacity.
func (p *ThreadPool) TryStartTask(task *Task) bool {
	if !task.valid() {
		return false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || !p.tryStartLocked(task, nil) {
		return false
	}
	p.submitted.Add(1)
	p.metrics.taskSubmitted()
	p.updateGaugesLocked()
	return true
}

// Cancel removes task from the pending queue. It has no effect on a task a
// worker has already picked up, and reports whether the task was removed.
func (p *ThreadPool) Cancel(task *Task) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	i := slices.Index(p.queue, task)
	if i < 0 {
		return false
	}
	p.queue = slices.Delete(p.queue, i, i+1)
	p.canceled.Add(1)
	p.metrics.tasksCanceled(1)
	p.updateGaugesLocked()
	p.notifyIfQuietLocked()
	return true
}

// Clear discards every task still waiting in the queue.
func (p *ThreadPool) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := len(p.queue)
	clear(p.queue)
	p.queue = p.queue[:0]
	p.canceled.Add(uint64(n))
	p.metrics.tasksCanceled(n)
	p.updateGaugesLocked()
	p.notifyIfQuietLocked()
}

// SetMaxThreadCount changes the worker cap. Raising it starts queued tasks
// right away; lowering it lets surplus workers exit after their current task.
func (p *ThreadPool) SetMaxThreadCount(n int) error {
	if err := validation.ValidatePositive("threadpool", "MaxThreadCount", n); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.maxThreads = n
	p.startQueuedLocked(nil)
	p.updateGaugesLocked()
	return nil
}

// MaxThreadCount returns the current worker cap.
func (p *ThreadPool) MaxThreadCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.maxThreads
}

// SetExpiryTimeout changes how long idle workers wait before exiting.
// Workers already waiting keep their previous deadline. Negative means never.
func (p *ThreadPool) SetExpiryTimeout(d time.Duration) {
	if d < 0 {
		d = NeverExpire
	}
	p.mu.Lock()
	p.expiry = d
	p.mu.Unlock()
}

// ExpiryTimeout returns the idle expiry, or NeverExpire.
func (p *ThreadPool) ExpiryTimeout() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.expiry
}

// ActiveThreadCount returns the number of workers that are neither idle
// nor expired.
func (p *ThreadPool) ActiveThreadCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.activeLocked()
}

// WorkerCount returns the size of the worker registry, including expired
// workers that have not been reaped yet.
func (p *ThreadPool) WorkerCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.workers)
}

// QueueSize returns the number of tasks waiting for a worker.
func (p *ThreadPool) QueueSize() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// Stats returns a snapshot of the pool state and lifetime counters.
func (p *ThreadPool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{
		Name:           p.name,
		MaxThreadCount: p.maxThreads,
		ExpiryTimeout:  p.expiry,
		ActiveThreads:  p.activeLocked(),
		IdleThreads:    p.counts[stateIdle],
		ExpiredThreads: p.counts[stateExpired],
		QueuedTasks:    len(p.queue),
		Submitted:      p.submitted.Load(),
		Executed:       p.executed.Load(),
		Failed:         p.failed.Load(),
		Canceled:       p.canceled.Load(),
	}
}

// WaitForDone blocks until the queue is empty and no worker is active, or
// until timeout elapses. A negative timeout waits indefinitely. On success
// every worker is joined and discarded, so the next batch of work starts
// from a clean pool. It reports whether the pool became quiescent.
//
// A task must not call WaitForDone on the pool running it.
func (p *ThreadPool) WaitForDone(timeout time.Duration) bool {
	var deadline <-chan time.Time
	if timeout >= 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	p.mu.Lock()
	for !p.quiescentLocked() {
		quiet := p.quiet
		p.mu.Unlock()
		select {
		case <-quiet:
			p.mu.Lock()
		case <-deadline:
			p.mu.Lock()
			if !p.quiescentLocked() {
				p.mu.Unlock()
				return false
			}
		}
	}
	p.mu.Unlock()

	p.reset()
	return true
}

// Close stops accepting tasks, waits for queued and running tasks to finish
// and joins every worker. Close is idempotent.
func (p *ThreadPool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	// A concurrent WaitForDone may own the reset and restart tasks queued
	// while it ran, so repeat until nothing is queued or registered.
	for {
		p.WaitForDone(-1)
		p.mu.Lock()
		drained := len(p.queue) == 0 && len(p.workers) == 0
		p.mu.Unlock()
		if drained {
			break
		}
	}
	p.logger.Info("thread pool closed",
		zap.String("pool", p.name),
		zap.Uint64("executed", p.executed.Load()),
		zap.Uint64("failed", p.failed.Load()),
	)
}

// reset interrupts idle workers, joins every worker and empties the registry.
// Tasks added meanwhile stay queued and are started once reset completes.
// A reset that finds another in flight waits for it instead of starting one.
func (p *ThreadPool) reset() {
	p.mu.Lock()
	if p.exiting {
		done := p.resetDone
		p.mu.Unlock()
		<-done
		return
	}
	p.exiting = true
	done := make(chan struct{})
	p.resetDone = done
	defer close(done)
	workers := make([]*worker, 0, len(p.workers))
	for _, w := range p.workers {
		w.thread.RequestInterruption()
		workers = append(workers, w)
	}
	p.mu.Unlock()

	for _, w := range workers {
		w.thread.Wait()
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, w := range workers {
		p.removeLocked(w)
	}
	p.exiting = false
	p.startQueuedLocked(nil)
	p.updateGaugesLocked()
}

// tryStartLocked hands task to the most recently idled worker, or spawns a
// worker when none is idle and the cap allows it. self is the calling worker
// when a worker starts tasks on its way out, nil otherwise.
func (p *ThreadPool) tryStartLocked(task *Task, self *worker) bool {
	if p.exiting || p.activeLocked() >= p.maxThreads {
		return false
	}

	if n := len(p.idle); n > 0 {
		w := p.idle[n-1]
		w.task = task
		p.setState(w, stateActive)
		w.signal()
		return true
	}

	p.reapExpiredLocked(self)

	p.nextID++
	w := newWorker(p, p.nextID, task)
	p.workers[w.id] = w
	p.counts[stateStarting]++
	p.metrics.workerSpawned()
	p.logger.Debug("worker started", zap.String("pool", p.name), zap.Uint64("worker", w.id))
	w.thread.Start()
	return true
}

// startQueuedLocked starts queued tasks in FIFO order while capacity allows.
func (p *ThreadPool) startQueuedLocked(self *worker) {
	for len(p.queue) > 0 && p.tryStartLocked(p.queue[0], self) {
		p.popLocked()
	}
}

func (p *ThreadPool) popLocked() *Task {
	task := p.queue[0]
	p.queue[0] = nil
	p.queue = p.queue[1:]
	return task
}

// reapExpiredLocked joins expired workers other than self and removes them
// from the registry. An expired worker never takes the lock again, so joining
// here is safe. self is the worker calling from its own exit path, if any; it
// stays registered until a later reap or reset joins it.
func (p *ThreadPool) reapExpiredLocked(self *worker) {
	if p.counts[stateExpired] == 0 {
		return
	}
	for _, w := range p.workers {
		if w.state == stateExpired && w != self {
			w.thread.Wait()
			p.removeLocked(w)
		}
	}
}

// setState moves a registered worker to s. It is the only place per-state
// counters and the idle stack change for registered workers.
func (p *ThreadPool) setState(w *worker, s workerState) {
	if _, ok := p.workers[w.id]; !ok || w.state == s {
		return
	}
	if w.state == stateIdle {
		p.removeIdleLocked(w)
	}
	p.counts[w.state]--
	w.state = s
	p.counts[s]++
	if s == stateIdle {
		p.idle = append(p.idle, w)
	}
}

func (p *ThreadPool) removeLocked(w *worker) {
	if _, ok := p.workers[w.id]; !ok {
		return
	}
	if w.state == stateIdle {
		p.removeIdleLocked(w)
	}
	p.counts[w.state]--
	delete(p.workers, w.id)
}

func (p *ThreadPool) removeIdleLocked(w *worker) {
	if i := slices.Index(p.idle, w); i >= 0 {
		p.idle = slices.Delete(p.idle, i, i+1)
	}
}

func (p *ThreadPool) expireLocked(w *worker) {
	p.setState(w, stateExpired)
	p.metrics.workerExpired()
	p.logger.Debug("worker expired", zap.String("pool", p.name), zap.Uint64("worker", w.id))
	p.updateGaugesLocked()
	p.notifyIfQuietLocked()
}

func (p *ThreadPool) activeLocked() int {
	return p.counts[stateStarting] + p.counts[stateActive]
}

func (p *ThreadPool) tooManyThreadsActiveLocked() bool {
	active := p.activeLocked()
	return active > p.maxThreads && active > 1
}

func (p *ThreadPool) quiescentLocked() bool {
	return len(p.queue) == 0 && p.activeLocked() == 0
}

func (p *ThreadPool) notifyIfQuietLocked() {
	if p.quiescentLocked() {
		close(p.quiet)
		p.quiet = make(chan struct{})
	}
}

func (p *ThreadPool) updateGaugesLocked() {
	p.metrics.gauges(p.activeLocked(), p.counts[stateIdle], len(p.queue))
}
