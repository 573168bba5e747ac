package timer

import (
	"sync"
	"time"

	"github.com/google/btree"
	"github.com/google/uuid"
	"go.uber.org/zap"

	rterrors "github.com/vnykmshr/flowrt/pkg/common/errors"
	"github.com/vnykmshr/flowrt/pkg/common/validation"
	"github.com/vnykmshr/flowrt/pkg/concurrency/thread"
	"github.com/vnykmshr/flowrt/pkg/metrics"
	"github.com/vnykmshr/flowrt/pkg/scheduling/threadpool"
)

// RolloverThreshold is how far the clock must move backwards between two
// polls before every pending timer is treated as due.
const RolloverThreshold = time.Hour

const btreeDegree = 16

// Config holds manager configuration.
type Config struct {
	// Name labels log lines and metrics. Defaults to "timers-" plus a short random id.
	Name string

	// Clock supplies the current time. Nil means SystemClock.
	Clock Clock

	// Pool configures the internal pool that runs callbacks. An empty
	// Pool.Name becomes Name+"-callbacks"; Logger and Metrics are inherited.
	Pool threadpool.Config

	// Logger receives dispatch and failure logs. Nil means zap.L().
	Logger *zap.Logger

	// Metrics records timer activity. Nil disables metrics.
	Metrics *metrics.Registry
}

// Manager keeps timers ordered by deadline and runs one dispatch goroutine
// that sleeps until the earliest deadline, then hands every due callback to
// an internal thread pool.
type Manager struct {
	name    string
	clock   Clock
	logger  *zap.Logger
	metrics timerMetrics
	pool    *threadpool.ThreadPool
	thread  *thread.Thread

	// wakeup carries at most one pending "earliest deadline changed" signal.
	wakeup chan struct{}

	mu     sync.Mutex
	timers *btree.BTreeG[*Timer]
	prev   time.Time
	nextID uint64
	closed bool
}

var (
	defaultOnce    sync.Once
	defaultManager *Manager
)

// Default returns a process-wide Manager created on first use. It is a
// convenience for code without access to an explicit Manager and is never
// closed.
func Default() *Manager {
	defaultOnce.Do(func() {
		defaultManager = New()
	})
	return defaultManager
}

// New creates a manager with default configuration.
func New() *Manager {
	m, err := NewWithConfig(Config{})
	if err != nil {
		panic(err)
	}
	return m
}

// NewWithConfig creates a manager and starts its dispatch goroutine.
func NewWithConfig(cfg Config) (*Manager, error) {
	if cfg.Name == "" {
		cfg.Name = "timers-" + uuid.NewString()[:8]
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock{}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.L()
	}
	poolCfg := cfg.Pool
	if poolCfg.Name == "" {
		poolCfg.Name = cfg.Name + "-callbacks"
	}
	if poolCfg.Logger == nil {
		poolCfg.Logger = cfg.Logger
	}
	if poolCfg.Metrics == nil {
		poolCfg.Metrics = cfg.Metrics
	}
	pool, err := threadpool.NewWithConfig(poolCfg)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		name:    cfg.Name,
		clock:   cfg.Clock,
		logger:  cfg.Logger,
		metrics: timerMetrics{registry: cfg.Metrics, name: cfg.Name},
		pool:    pool,
		wakeup:  make(chan struct{}, 1),
		timers:  btree.NewG(btreeDegree, less),
		prev:    cfg.Clock.Now(),
	}
	m.thread = thread.NewFunc(m.run)
	m.thread.Start()
	return m, nil
}

// Name returns the manager name used in logs and metrics.
func (m *Manager) Name() string {
	return m.name
}

// AddTimer registers cb to run interval from now, and every interval after
// that when repeating is set. Repeating timers need a positive interval.
func (m *Manager) AddTimer(interval time.Duration, cb func(), repeating bool) (*Timer, error) {
	if err := validateTimer(interval, cb, repeating); err != nil {
		return nil, err
	}
	t := &Timer{manager: m, interval: interval, repeating: repeating, cb: cb}
	if err := m.add(t); err != nil {
		return nil, err
	}
	return t, nil
}

// AddConditionTimer is AddTimer for callbacks tied to an owner. At fire
// time the callback is skipped unless guard reports the owner alive. The
// manager never keeps the owner alive itself.
func (m *Manager) AddConditionTimer(interval time.Duration, cb func(), guard Guard, repeating bool) (*Timer, error) {
	if err := validateTimer(interval, cb, repeating); err != nil {
		return nil, err
	}
	if err := validation.ValidateNotNil("timer", "guard", guard); err != nil {
		return nil, err
	}
	guarded := func() {
		if !guard.Alive() {
			m.metrics.skipped()
			return
		}
		cb()
	}
	t := &Timer{manager: m, interval: interval, repeating: repeating, cb: guarded}
	if err := m.add(t); err != nil {
		return nil, err
	}
	return t, nil
}

// Clear drops every pending timer without running it.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.timers.Ascend(func(t *Timer) bool {
		t.pending = false
		t.cb = nil
		return true
	})
	m.timers.Clear(false)
	m.metrics.pending(0)
}

// Len returns the number of pending timers.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.timers.Len()
}

// Close stops the dispatch goroutine, drops pending timers, and waits for
// callbacks already handed to the pool to finish. Close is idempotent.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.mu.Unlock()

	m.thread.Close()
	m.Clear()
	m.pool.Clear()
	m.pool.Close()
	m.logger.Info("timer manager closed", zap.String("manager", m.name))
}

func validateTimer(interval time.Duration, cb func(), repeating bool) error {
	if cb == nil {
		return rterrors.NewValidationError("timer", "callback", nil, "cannot be nil")
	}
	if repeating {
		return validation.ValidatePositiveDuration("timer", "interval", interval)
	}
	return validation.ValidateNonNegativeDuration("timer", "interval", interval)
}

func (m *Manager) add(t *Timer) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return rterrors.NewOperationError("timer", "AddTimer", rterrors.ErrClosed).
			WithContext(m.name)
	}
	m.nextID++
	t.id = m.nextID
	t.armLocked(m.clock.Now())
	front := m.insertLocked(t)
	m.metrics.scheduled()
	m.mu.Unlock()

	if front {
		m.wake()
	}
	return nil
}

// insertLocked adds t to the tree and reports whether it is now the
// earliest timer.
func (m *Manager) insertLocked(t *Timer) bool {
	t.pending = true
	m.timers.ReplaceOrInsert(t)
	m.metrics.pending(m.timers.Len())
	first, _ := m.timers.Min()
	return first == t
}

func (m *Manager) removeLocked(t *Timer) {
	m.timers.Delete(t)
	t.pending = false
	m.metrics.pending(m.timers.Len())
}

func (m *Manager) wake() {
	select {
	case m.wakeup <- struct{}{}:
	default:
	}
}

// run is the dispatch loop. It waits until the earliest deadline, an
// earlier timer is inserted, or the thread is interrupted.
func (m *Manager) run(t *thread.Thread) {
	for {
		var (
			timer   *time.Timer
			timeout <-chan time.Time
		)
		m.mu.Lock()
		if first, ok := m.timers.Min(); ok {
			timer = time.NewTimer(max(first.deadline.Sub(m.clock.Now()), 0))
			timeout = timer.C
		}
		m.mu.Unlock()

		select {
		case <-t.Interrupted():
			if timer != nil {
				timer.Stop()
			}
			return
		case <-m.wakeup:
		case <-timeout:
		}
		if timer != nil {
			timer.Stop()
		}

		m.dispatchExpired()
	}
}

// dispatchExpired collects due timers, re-arms repeating ones and submits
// every callback to the pool outside the lock.
func (m *Manager) dispatchExpired() {
	m.mu.Lock()
	now := m.clock.Now()
	rollover := now.Before(m.prev.Add(-RolloverThreshold))
	m.prev = now

	var due []*Timer
	for {
		first, ok := m.timers.Min()
		if !ok || (!rollover && first.deadline.After(now)) {
			break
		}
		m.timers.DeleteMin()
		due = append(due, first)
	}

	callbacks := make([]func(), 0, len(due))
	for _, t := range due {
		callbacks = append(callbacks, t.cb)
		if t.repeating {
			t.armLocked(now)
			m.timers.ReplaceOrInsert(t)
		} else {
			t.pending = false
			t.cb = nil
		}
	}
	m.metrics.pending(m.timers.Len())
	m.mu.Unlock()

	if rollover {
		m.metrics.rollover()
		m.logger.Warn("clock moved backwards, firing all pending timers",
			zap.String("manager", m.name),
			zap.Int("timers", len(due)),
		)
	}
	if len(callbacks) == 0 {
		return
	}
	m.logger.Debug("dispatching timers", zap.String("manager", m.name), zap.Int("count", len(callbacks)))
	m.metrics.fired(len(callbacks))
	for _, cb := range callbacks {
		if err := m.pool.AddTask(threadpool.NewTask(cb)); err != nil {
			m.logger.Error("timer callback dropped", zap.String("manager", m.name), zap.Error(err))
		}
	}
}
