package timer

import (
	"time"

	"github.com/robfig/cron/v3"

	"github.com/vnykmshr/flowrt/pkg/common/validation"
)

// Timer is a one-shot or repeating callback registered with a Manager.
// Callers may keep the handle after it fires; all methods stay safe to call.
type Timer struct {
	manager *Manager
	id      uint64

	// Guarded by manager.mu. deadline and id form the ordering key and
	// only change while the timer is out of the tree.
	interval  time.Duration
	start     time.Time
	deadline  time.Time
	repeating bool
	pending   bool
	cb        func()
	schedule  cron.Schedule
}

// less orders timers by deadline, then by id so equal deadlines stay distinct.
func less(a, b *Timer) bool {
	if a.deadline.Equal(b.deadline) {
		return a.id < b.id
	}
	return a.deadline.Before(b.deadline)
}

// armLocked sets the next deadline measured from now.
func (t *Timer) armLocked(now time.Time) {
	t.start = now
	if t.schedule != nil {
		t.deadline = t.schedule.Next(now)
		t.interval = t.deadline.Sub(now)
		return
	}
	t.deadline = now.Add(t.interval)
}

// ID returns the manager-assigned id, unique per Manager.
func (t *Timer) ID() uint64 {
	return t.id
}

// Cancel stops the timer. It reports whether the timer was still pending,
// so a second Cancel returns false.
func (t *Timer) Cancel() bool {
	m := t.manager
	m.mu.Lock()
	defer m.mu.Unlock()

	if !t.pending {
		return false
	}
	m.removeLocked(t)
	t.cb = nil
	m.metrics.canceled()
	return true
}

// Refresh re-arms a pending timer one full interval from now. Cron timers
// move to their next scheduled time. It reports false if the timer is no
// longer pending.
func (t *Timer) Refresh() bool {
	m := t.manager
	m.mu.Lock()
	if !t.pending {
		m.mu.Unlock()
		return false
	}
	m.removeLocked(t)
	t.armLocked(m.clock.Now())
	front := m.insertLocked(t)
	m.mu.Unlock()

	if front {
		m.wake()
	}
	return true
}

// Reset changes the interval of a pending timer. With fromNow the new
// deadline is now+interval; otherwise it is the time the current period
// started plus interval, so shrinking the interval can make the timer due
// immediately. Resetting to the same interval without fromNow changes
// nothing and returns false, as does resetting a cron timer or one that is
// no longer pending.
func (t *Timer) Reset(interval time.Duration, fromNow bool) (bool, error) {
	if err := validation.ValidateNonNegativeDuration("timer", "interval", interval); err != nil {
		return false, err
	}
	m := t.manager
	m.mu.Lock()
	if t.repeating && t.schedule == nil {
		if err := validation.ValidatePositiveDuration("timer", "interval", interval); err != nil {
			m.mu.Unlock()
			return false, err
		}
	}
	if !t.pending || t.schedule != nil || (interval == t.interval && !fromNow) {
		m.mu.Unlock()
		return false, nil
	}

	m.removeLocked(t)
	if fromNow {
		t.start = m.clock.Now()
	}
	t.interval = interval
	t.deadline = t.start.Add(interval)
	front := m.insertLocked(t)
	m.mu.Unlock()

	if front {
		m.wake()
	}
	return true, nil
}

// Pending reports whether the timer is waiting for its deadline.
func (t *Timer) Pending() bool {
	t.manager.mu.Lock()
	defer t.manager.mu.Unlock()
	return t.pending
}

// Interval returns the timer period. For cron timers it is the gap between
// the last arm time and the next scheduled time.
func (t *Timer) Interval() time.Duration {
	t.manager.mu.Lock()
	defer t.manager.mu.Unlock()
	return t.interval
}

// Deadline returns the next (or, once fired, the last) due time.
func (t *Timer) Deadline() time.Time {
	t.manager.mu.Lock()
	defer t.manager.mu.Unlock()
	return t.deadline
}

// Repeating reports whether the timer re-arms after firing.
func (t *Timer) Repeating() bool {
	return t.repeating
}
