package timer

import (
	"sync/atomic"
	"weak"
)

// Guard reports whether the owner of a condition timer still exists. It is
// checked on the pool worker right before the callback would run.
type Guard interface {
	Alive() bool
}

// GuardFunc adapts a function to the Guard interface.
type GuardFunc func() bool

// Alive implements Guard.
func (f GuardFunc) Alive() bool {
	return f()
}

// Liveness is an explicit token shared between an owner and the timers it
// registers. The owner calls Release when it goes away.
type Liveness struct {
	released atomic.Bool
}

// NewLiveness returns a live token.
func NewLiveness() *Liveness {
	return &Liveness{}
}

// Release marks the owner as gone. Timers guarded by l stop running their
// callbacks from the next firing on.
func (l *Liveness) Release() {
	l.released.Store(true)
}

// Alive implements Guard.
func (l *Liveness) Alive() bool {
	return !l.released.Load()
}

// WeakGuard returns a Guard that stays alive while p is reachable. The
// manager holds only a weak pointer, so the timer never extends the
// lifetime of *p.
func WeakGuard[T any](p *T) Guard {
	w := weak.Make(p)
	return GuardFunc(func() bool {
		return w.Value() != nil
	})
}
