// Package rwlock provides a reader/writer lock with explicit read and write
// acquisition, a single Unlock, and non-blocking try variants.
//
// The lock is reader-preferring: LockForRead only waits for a writer that
// currently holds the lock, never for writers that are waiting. Sustained read
// pressure can therefore starve writers. Use sync.RWMutex when writer
// preference is required.
package rwlock

import "sync"

// RWLock is a reader-preferring read/write lock. The zero value is an
// unlocked lock ready to use. An RWLock must not be copied after first use.
type RWLock struct {
	mu      sync.Mutex
	readers int
	writer  bool

	// lazily bound to mu so the zero value works
	readCond  *sync.Cond
	writeCond *sync.Cond
}

// New returns an unlocked RWLock.
func New() *RWLock {
	return &RWLock{}
}

// conds must be called with l.mu held.
func (l *RWLock) conds() {
	if l.readCond == nil {
		l.readCond = sync.NewCond(&l.mu)
		l.writeCond = sync.NewCond(&l.mu)
	}
}

// LockForRead blocks while a writer holds the lock, then registers a reader.
func (l *RWLock) LockForRead() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.conds()
	for l.writer {
		l.readCond.Wait()
	}
	l.readers++
}

// LockForWrite blocks while any reader or a writer holds the lock, then
// marks the lock writer-held.
func (l *RWLock) LockForWrite() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.conds()
	for l.writer || l.readers > 0 {
		l.writeCond.Wait()
	}
	l.writer = true
}

// TryLockForRead registers a reader unless a writer holds the lock.
func (l *RWLock) TryLockForRead() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.writer {
		return false
	}
	l.readers++
	return true
}

// TryLockForWrite takes the write lock if nobody holds the lock.
func (l *RWLock) TryLockForWrite() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.writer || l.readers > 0 {
		return false
	}
	l.writer = true
	return true
}

// Unlock releases the role the caller holds. The writer flag is checked
// first: if a writer holds the lock, the write lock is released and both
// readers and writers are woken. Otherwise one reader is released and, when
// the last reader leaves, a waiting writer is woken.
//
// Unlock panics if the lock is not held.
func (l *RWLock) Unlock() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.conds()
	switch {
	case l.writer:
		l.writer = false
		l.readCond.Broadcast()
		l.writeCond.Broadcast()
	case l.readers > 0:
		l.readers--
		if l.readers == 0 {
			l.writeCond.Broadcast()
		}
	default:
		panic("rwlock: unlock of unlocked RWLock")
	}
}

// Readers returns the number of readers currently holding the lock.
func (l *RWLock) Readers() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.readers
}

// WriterHeld reports whether a writer holds the lock.
func (l *RWLock) WriterHeld() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.writer
}

// RLocker returns a sync.Locker whose Lock takes the read lock.
func (l *RWLock) RLocker() sync.Locker {
	return readLocker{l}
}

// WLocker returns a sync.Locker whose Lock takes the write lock.
func (l *RWLock) WLocker() sync.Locker {
	return writeLocker{l}
}

type readLocker struct{ l *RWLock }

func (r readLocker) Lock()   { r.l.LockForRead() }
func (r readLocker) Unlock() { r.l.Unlock() }

type writeLocker struct{ l *RWLock }

func (w writeLocker) Lock()   { w.l.LockForWrite() }
func (w writeLocker) Unlock() { w.l.Unlock() }
