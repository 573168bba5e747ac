package rwlock

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vnykmshr/flowrt/internal/testutil"
)

func TestZeroValue(t *testing.T) {
	var l RWLock
	l.LockForWrite()
	testutil.AssertEqual(t, l.WriterHeld(), true)
	l.Unlock()
	testutil.AssertEqual(t, l.WriterHeld(), false)
}

func TestMultipleReaders(t *testing.T) {
	l := New()
	l.LockForRead()
	l.LockForRead()
	testutil.AssertEqual(t, l.TryLockForRead(), true)
	testutil.AssertEqual(t, l.Readers(), 3)

	testutil.AssertEqual(t, l.TryLockForWrite(), false)

	l.Unlock()
	l.Unlock()
	l.Unlock()
	testutil.AssertEqual(t, l.Readers(), 0)
	testutil.AssertEqual(t, l.TryLockForWrite(), true)
	l.Unlock()
}

func TestWriterExcludesEveryone(t *testing.T) {
	l := New()
	l.LockForWrite()

	testutil.AssertEqual(t, l.TryLockForRead(), false)
	testutil.AssertEqual(t, l.TryLockForWrite(), false)

	l.Unlock()
	testutil.AssertEqual(t, l.TryLockForRead(), true)
	l.Unlock()
}

func TestWriterReleaseWakesReaders(t *testing.T) {
	l := New()
	l.LockForWrite()

	var acquired atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.LockForRead()
			acquired.Add(1)
		}()
	}

	time.Sleep(20 * time.Millisecond)
	testutil.AssertEqual(t, acquired.Load(), int32(0))

	l.Unlock()
	wg.Wait()

	testutil.AssertEqual(t, acquired.Load(), int32(3))
	testutil.AssertEqual(t, l.Readers(), 3)
	for i := 0; i < 3; i++ {
		l.Unlock()
	}
}

func TestLastReaderWakesWriter(t *testing.T) {
	l := New()
	l.LockForRead()
	l.LockForRead()

	done := make(chan struct{})
	go func() {
		l.LockForWrite()
		close(done)
	}()

	l.Unlock()
	select {
	case <-done:
		t.Fatal("writer acquired while a reader still holds the lock")
	case <-time.After(20 * time.Millisecond):
	}

	l.Unlock()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("writer was not woken by the last reader")
	}
	l.Unlock()
}

// Readers are admitted while a writer is queued. This is the documented
// reader-preferring policy, not an accident.
func TestReaderPreferringPolicy(t *testing.T) {
	l := New()
	l.LockForRead()

	writerDone := make(chan struct{})
	go func() {
		l.LockForWrite()
		close(writerDone)
	}()
	time.Sleep(20 * time.Millisecond)

	testutil.AssertEqual(t, l.TryLockForRead(), true)
	readerDone := make(chan struct{})
	go func() {
		l.LockForRead()
		close(readerDone)
	}()

	select {
	case <-readerDone:
	case <-time.After(time.Second):
		t.Fatal("reader should not wait for a queued writer")
	}

	for i := 0; i < 3; i++ {
		l.Unlock()
	}
	select {
	case <-writerDone:
	case <-time.After(time.Second):
		t.Fatal("writer never acquired the lock")
	}
	l.Unlock()
}

func TestUnlockUnheldPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic")
		}
	}()
	New().Unlock()
}

func TestLockers(t *testing.T) {
	l := New()
	var counter int
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			w := l.WLocker()
			w.Lock()
			counter++
			w.Unlock()
		}()
		go func() {
			defer wg.Done()
			r := l.RLocker()
			r.Lock()
			_ = counter
			r.Unlock()
		}()
	}
	wg.Wait()

	testutil.AssertEqual(t, counter, 50)
	testutil.AssertEqual(t, l.Readers(), 0)
	testutil.AssertEqual(t, l.WriterHeld(), false)
}
