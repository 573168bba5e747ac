package testutil

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestEventually(t *testing.T) {
	t.Run("condition met immediately", func(t *testing.T) {
		called := false
		Eventually(t, func() bool {
			called = true
			return true
		}, 100*time.Millisecond, 10*time.Millisecond)

		if !called {
			t.Error("condition function should be called")
		}
	})

	t.Run("condition met after delay", func(t *testing.T) {
		var counter atomic.Int32
		go func() {
			time.Sleep(50 * time.Millisecond)
			counter.Store(1)
		}()

		Eventually(t, func() bool {
			return counter.Load() == 1
		}, 200*time.Millisecond, 10*time.Millisecond)
	})
}

func TestWaitForInt32(t *testing.T) {
	var value atomic.Int32

	go func() {
		time.Sleep(30 * time.Millisecond)
		value.Store(42)
	}()

	WaitForInt32(t, &value, 42, 200*time.Millisecond)
	AssertEqual(t, value.Load(), int32(42))
}

func TestRecorder(t *testing.T) {
	var r Recorder[int]
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			r.Record(v)
		}(i)
	}
	wg.Wait()

	AssertEqual(t, r.Len(), 10)
	values := r.Values()
	values[0] = -1
	AssertNotEqual(t, r.Values()[0], -1)
}

func TestMockClock(t *testing.T) {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := NewMockClock(start)

	AssertEqual(t, clock.Now(), start)

	clock.Advance(time.Minute)
	AssertEqual(t, clock.Now(), start.Add(time.Minute))

	clock.Advance(-2 * time.Hour)
	AssertEqual(t, clock.Now(), start.Add(time.Minute-2*time.Hour))

	clock.Set(start)
	AssertEqual(t, clock.Now(), start)
}

func TestMockWriter(t *testing.T) {
	w := NewMockWriter()
	n, err := w.Write([]byte("hello"))
	AssertNoError(t, err)
	AssertEqual(t, n, 5)
	AssertNoError(t, w.Sync())

	AssertEqual(t, w.String(), "hello")
	AssertEqual(t, w.WriteCount(), 1)
	AssertEqual(t, w.SyncCount(), 1)

	w.Reset()
	AssertEqual(t, w.String(), "")
	AssertEqual(t, w.WriteCount(), 0)
}

func TestWithTimeout(t *testing.T) {
	ctx, cancel := WithTimeout(t)
	defer cancel()

	deadline, ok := ctx.Deadline()
	if !ok {
		t.Fatal("context should have a deadline")
	}
	if time.Until(deadline) > TestTimeout {
		t.Errorf("deadline too far in the future: %v", deadline)
	}
}

func TestAssertNoError(t *testing.T) {
	AssertNoError(t, nil)
}

func TestAssertEqual(t *testing.T) {
	AssertEqual(t, 1, 1)
	AssertEqual(t, "a", "a")
	AssertEqual(t, true, true)
}

func TestAssertNotEqual(t *testing.T) {
	AssertNotEqual(t, 1, 2)
	AssertNotEqual(t, "a", "b")
}
