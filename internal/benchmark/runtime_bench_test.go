// Package benchmark compares flowrt components against plain goroutine and
// standard library equivalents.
package benchmark

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/vnykmshr/flowrt/pkg/scheduling/threadpool"
	"github.com/vnykmshr/flowrt/pkg/scheduling/timer"
)

func threadLabel(n int) string {
	return fmt.Sprintf("threads-%d", n)
}

func newPool(b *testing.B, threads int) *threadpool.ThreadPool {
	b.Helper()
	pool, err := threadpool.NewWithConfig(threadpool.Config{
		MaxThreadCount: threads,
		ExpiryTimeout:  threadpool.NeverExpire,
		Logger:         zap.NewNop(),
	})
	if err != nil {
		b.Fatalf("failed to create pool: %v", err)
	}
	b.Cleanup(pool.Close)
	return pool
}

// BenchmarkThreadPoolThroughput measures end-to-end task execution.
func BenchmarkThreadPoolThroughput(b *testing.B) {
	for _, threads := range []int{1, 2, 4, 8} {
		b.Run(threadLabel(threads), func(b *testing.B) {
			pool := newPool(b, threads)
			var completed atomic.Int64

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, _ = pool.Submit(func() { completed.Add(1) })
			}
			pool.WaitForDone(-1)
			b.StopTimer()

			if got := completed.Load(); got != int64(b.N) {
				b.Fatalf("completed %d of %d tasks", got, b.N)
			}
		})
	}
}

// BenchmarkGoroutinePerTask is the unbounded baseline for ThreadPoolThroughput.
func BenchmarkGoroutinePerTask(b *testing.B) {
	var wg sync.WaitGroup
	var completed atomic.Int64

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			completed.Add(1)
		}()
	}
	wg.Wait()
}

// BenchmarkThreadPoolContention measures submission from many goroutines.
func BenchmarkThreadPoolContention(b *testing.B) {
	pool := newPool(b, 8)

	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = pool.Submit(func() {})
		}
	})
	pool.WaitForDone(-1)
}

// BenchmarkThreadPoolWithWork measures performance with actual work.
func BenchmarkThreadPoolWithWork(b *testing.B) {
	for _, work := range []time.Duration{0, time.Microsecond, 10 * time.Microsecond} {
		label := "NoWork"
		if work > 0 {
			label = work.String()
		}

		b.Run(label, func(b *testing.B) {
			pool := newPool(b, 4)

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_, _ = pool.Submit(func() {
					if work > 0 {
						time.Sleep(work)
					}
				})
			}
			pool.WaitForDone(-1)
		})
	}
}

// BenchmarkTimerAddCancel measures timer insertion and removal in the
// ordered set.
func BenchmarkTimerAddCancel(b *testing.B) {
	m, err := timer.NewWithConfig(timer.Config{Logger: zap.NewNop()})
	if err != nil {
		b.Fatalf("failed to create manager: %v", err)
	}
	defer m.Close()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		t, err := m.AddTimer(time.Hour, func() {}, false)
		if err != nil {
			b.Fatal(err)
		}
		t.Cancel()
	}
}

// BenchmarkTimeAfterFuncAddStop is the runtime timer baseline for
// TimerAddCancel.
func BenchmarkTimeAfterFuncAddStop(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		t := time.AfterFunc(time.Hour, func() {})
		t.Stop()
	}
}

// BenchmarkTimerRefresh measures re-arming a pending timer among many.
func BenchmarkTimerRefresh(b *testing.B) {
	for _, pending := range []int{10, 1000} {
		b.Run(fmt.Sprintf("pending-%d", pending), func(b *testing.B) {
			m, err := timer.NewWithConfig(timer.Config{Logger: zap.NewNop()})
			if err != nil {
				b.Fatalf("failed to create manager: %v", err)
			}
			defer m.Close()

			var last *timer.Timer
			for i := 0; i < pending; i++ {
				if last, err = m.AddTimer(time.Hour+time.Duration(i), func() {}, true); err != nil {
					b.Fatal(err)
				}
			}

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				last.Refresh()
			}
		})
	}
}
