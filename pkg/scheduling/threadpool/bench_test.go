package threadpool

import (
	"fmt"
	"testing"

	"go.uber.org/zap"
)

func newBenchPool(b *testing.B, maxThreads int) *ThreadPool {
	b.Helper()
	p, err := NewWithConfig(Config{MaxThreadCount: maxThreads, Logger: zap.NewNop()})
	if err != nil {
		b.Fatal(err)
	}
	return p
}

// BenchmarkSubmit measures the overhead of task submission and execution.
func BenchmarkSubmit(b *testing.B) {
	p := newBenchPool(b, 4)
	defer p.Close()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = p.Submit(func() {})
		}
	})
	p.WaitForDone(-1)
}

// BenchmarkSubmitWithWork measures performance with actual work.
func BenchmarkSubmitWithWork(b *testing.B) {
	p := newBenchPool(b, 4)
	defer p.Close()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_, _ = p.Submit(func() {
				sum := 0
				for i := 0; i < 1000; i++ {
					sum += i
				}
				_ = sum
			})
		}
	})
	p.WaitForDone(-1)
}

// BenchmarkIdleHandOff measures the direct hand-off path to a parked worker.
func BenchmarkIdleHandOff(b *testing.B) {
	p := newBenchPool(b, 1)
	defer p.Close()

	done := make(chan struct{})
	task := NewTask(func() { done <- struct{}{} })

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = p.AddTask(task)
		<-done
	}
}

// BenchmarkBatch measures repeated fill-and-drain cycles, including the
// reset WaitForDone performs.
func BenchmarkBatch(b *testing.B) {
	for _, size := range []int{1, 4, 16} {
		b.Run(fmt.Sprintf("threads-%d", size), func(b *testing.B) {
			p := newBenchPool(b, size)
			defer p.Close()

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				for j := 0; j < 100; j++ {
					_, _ = p.Submit(func() {})
				}
				p.WaitForDone(-1)
			}
		})
	}
}
