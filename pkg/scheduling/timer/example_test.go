package timer_test

import (
	"fmt"
	"sync"
	"time"

	"github.com/vnykmshr/flowrt/pkg/scheduling/threadpool"
	"github.com/vnykmshr/flowrt/pkg/scheduling/timer"
)

// Example demonstrates timers firing in deadline order.
func Example() {
	m, err := timer.NewWithConfig(timer.Config{Pool: threadpool.Config{MaxThreadCount: 1}})
	if err != nil {
		fmt.Println("config error:", err)
		return
	}
	defer m.Close()

	var wg sync.WaitGroup
	for _, ms := range []int{30, 10, 20} {
		ms := ms
		wg.Add(1)
		_, _ = m.AddTimer(time.Duration(ms)*time.Millisecond, func() {
			defer wg.Done()
			fmt.Printf("fired %dms\n", ms)
		}, false)
	}
	wg.Wait()

	// Output:
	// fired 10ms
	// fired 20ms
	// fired 30ms
}

// Example_cancel stops a timer before it fires.
func Example_cancel() {
	m := timer.New()
	defer m.Close()

	t, _ := m.AddTimer(time.Hour, func() { fmt.Println("never") }, false)
	fmt.Println("first cancel:", t.Cancel())
	fmt.Println("second cancel:", t.Cancel())

	// Output:
	// first cancel: true
	// second cancel: false
}

// Example_liveness ties a repeating timer to an owner that can go away.
func Example_liveness() {
	m := timer.New()
	defer m.Close()

	owner := timer.NewLiveness()
	ticks := make(chan struct{}, 16)
	t, _ := m.AddConditionTimer(5*time.Millisecond, func() {
		ticks <- struct{}{}
	}, owner, true)

	<-ticks
	owner.Release()
	fmt.Println("still registered:", t.Pending())
	t.Cancel()

	// Output: still registered: true
}
