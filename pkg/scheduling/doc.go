/*
Package scheduling groups the task execution and timing components of flowrt.

  - threadpool: a bounded pool of reusable worker threads with a FIFO
    overflow queue, idle expiry and quiescence waits
  - timer: a timer manager that dispatches one-shot, repeating, cron and
    condition timers onto a callback thread pool

Thread Pool:

	pool := threadpool.New()
	defer pool.Close()

	pool.Submit(func() {
		// Do work
	})
	pool.WaitForDone(-1)

Timers:

	m := timer.New()
	defer m.Close()

	t, _ := m.AddTimer(time.Second, heartbeat, true)
	t.Refresh()  // postpone the next firing by a full interval
	t.Cancel()

Callbacks never run on the manager's dispatch thread. Each due timer is
handed to the manager's thread pool as an ordinary task, so a slow callback
delays other callbacks only when the pool is saturated.
*/
package scheduling
