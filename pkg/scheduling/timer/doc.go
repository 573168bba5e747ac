/*
Package timer provides a deadline-ordered timer manager that runs due
callbacks on an internal thread pool.

A Manager keeps its timers in a B-tree ordered by (deadline, id) and owns a
single dispatch goroutine. The goroutine sleeps until the earliest deadline,
or until a new earliest timer is inserted, collects every due timer under
the lock and hands the callbacks to a threadpool.ThreadPool. Firing latency
therefore does not depend on how long callbacks take.

Basic usage:

	m, err := timer.NewWithConfig(timer.Config{Name: "sessions"})
	if err != nil {
		return err
	}
	defer m.Close()

	t, _ := m.AddTimer(30*time.Second, expireSession, false)
	// activity seen: push the deadline out by a full interval
	t.Refresh()

Repeating and cron timers:

	m.AddTimer(time.Minute, flushStats, true)
	m.AddCronTimer("0 0/5 * * * *", rotateLogs) // every five minutes

Cron expressions are parsed by github.com/robfig/cron/v3 and accept an
optional seconds field and descriptors such as "@hourly".

Refresh and Reset:

Refresh moves a pending timer to now plus its interval. Reset changes the
interval; with fromNow=false the new interval counts from the start of the
current period, not from now, so a timer armed at T with Reset(d, false)
becomes due at T+d.

Condition timers:

AddConditionTimer checks a Guard when the timer fires and skips the callback
if the owner is gone. Use a Liveness token that the owner releases on
shutdown, or WeakGuard to follow the reachability of a pointer without
keeping it alive.

Clock rollover:

If the clock reads more than RolloverThreshold earlier than at the previous
poll, every pending timer is fired at once instead of waiting for deadlines
that may now be hours away.

Failures:

Callbacks run on the manager's pool, so a panicking callback is logged once
and handled like any other failed task.

Default manager:

Default returns a lazily created process-wide Manager. Prefer passing an
explicit Manager (see flowrt.Runtime); Default exists for code that has no
such context.
*/
package timer
