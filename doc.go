/*
Package flowrt provides an in-process concurrency runtime: an elastic
thread pool and a deadline-ordered timer manager, plus the primitives
they are built on.

Concurrency primitives (pkg/concurrency):
  - semaphore: counting signal with timed and context-aware waits
  - rwlock: reader-preferring read/write lock
  - thread: goroutine wrapper with synchronous start, cooperative interruption and join

Scheduling (pkg/scheduling):
  - threadpool: workers started on demand, idle hand-off, expiry, quiescence wait
  - timer: one-shot, repeating, cron and condition timers dispatched through a pool

Supporting packages:
  - config: JSON/YAML/TOML and environment configuration
  - logger: zap logger construction
  - metrics: Prometheus instrumentation

Runtime bundles one pool and one timer manager built from a config.Config
and is the explicit context to pass to code that needs a shared scheduler.

Example usage:

	import (
		"github.com/vnykmshr/flowrt"
		"github.com/vnykmshr/flowrt/pkg/config"
	)

	rt, err := flowrt.New(config.Default())
	if err != nil {
		return err
	}
	defer rt.Close()

	rt.Pool().Submit(func() { processBatch() })
	rt.Timers().AddTimer(time.Minute, flushStats, true)
*/
package flowrt
