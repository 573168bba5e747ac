// Package metrics provides Prometheus instrumentation for flowrt components.
//
// A Registry is handed to a thread pool or timer manager through its Config.
// Components treat a nil Registry as "metrics off", so instrumentation costs
// nothing unless it is asked for.
//
// # Quick Start
//
//	reg := prometheus.NewRegistry()
//	m := metrics.NewRegistry(reg)
//
//	pool, _ := threadpool.NewWithConfig(threadpool.Config{Name: "io", Metrics: m})
//	timers, _ := timer.NewWithConfig(timer.Config{Name: "ticks", Metrics: m})
//
// Then expose metrics via HTTP:
//
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
//
// # Available Metrics
//
// ## Thread Pool Metrics (label pool_name)
//
//   - flowrt_threadpool_workers_spawned_total
//   - flowrt_threadpool_workers_expired_total
//   - flowrt_threadpool_tasks_submitted_total
//   - flowrt_threadpool_tasks_executed_total
//   - flowrt_threadpool_tasks_failed_total
//   - flowrt_threadpool_tasks_canceled_total
//   - flowrt_threadpool_task_duration_seconds
//   - flowrt_threadpool_active_workers
//   - flowrt_threadpool_idle_workers
//   - flowrt_threadpool_queued_tasks
//
// ## Timer Metrics (label manager_name)
//
//   - flowrt_timer_scheduled_total
//   - flowrt_timer_fired_total
//   - flowrt_timer_canceled_total
//   - flowrt_timer_skipped_total
//   - flowrt_timer_pending
//   - flowrt_timer_clock_rollovers_total
//
// # Configuration
//
//	config := metrics.Config{
//		Enabled:   true,
//		Registry:  prometheus.DefaultRegisterer,
//		Namespace: "myapp",                            // Override default "flowrt"
//		Labels:    prometheus.Labels{"version": "1.0"}, // Constant labels
//	}
//	m := metrics.New(config)
package metrics
