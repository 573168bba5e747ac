// Package metrics provides Prometheus instrumentation for flowrt components.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultNamespace prefixes every metric name unless Config.Namespace overrides it.
const DefaultNamespace = "flowrt"

// Registry holds all metric instances for flowrt components.
// A nil *Registry is valid for components and disables collection.
type Registry struct {
	// Thread Pool Metrics
	WorkersSpawned *prometheus.CounterVec
	WorkersExpired *prometheus.CounterVec
	TasksSubmitted *prometheus.CounterVec
	TasksExecuted  *prometheus.CounterVec
	TasksFailed    *prometheus.CounterVec
	TasksCanceled  *prometheus.CounterVec
	TaskDuration   *prometheus.HistogramVec
	PoolActive     *prometheus.GaugeVec
	PoolIdle       *prometheus.GaugeVec
	PoolQueued     *prometheus.GaugeVec

	// Timer Metrics
	TimersScheduled *prometheus.CounterVec
	TimersFired     *prometheus.CounterVec
	TimersCanceled  *prometheus.CounterVec
	TimersSkipped   *prometheus.CounterVec
	TimersPending   *prometheus.GaugeVec
	ClockRollovers  *prometheus.CounterVec
}

// NewRegistry creates a new metrics registry with the given Prometheus registerer
// and the default namespace.
func NewRegistry(reg prometheus.Registerer) *Registry {
	return New(Config{Enabled: true, Registry: reg})
}

// New creates a registry from config. It returns nil when metrics are disabled.
func New(config Config) *Registry {
	if !config.Enabled {
		return nil
	}
	reg := config.Registry
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	ns := config.Namespace
	if ns == "" {
		ns = DefaultNamespace
	}
	buckets := config.DurationBuckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}
	factory := promauto.With(reg)
	labels := config.Labels

	counter := func(subsystem, name, help, label string) *prometheus.CounterVec {
		return factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   subsystem,
				Name:        name,
				Help:        help,
				ConstLabels: labels,
			},
			[]string{label},
		)
	}
	gauge := func(subsystem, name, help, label string) *prometheus.GaugeVec {
		return factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   ns,
				Subsystem:   subsystem,
				Name:        name,
				Help:        help,
				ConstLabels: labels,
			},
			[]string{label},
		)
	}

	return &Registry{
		// Thread Pool Metrics
		WorkersSpawned: counter("threadpool", "workers_spawned_total",
			"Total number of worker goroutines started", "pool_name"),
		WorkersExpired: counter("threadpool", "workers_expired_total",
			"Total number of workers that expired, failed or were reset", "pool_name"),
		TasksSubmitted: counter("threadpool", "tasks_submitted_total",
			"Total number of tasks accepted by the pool", "pool_name"),
		TasksExecuted: counter("threadpool", "tasks_executed_total",
			"Total number of tasks executed", "pool_name"),
		TasksFailed: counter("threadpool", "tasks_failed_total",
			"Total number of tasks that panicked", "pool_name"),
		TasksCanceled: counter("threadpool", "tasks_canceled_total",
			"Total number of queued tasks removed before execution", "pool_name"),

		TaskDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   ns,
				Subsystem:   "threadpool",
				Name:        "task_duration_seconds",
				Help:        "Time spent executing tasks",
				Buckets:     buckets,
				ConstLabels: labels,
			},
			[]string{"pool_name"},
		),

		PoolActive: gauge("threadpool", "active_workers",
			"Number of workers currently running a task", "pool_name"),
		PoolIdle: gauge("threadpool", "idle_workers",
			"Number of workers waiting for a hand-off", "pool_name"),
		PoolQueued: gauge("threadpool", "queued_tasks",
			"Number of tasks in the pending queue", "pool_name"),

		// Timer Metrics
		TimersScheduled: counter("timer", "scheduled_total",
			"Total number of timers armed", "manager_name"),
		TimersFired: counter("timer", "fired_total",
			"Total number of timer callbacks dispatched", "manager_name"),
		TimersCanceled: counter("timer", "canceled_total",
			"Total number of pending timers canceled", "manager_name"),
		TimersSkipped: counter("timer", "skipped_total",
			"Total number of condition timers skipped because their owner was gone", "manager_name"),
		TimersPending: gauge("timer", "pending",
			"Number of timers waiting for their deadline", "manager_name"),
		ClockRollovers: counter("timer", "clock_rollovers_total",
			"Number of backward clock jumps that forced all timers due", "manager_name"),
	}
}
