package threadpool

import (
	"time"

	"github.com/vnykmshr/flowrt/pkg/metrics"
)

// poolMetrics forwards pool events to a metrics.Registry. All methods are
// no-ops when the registry is nil.
type poolMetrics struct {
	registry *metrics.Registry
	name     string
}

func (m poolMetrics) enabled() bool {
	return m.registry != nil
}

func (m poolMetrics) workerSpawned() {
	if m.enabled() {
		m.registry.WorkersSpawned.WithLabelValues(m.name).Inc()
	}
}

func (m poolMetrics) workerExpired() {
	if m.enabled() {
		m.registry.WorkersExpired.WithLabelValues(m.name).Inc()
	}
}

func (m poolMetrics) taskSubmitted() {
	if m.enabled() {
		m.registry.TasksSubmitted.WithLabelValues(m.name).Inc()
	}
}

func (m poolMetrics) taskExecuted(d time.Duration, failed bool) {
	if !m.enabled() {
		return
	}
	m.registry.TasksExecuted.WithLabelValues(m.name).Inc()
	m.registry.TaskDuration.WithLabelValues(m.name).Observe(d.Seconds())
	if failed {
		m.registry.TasksFailed.WithLabelValues(m.name).Inc()
	}
}

func (m poolMetrics) tasksCanceled(n int) {
	if m.enabled() && n > 0 {
		m.registry.TasksCanceled.WithLabelValues(m.name).Add(float64(n))
	}
}

func (m poolMetrics) gauges(active, idle, queued int) {
	if !m.enabled() {
		return
	}
	m.registry.PoolActive.WithLabelValues(m.name).Set(float64(active))
	m.registry.PoolIdle.WithLabelValues(m.name).Set(float64(idle))
	m.registry.PoolQueued.WithLabelValues(m.name).Set(float64(queued))
}
