package timer

import "github.com/vnykmshr/flowrt/pkg/metrics"

// timerMetrics forwards manager events to a metrics.Registry. All methods
// are no-ops when the registry is nil.
type timerMetrics struct {
	registry *metrics.Registry
	name     string
}

func (m timerMetrics) scheduled() {
	if m.registry != nil {
		m.registry.TimersScheduled.WithLabelValues(m.name).Inc()
	}
}

func (m timerMetrics) fired(n int) {
	if m.registry != nil && n > 0 {
		m.registry.TimersFired.WithLabelValues(m.name).Add(float64(n))
	}
}

func (m timerMetrics) canceled() {
	if m.registry != nil {
		m.registry.TimersCanceled.WithLabelValues(m.name).Inc()
	}
}

func (m timerMetrics) skipped() {
	if m.registry != nil {
		m.registry.TimersSkipped.WithLabelValues(m.name).Inc()
	}
}

func (m timerMetrics) rollover() {
	if m.registry != nil {
		m.registry.ClockRollovers.WithLabelValues(m.name).Inc()
	}
}

func (m timerMetrics) pending(n int) {
	if m.registry != nil {
		m.registry.TimersPending.WithLabelValues(m.name).Set(float64(n))
	}
}
