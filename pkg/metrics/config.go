package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Config selects where flowrt metrics are registered and how they are named.
type Config struct {
	// Enabled controls whether metrics collection is active. New returns nil
	// when it is false.
	Enabled bool

	// Registry receives every collector. Nil means prometheus.DefaultRegisterer.
	Registry prometheus.Registerer

	// Namespace prefixes metric names. Empty means DefaultNamespace.
	Namespace string

	// Labels are constant labels attached to every metric, e.g. a service name
	// when several runtimes share one registry.
	Labels prometheus.Labels

	// DurationBuckets are the task duration histogram buckets in seconds.
	// Empty means prometheus.DefBuckets.
	DurationBuckets []float64
}

// DefaultConfig enables metrics on the default registerer.
func DefaultConfig() Config {
	return Config{
		Enabled:         true,
		Registry:        prometheus.DefaultRegisterer,
		Namespace:       DefaultNamespace,
		DurationBuckets: prometheus.DefBuckets,
	}
}
