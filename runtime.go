package flowrt

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/vnykmshr/flowrt/pkg/config"
	"github.com/vnykmshr/flowrt/pkg/logger"
	"github.com/vnykmshr/flowrt/pkg/metrics"
	"github.com/vnykmshr/flowrt/pkg/scheduling/threadpool"
	"github.com/vnykmshr/flowrt/pkg/scheduling/timer"
)

// Runtime owns a thread pool, a timer manager and the logger and metrics
// they share.
type Runtime struct {
	logger   *zap.Logger
	closeLog func()
	registry *prometheus.Registry
	metrics  *metrics.Registry
	pool     *threadpool.ThreadPool
	timers   *timer.Manager

	closeOnce sync.Once
}

// Option customizes a Runtime.
type Option func(*options)

type options struct {
	logger *zap.Logger
}

// WithLogger uses log instead of building one from the logging section.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		o.logger = log
	}
}

// New builds a Runtime from cfg.
func New(cfg config.Config, opts ...Option) (*Runtime, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, closeLog := o.logger, func() {}
	if log == nil {
		var err error
		if log, closeLog, err = logger.New(cfg.Logging); err != nil {
			return nil, fmt.Errorf("failed to build logger: %w", err)
		}
	}

	rt := &Runtime{logger: log, closeLog: closeLog}
	if cfg.Metrics.Enabled {
		rt.registry = prometheus.NewRegistry()
		rt.metrics = metrics.New(metrics.Config{
			Enabled:         true,
			Registry:        rt.registry,
			Namespace:       cfg.Metrics.Namespace,
			Labels:          cfg.Metrics.Labels,
			DurationBuckets: cfg.Metrics.DurationBuckets,
		})
	}

	poolCfg := cfg.ThreadPool()
	poolCfg.Logger = log
	poolCfg.Metrics = rt.metrics
	pool, err := threadpool.NewWithConfig(poolCfg)
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("failed to create thread pool: %w", err)
	}
	rt.pool = pool

	timerCfg := cfg.TimerManager()
	timerCfg.Logger = log
	timerCfg.Metrics = rt.metrics
	timers, err := timer.NewWithConfig(timerCfg)
	if err != nil {
		pool.Close()
		closeLog()
		return nil, fmt.Errorf("failed to create timer manager: %w", err)
	}
	rt.timers = timers

	log.Info("runtime started",
		zap.String("pool", pool.Name()),
		zap.Int("max_threads", pool.MaxThreadCount()),
		zap.String("timers", timers.Name()),
		zap.Bool("metrics", rt.metrics != nil),
	)
	return rt, nil
}

// Pool returns the shared thread pool.
func (r *Runtime) Pool() *threadpool.ThreadPool {
	return r.pool
}

// Timers returns the timer manager.
func (r *Runtime) Timers() *timer.Manager {
	return r.timers
}

// Logger returns the runtime logger.
func (r *Runtime) Logger() *zap.Logger {
	return r.logger
}

// Metrics returns the metrics registry, or nil when metrics are disabled.
func (r *Runtime) Metrics() *metrics.Registry {
	return r.metrics
}

// Gatherer exposes the runtime's Prometheus registry for an HTTP handler.
// It returns nil when metrics are disabled.
func (r *Runtime) Gatherer() prometheus.Gatherer {
	if r.registry == nil {
		return nil
	}
	return r.registry
}

// Close stops the timer manager first so no callback is dispatched to a
// closed pool, then drains the pool and flushes the logger. A log file
// opened from the logging section is closed; a logger passed with
// WithLogger is only synced.
func (r *Runtime) Close() {
	r.closeOnce.Do(func() {
		r.timers.Close()
		r.pool.Close()
		_ = r.logger.Sync()
		r.closeLog()
	})
}
