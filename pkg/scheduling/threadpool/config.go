package threadpool

import (
	"runtime"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vnykmshr/flowrt/pkg/common/validation"
	"github.com/vnykmshr/flowrt/pkg/metrics"
)

const (
	// DefaultExpiryTimeout is how long an idle worker waits for work before exiting.
	DefaultExpiryTimeout = 30 * time.Second

	// NeverExpire keeps idle workers alive until the pool is reset or closed.
	NeverExpire time.Duration = -1
)

// Config holds configuration options for creating a thread pool.
type Config struct {
	// Name labels log lines and metrics. Defaults to "pool-" plus a short random id.
	Name string

	// MaxThreadCount caps the number of workers running tasks at once.
	// Zero means runtime.NumCPU().
	MaxThreadCount int

	// ExpiryTimeout is how long an idle worker lingers before exiting.
	// Zero means DefaultExpiryTimeout; any negative value means never.
	ExpiryTimeout time.Duration

	// Logger receives task failure reports. Nil means zap.L().
	Logger *zap.Logger

	// Metrics records pool activity. Nil disables metrics.
	Metrics *metrics.Registry

	// PanicHandler is called after a task panic has been logged, on the
	// worker that ran the task, just before that worker exits.
	PanicHandler func(task *Task, recovered interface{})
}

// DefaultConfig returns the configuration New uses.
func DefaultConfig() Config {
	return Config{
		MaxThreadCount: runtime.NumCPU(),
		ExpiryTimeout:  DefaultExpiryTimeout,
	}
}

func (c Config) withDefaults() (Config, error) {
	if c.MaxThreadCount == 0 {
		c.MaxThreadCount = runtime.NumCPU()
	}
	if err := validation.ValidatePositive("threadpool", "MaxThreadCount", c.MaxThreadCount); err != nil {
		return c, err
	}
	switch {
	case c.ExpiryTimeout == 0:
		c.ExpiryTimeout = DefaultExpiryTimeout
	case c.ExpiryTimeout < 0:
		c.ExpiryTimeout = NeverExpire
	}
	if c.Name == "" {
		c.Name = "pool-" + uuid.NewString()[:8]
	}
	if c.Logger == nil {
		c.Logger = zap.L()
	}
	return c, nil
}
