// Package config loads flowrt runtime configuration from JSON, YAML or TOML
// files and FLOWRT_* environment variables.
//
// Example:
//
//	cfg, err := config.Load("flowrt.yaml")
//	if err != nil {
//	    return err
//	}
//	rt, err := flowrt.New(*cfg)
//
// A minimal YAML file:
//
//	pool:
//	  max_thread_count: 8
//	  expiry_timeout: 10s
//	logging:
//	  level: debug
//	  format: console
//
// Every key can be overridden from the environment by upper-casing its path
// and joining with underscores, e.g. FLOWRT_POOL_MAX_THREAD_COUNT=16.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/spf13/viper"

	rterrors "github.com/vnykmshr/flowrt/pkg/common/errors"
	"github.com/vnykmshr/flowrt/pkg/common/validation"
	"github.com/vnykmshr/flowrt/pkg/logger"
	"github.com/vnykmshr/flowrt/pkg/scheduling/threadpool"
	"github.com/vnykmshr/flowrt/pkg/scheduling/timer"
)

// EnvPrefix prefixes environment variable overrides.
const EnvPrefix = "FLOWRT"

// Config is the file representation of a flowrt runtime.
type Config struct {
	Pool    PoolConfig    `mapstructure:"pool"`
	Timer   TimerConfig   `mapstructure:"timer"`
	Logging logger.Config `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// PoolConfig configures the shared thread pool.
type PoolConfig struct {
	Name string `mapstructure:"name" default:"flowrt"`
	// MaxThreadCount of 0 means one worker per CPU.
	MaxThreadCount int `mapstructure:"max_thread_count" default:"0"`
	// ExpiryTimeout below zero keeps idle workers forever.
	ExpiryTimeout time.Duration `mapstructure:"expiry_timeout" default:"30s"`
}

// TimerConfig configures the timer manager and the pool running its callbacks.
type TimerConfig struct {
	Name            string        `mapstructure:"name" default:"flowrt-timers"`
	CallbackThreads int           `mapstructure:"callback_threads" default:"0"`
	ExpiryTimeout   time.Duration `mapstructure:"expiry_timeout" default:"30s"`
}

// MetricsConfig controls Prometheus instrumentation.
type MetricsConfig struct {
	Enabled   bool              `mapstructure:"enabled" default:"false"`
	Namespace string            `mapstructure:"namespace" default:"flowrt"`
	Labels    map[string]string `mapstructure:"labels"`
	// DurationBuckets must be strictly increasing. Empty uses Prometheus defaults.
	DurationBuckets []float64 `mapstructure:"duration_buckets"`
}

// Default returns a Config with every default applied.
func Default() Config {
	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		// Struct tags are static; a failure here is a programming error.
		panic(fmt.Sprintf("config: invalid defaults: %v", err))
	}
	return cfg
}

// Load reads path (if non-empty), applies environment overrides and
// defaults, and validates the result. The file format follows the extension.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, Default())

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg := Default()
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults registers every key with viper so environment variables are
// seen by Unmarshal even when the file omits the key.
func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("pool.name", d.Pool.Name)
	v.SetDefault("pool.max_thread_count", d.Pool.MaxThreadCount)
	v.SetDefault("pool.expiry_timeout", d.Pool.ExpiryTimeout)
	v.SetDefault("timer.name", d.Timer.Name)
	v.SetDefault("timer.callback_threads", d.Timer.CallbackThreads)
	v.SetDefault("timer.expiry_timeout", d.Timer.ExpiryTimeout)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
	v.SetDefault("logging.output", d.Logging.Output)
	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.namespace", d.Metrics.Namespace)
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Pool.MaxThreadCount < 0 {
		errs = append(errs, rterrors.NewValidationError("config", "pool.max_thread_count", c.Pool.MaxThreadCount, "cannot be negative").
			WithHint("use 0 for one worker per CPU"))
	}
	if c.Timer.CallbackThreads < 0 {
		errs = append(errs, rterrors.NewValidationError("config", "timer.callback_threads", c.Timer.CallbackThreads, "cannot be negative").
			WithHint("use 0 for one worker per CPU"))
	}
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, rterrors.NewValidationError("config", "logging.level", c.Logging.Level, err.Error()))
	}
	if err := validation.ValidateOneOf("config", "logging.format", c.Logging.Format, "json", "console", "text"); err != nil {
		errs = append(errs, err)
	}
	if err := validation.ValidateNotEmpty("config", "logging.output", c.Logging.Output); err != nil {
		errs = append(errs, err)
	}
	if c.Metrics.Enabled {
		if err := validation.ValidateNotEmpty("config", "metrics.namespace", c.Metrics.Namespace); err != nil {
			errs = append(errs, err)
		}
		if !slices.IsSorted(c.Metrics.DurationBuckets) || hasDuplicates(c.Metrics.DurationBuckets) {
			errs = append(errs, rterrors.NewValidationError("config", "metrics.duration_buckets", c.Metrics.DurationBuckets, "must be strictly increasing"))
		}
	}

	return errors.Join(errs...)
}

func hasDuplicates(sorted []float64) bool {
	for i := 1; i < len(sorted); i++ {
		if sorted[i] == sorted[i-1] {
			return true
		}
	}
	return false
}

// ThreadPool converts the pool section into a threadpool.Config. Logger and
// Metrics are left for the caller to fill in.
func (c *Config) ThreadPool() threadpool.Config {
	return threadpool.Config{
		Name:           c.Pool.Name,
		MaxThreadCount: c.Pool.MaxThreadCount,
		ExpiryTimeout:  c.Pool.ExpiryTimeout,
	}
}

// TimerManager converts the timer section into a timer.Config.
func (c *Config) TimerManager() timer.Config {
	return timer.Config{
		Name: c.Timer.Name,
		Pool: threadpool.Config{
			Name:           c.Timer.Name + "-callbacks",
			MaxThreadCount: c.Timer.CallbackThreads,
			ExpiryTimeout:  c.Timer.ExpiryTimeout,
		},
	}
}
