// Package logger builds the zap loggers used by flowrt components.
//
// Example usage:
//
//	log, closeLog, err := logger.New(logger.Config{
//	    Level:  "info",
//	    Format: "json",
//	    Output: "/var/log/flowrt.log",
//	})
//	if err != nil {
//	    return err
//	}
//	defer closeLog()
//
//	pool, _ := threadpool.NewWithConfig(threadpool.Config{Logger: log})
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config describes a logger.
type Config struct {
	Level  string `mapstructure:"level" default:"info"`    // debug, info, warn, error
	Format string `mapstructure:"format" default:"json"`   // json, console
	Output string `mapstructure:"output" default:"stderr"` // stdout, stderr, or a file path
}

// New builds a logger writing to cfg.Output. The returned close function
// syncs the logger and closes the output file; it is a no-op beyond the sync
// for stdout and stderr. Call it once the logger is no longer used.
func New(cfg Config) (*zap.Logger, func(), error) {
	encoder, level, err := build(cfg)
	if err != nil {
		return nil, nil, err
	}
	ws, closeOutput, err := openOutput(cfg.Output)
	if err != nil {
		return nil, nil, err
	}
	log := newLogger(encoder, ws, level)
	return log, func() {
		_ = log.Sync()
		closeOutput()
	}, nil
}

// NewWithWriter builds a logger writing to ws and ignores cfg.Output.
func NewWithWriter(cfg Config, ws zapcore.WriteSyncer) (*zap.Logger, error) {
	encoder, level, err := build(cfg)
	if err != nil {
		return nil, err
	}
	return newLogger(encoder, ws, level), nil
}

func build(cfg Config) (zapcore.Encoder, zapcore.Level, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, level, err
	}

	switch strings.ToLower(cfg.Format) {
	case "", "json":
		encCfg := zap.NewProductionEncoderConfig()
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		return zapcore.NewJSONEncoder(encCfg), level, nil
	case "console", "text":
		return zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()), level, nil
	default:
		return nil, level, fmt.Errorf("invalid log format: %s (expected: json, console)", cfg.Format)
	}
}

func newLogger(encoder zapcore.Encoder, ws zapcore.WriteSyncer, level zapcore.Level) *zap.Logger {
	core := zapcore.NewCore(encoder, ws, level)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.DPanicLevel))
}

// ParseLevel parses debug, info, warn or error. An empty string means info.
func ParseLevel(s string) (zapcore.Level, error) {
	if s == "" {
		return zapcore.InfoLevel, nil
	}
	switch strings.ToLower(s) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return zapcore.InfoLevel, fmt.Errorf("invalid log level: %s (expected: debug, info, warn, error)", s)
	}
	if strings.EqualFold(s, "warning") {
		s = "warn"
	}
	return zapcore.ParseLevel(strings.ToLower(s))
}

func openOutput(output string) (zapcore.WriteSyncer, func(), error) {
	switch strings.ToLower(output) {
	case "", "stderr":
		return zapcore.Lock(os.Stderr), func() {}, nil
	case "stdout":
		return zapcore.Lock(os.Stdout), func() {}, nil
	}

	path := output
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}
	path = filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory %s: %w", filepath.Dir(path), err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	return zapcore.Lock(f), func() { _ = f.Close() }, nil
}
