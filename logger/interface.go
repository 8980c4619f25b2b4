// Package logger defines the pluggable logging seam used throughout the
// queue subsystem: a GORM-style logger interface
// (LogMode/Info/Warn/Error/Debug/Trace plus a
// Config{SlowThreshold,LogLevel,Colorful}) backed by charmbracelet/log.
package logger

import (
	"context"
	"time"
)

// LogLevel controls verbosity, ordered least to most verbose.
type LogLevel int

const (
	Silent LogLevel = iota + 1
	Error
	Warn
	Info
	Debug
)

func (l LogLevel) String() string {
	switch l {
	case Silent:
		return "silent"
	case Error:
		return "error"
	case Warn:
		return "warn"
	case Info:
		return "info"
	case Debug:
		return "debug"
	default:
		return "unknown"
	}
}

// Interface is the logging seam the engine programs against. Trace
// reports one completed operation (a send or receive) with its outcome
// and elapsed time.
type Interface interface {
	LogMode(level LogLevel) Interface
	Info(ctx context.Context, msg string, kv ...interface{})
	Warn(ctx context.Context, msg string, kv ...interface{})
	Error(ctx context.Context, msg string, kv ...interface{})
	Debug(ctx context.Context, msg string, kv ...interface{})
	Trace(ctx context.Context, begin time.Time, fc func() (op string, count int64), err error, kv ...interface{})
}

// Config configures a default-backend logger.
type Config struct {
	SlowThreshold time.Duration
	LogLevel      LogLevel
	Colorful      bool
}
