package logger

import (
	"context"
	"time"

	charmlog "github.com/charmbracelet/log"
)

// charmLogger wraps charmbracelet/log to satisfy Interface.
type charmLogger struct {
	l      *charmlog.Logger
	cfg    Config
}

// New wraps an existing *charmlog.Logger. Most callers want Default or
// NewDefault instead.
func New(l *charmlog.Logger, cfg Config) Interface {
	l.SetReportTimestamp(true)
	switch cfg.LogLevel {
	case Debug:
		l.SetLevel(charmlog.DebugLevel)
	case Info:
		l.SetLevel(charmlog.InfoLevel)
	case Warn:
		l.SetLevel(charmlog.WarnLevel)
	case Error:
		l.SetLevel(charmlog.ErrorLevel)
	case Silent:
		l.SetLevel(charmlog.FatalLevel + 1)
	}
	return &charmLogger{l: l, cfg: cfg}
}

// NewDefault builds the package-default logger: charmbracelet/log
// writing to stderr, colorized, warn level (SlowThreshold 200ms,
// LogLevel Warn, Colorful true).
func NewDefault() Interface {
	l := charmlog.NewWithOptions(defaultOutput(), charmlog.Options{
		ReportTimestamp: true,
		Level:           charmlog.WarnLevel,
	})
	return New(l, Config{SlowThreshold: 200 * time.Millisecond, LogLevel: Warn, Colorful: true})
}

// NewAt builds a charmbracelet/log-backed logger at an explicit level,
// for callers (e.g. config.WithDefaultLogger) that want something other
// than NewDefault's warn-level stderr writer.
func NewAt(level LogLevel, colorful bool) Interface {
	l := charmlog.NewWithOptions(defaultOutput(), charmlog.Options{
		ReportTimestamp: true,
	})
	return New(l, Config{SlowThreshold: 200 * time.Millisecond, LogLevel: level, Colorful: colorful})
}

// Default is the package-level logger used by components that are not
// given one explicitly.
var Default Interface = NewDefault()

// Discard drops everything; used in tests.
var Discard Interface = discard{}

func (c *charmLogger) LogMode(level LogLevel) Interface {
	clone := *c
	clone.cfg.LogLevel = level
	newL := c.l.With()
	return New(newL, clone.cfg)
}

func (c *charmLogger) Info(_ context.Context, msg string, kv ...interface{}) {
	if c.cfg.LogLevel >= Info {
		c.l.Info(msg, kv...)
	}
}

func (c *charmLogger) Warn(_ context.Context, msg string, kv ...interface{}) {
	if c.cfg.LogLevel >= Warn {
		c.l.Warn(msg, kv...)
	}
}

func (c *charmLogger) Error(_ context.Context, msg string, kv ...interface{}) {
	if c.cfg.LogLevel >= Error {
		c.l.Error(msg, kv...)
	}
}

func (c *charmLogger) Debug(_ context.Context, msg string, kv ...interface{}) {
	if c.cfg.LogLevel >= Debug {
		c.l.Debug(msg, kv...)
	}
}

func (c *charmLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error, kv ...interface{}) {
	if c.cfg.LogLevel <= Silent {
		return
	}
	elapsed := time.Since(begin)
	op, count := fc()
	fields := append([]interface{}{"op", op, "count", count, "elapsed", elapsed}, kv...)

	switch {
	case err != nil && c.cfg.LogLevel >= Error:
		c.l.Error("queue operation failed", append(fields, "err", err)...)
	case c.cfg.SlowThreshold != 0 && elapsed > c.cfg.SlowThreshold && c.cfg.LogLevel >= Warn:
		c.l.Warn("slow queue operation", fields...)
	case c.cfg.LogLevel >= Info:
		c.l.Info("queue operation", fields...)
	}
}

type discard struct{}

func (discard) LogMode(LogLevel) Interface                                                    { return discard{} }
func (discard) Info(context.Context, string, ...interface{})                                  {}
func (discard) Warn(context.Context, string, ...interface{})                                  {}
func (discard) Error(context.Context, string, ...interface{})                                 {}
func (discard) Debug(context.Context, string, ...interface{})                                 {}
func (discard) Trace(context.Context, time.Time, func() (string, int64), error, ...interface{}) {}
