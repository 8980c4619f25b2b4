// Package config assembles the ambient configuration for a queue
// subsystem instance: logging, metrics and tracing backends, and default
// queue attributes, built with a functional-options pattern.
package config

import (
	"time"

	"github.com/kart-io/rtmq/logger"
	"github.com/kart-io/rtmq/queueobj"
)

// Option configures a Config.
type Option interface{ apply(*Config) }

type optionFunc func(*Config)

func (f optionFunc) apply(c *Config) { f(c) }

// Config is the subsystem-wide configuration a Subsystem (the rtmq
// facade package) is built from.
type Config struct {
	Logger       logger.Interface
	DefaultAttr  queueobj.Attr
	OTLPEndpoint string
	ServiceName  string
	SlowLog      time.Duration
}

// New builds a Config from opts, defaulting to the Discard logger and a
// conservative attribute pair for an otherwise-unsized queue.
func New(opts ...Option) *Config {
	c := &Config{
		Logger:      logger.Discard,
		DefaultAttr: queueobj.Attr{MaxMessages: 10, MessageSize: 8192},
		ServiceName: "rtmq",
		SlowLog:     200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt.apply(c)
	}
	return c
}

// WithLogger overrides the default Discard logger.
func WithLogger(l logger.Interface) Option {
	return optionFunc(func(c *Config) { c.Logger = l })
}

// WithDefaultLogger installs the charmbracelet/log-backed default at the
// given level.
func WithDefaultLogger(level logger.LogLevel, colorful bool) Option {
	return optionFunc(func(c *Config) { c.Logger = logger.NewAt(level, colorful) })
}

// WithDefaultAttr sets the attributes used by Open calls that don't
// specify their own.
func WithDefaultAttr(maxMessages, messageSize int) Option {
	return optionFunc(func(c *Config) { c.DefaultAttr = queueobj.Attr{MaxMessages: maxMessages, MessageSize: messageSize} })
}

// WithOTLPEndpoint configures the OTLP/HTTP collector endpoint traces are
// exported to. Metrics are not exported through it; they always go to the
// process's global otel meter provider. Empty (the default) attaches no
// trace exporter.
func WithOTLPEndpoint(endpoint string) Option {
	return optionFunc(func(c *Config) { c.OTLPEndpoint = endpoint })
}

// WithServiceName sets the otel resource service.name attribute.
func WithServiceName(name string) Option {
	return optionFunc(func(c *Config) { c.ServiceName = name })
}
