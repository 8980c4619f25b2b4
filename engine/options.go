package engine

import (
	"time"

	"github.com/kart-io/rtmq/logger"
)

// MetricsRecorder is the seam the engine reports outcomes through. A nil
// Metrics field is replaced by a no-op recorder, matching the ambient
// "Discard" default logger/metrics convention used throughout this module.
type MetricsRecorder interface {
	RecordSend(outcome string)
	RecordReceive(outcome string)
	RecordBlocked(direction string, d time.Duration)
	ObserveCurrentCount(queueName string, delta int64)
	ObserveBlockedWaiters(direction string, delta int64)
}

type noopMetrics struct{}

func (noopMetrics) RecordSend(string)                   {}
func (noopMetrics) RecordReceive(string)                {}
func (noopMetrics) RecordBlocked(string, time.Duration) {}
func (noopMetrics) ObserveCurrentCount(string, int64)   {}
func (noopMetrics) ObserveBlockedWaiters(string, int64) {}

// Engine ties the pool, list, wait queues, queue object, registry and
// notifier together into the send/receive operations. It is stateless
// beyond its collaborators; all mutable state lives in the
// queueobj.Object reached through each call's *registry.Descriptor.
type Engine struct {
	Log     logger.Interface
	Metrics MetricsRecorder
}

// Option configures a new Engine.
type Option func(*Engine)

// WithLogger overrides the default Discard logger.
func WithLogger(l logger.Interface) Option {
	return func(e *Engine) { e.Log = l }
}

// WithMetrics attaches a metrics recorder.
func WithMetrics(m MetricsRecorder) Option {
	return func(e *Engine) { e.Metrics = m }
}

// New builds an Engine. With no options it logs and records nothing.
func New(opts ...Option) *Engine {
	e := &Engine{Log: logger.Discard, Metrics: noopMetrics{}}
	for _, opt := range opts {
		opt(e)
	}
	if e.Metrics == nil {
		e.Metrics = noopMetrics{}
	}
	return e
}
