// Package metrics wires the queue subsystem to OpenTelemetry: counters
// and a histogram for send/receive outcomes and blocked time, plus a
// tracer for timed operations.
package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/kart-io/rtmq/config"
)

// Recorder reports send/receive outcomes and blocked durations as otel
// metrics, and can trace a blocking operation end to end. The zero value
// is not usable; build one with New.
type Recorder struct {
	tracer        trace.Tracer
	meter         metric.Meter
	traceProvider *sdktrace.TracerProvider

	sent            metric.Int64Counter
	received        metric.Int64Counter
	blockedDuration metric.Float64Histogram
	currentCount    metric.Int64UpDownCounter
	blockedWaiters  metric.Int64UpDownCounter
}

// New builds a Recorder from cfg. With an empty OTLPEndpoint, metrics and
// traces stay local to the process's global otel providers (which are
// no-ops unless the embedding application installs its own) — the
// instrumentation still runs, it just has nowhere to export to.
func New(cfg *config.Config) (*Recorder, error) {
	r := &Recorder{}

	if cfg.OTLPEndpoint != "" {
		if err := r.initTracing(cfg); err != nil {
			return nil, fmt.Errorf("rtmq/metrics: init tracing: %w", err)
		}
	} else {
		r.tracer = otel.Tracer(cfg.ServiceName)
	}

	r.meter = otel.Meter(cfg.ServiceName, metric.WithInstrumentationVersion("1.0.0"))
	if err := r.initInstruments(); err != nil {
		return nil, fmt.Errorf("rtmq/metrics: init instruments: %w", err)
	}
	return r, nil
}

func (r *Recorder) initTracing(cfg *config.Config) error {
	res, err := resource.New(context.Background(),
		resource.WithAttributes(semconv.ServiceName(cfg.ServiceName)),
	)
	if err != nil {
		return fmt.Errorf("create resource: %w", err)
	}

	exporter, err := otlptrace.New(context.Background(),
		otlptracehttp.NewClient(otlptracehttp.WithEndpoint(cfg.OTLPEndpoint)),
	)
	if err != nil {
		return fmt.Errorf("create exporter: %w", err)
	}

	r.traceProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(r.traceProvider)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	r.tracer = otel.Tracer(cfg.ServiceName, trace.WithSchemaURL(semconv.SchemaURL))
	return nil
}

func (r *Recorder) initInstruments() error {
	var err error
	if r.sent, err = r.meter.Int64Counter("rtmq_messages_sent_total", metric.WithDescription("Total send attempts by outcome")); err != nil {
		return err
	}
	if r.received, err = r.meter.Int64Counter("rtmq_messages_received_total", metric.WithDescription("Total receive attempts by outcome")); err != nil {
		return err
	}
	if r.blockedDuration, err = r.meter.Float64Histogram("rtmq_blocked_duration_seconds",
		metric.WithDescription("Time spent parked before a blocking send or receive completed"), metric.WithUnit("s")); err != nil {
		return err
	}
	if r.currentCount, err = r.meter.Int64UpDownCounter("rtmq_queue_current_count", metric.WithDescription("Messages currently enqueued")); err != nil {
		return err
	}
	if r.blockedWaiters, err = r.meter.Int64UpDownCounter("rtmq_blocked_waiters", metric.WithDescription("Callers currently parked waiting to send or receive")); err != nil {
		return err
	}
	return nil
}

// RecordSend satisfies engine.MetricsRecorder.
func (r *Recorder) RecordSend(outcome string) {
	r.sent.Add(context.Background(), 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordReceive satisfies engine.MetricsRecorder.
func (r *Recorder) RecordReceive(outcome string) {
	r.received.Add(context.Background(), 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// RecordBlocked satisfies engine.MetricsRecorder.
func (r *Recorder) RecordBlocked(direction string, d time.Duration) {
	r.blockedDuration.Record(context.Background(), d.Seconds(), metric.WithAttributes(attribute.String("direction", direction)))
}

// ObserveCurrentCount reports queueName's depth delta (+1 on enqueue, -1
// on dequeue); callers report deltas rather than absolutes since an
// UpDownCounter has no "set" operation.
func (r *Recorder) ObserveCurrentCount(queueName string, delta int64) {
	r.currentCount.Add(context.Background(), delta, metric.WithAttributes(attribute.String("queue", queueName)))
}

// ObserveBlockedWaiters satisfies engine.MetricsRecorder: delta is +1 when
// a caller parks on direction ("send" or "receive") and -1 when it wakes,
// times out, or is interrupted.
func (r *Recorder) ObserveBlockedWaiters(direction string, delta int64) {
	r.blockedWaiters.Add(context.Background(), delta, metric.WithAttributes(attribute.String("direction", direction)))
}

// TraceSend starts a span around one timed send.
func (r *Recorder) TraceSend(ctx context.Context, queueName string, priority int) (context.Context, trace.Span) {
	return r.tracer.Start(ctx, "rtmq.send", trace.WithSpanKind(trace.SpanKindProducer), trace.WithAttributes(
		attribute.String("rtmq.queue", queueName),
		attribute.Int("rtmq.priority", priority),
	))
}

// TraceReceive starts a span around one timed receive.
func (r *Recorder) TraceReceive(ctx context.Context, queueName string) (context.Context, trace.Span) {
	return r.tracer.Start(ctx, "rtmq.receive", trace.WithSpanKind(trace.SpanKindConsumer), trace.WithAttributes(
		attribute.String("rtmq.queue", queueName),
	))
}

// EndSpan records err (if any) on span and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// Shutdown flushes and closes the trace provider, if one was created.
func (r *Recorder) Shutdown(ctx context.Context) error {
	if r.traceProvider == nil {
		return nil
	}
	return r.traceProvider.Shutdown(ctx)
}
