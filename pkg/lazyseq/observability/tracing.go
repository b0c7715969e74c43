package observability

import (
	"context"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer is the lazyseq tracer instance.
// Uses the global OTel tracer provider.
var tracer = otel.Tracer("lazyseq")

// SpanManager handles trace span lifecycle.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartRunSpan starts a span for an entire stress run.
	// Returns the context with span and the span itself.
	StartRunSpan(ctx context.Context, subject, runID string) (context.Context, trace.Span)

	// StartWorkerSpan starts a span for one worker's rendezvous and
	// access. The worker span should be a child of the run span.
	StartWorkerSpan(ctx context.Context, worker int) (context.Context, trace.Span)

	// EndSpanWithError completes a span, optionally recording an error.
	EndSpanWithError(span trace.Span, err error)

	// AddSpanEvent adds an event to the current span in context.
	AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue)
}

// otelSpanManager implements SpanManager using OpenTelemetry.
type otelSpanManager struct{}

// NewSpanManager returns a SpanManager that uses OpenTelemetry.
//
// The span manager uses the global OTel tracer provider. Configure the
// provider before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetTracerProvider(yourProvider)
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

// StartRunSpan starts a span for an entire stress run.
func (m *otelSpanManager) StartRunSpan(ctx context.Context, subject, runID string) (context.Context, trace.Span) {
	return StartRunSpan(ctx, subject, runID)
}

// StartWorkerSpan starts a span for one worker.
func (m *otelSpanManager) StartWorkerSpan(ctx context.Context, worker int) (context.Context, trace.Span) {
	return StartWorkerSpan(ctx, worker)
}

// EndSpanWithError completes a span, optionally recording an error.
func (m *otelSpanManager) EndSpanWithError(span trace.Span, err error) {
	EndSpanWithError(span, err)
}

// AddSpanEvent adds an event to the current span.
func (m *otelSpanManager) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span == nil || !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// Convenience functions that operate on the global tracer.
// These are useful for simple cases where you don't need the interface.

// StartRunSpan starts a span for an entire stress run.
// Uses the global OTel tracer.
func StartRunSpan(ctx context.Context, subject, runID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "lazyseq.stress.run",
		trace.WithAttributes(
			attribute.String("subject", subject),
			attribute.String("run.id", runID),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// StartWorkerSpan starts a span for one worker.
// Uses the global OTel tracer.
func StartWorkerSpan(ctx context.Context, worker int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "lazyseq.stress.worker."+strconv.Itoa(worker),
		trace.WithAttributes(
			attribute.Int("worker", worker),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndSpanWithError completes a span, optionally recording an error.
func EndSpanWithError(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
