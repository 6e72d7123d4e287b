package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"lanagate/internal/storage"
)

// InstrumentedStore wraps a storage.EventStore implementation with
// OpenTelemetry tracing and metrics instrumentation.
type InstrumentedStore struct {
	inner    storage.EventStore
	tracer   trace.Tracer
	duration metric.Float64Histogram
	errors   metric.Int64Counter
}

// NewInstrumentedStore creates a store wrapper that records trace spans,
// operation latency histograms, and error counters for every event store
// method call.
func NewInstrumentedStore(inner storage.EventStore) (*InstrumentedStore, error) {
	tracer := otel.Tracer("lanagate/storage")
	meter := otel.Meter("lanagate/storage")

	duration, err := meter.Float64Histogram(
		"storage.operation.duration",
		metric.WithDescription("Duration of event store operations in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	errCounter, err := meter.Int64Counter(
		"storage.operation.errors",
		metric.WithDescription("Number of event store operation errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	return &InstrumentedStore{
		inner:    inner,
		tracer:   tracer,
		duration: duration,
		errors:   errCounter,
	}, nil
}

func (s *InstrumentedStore) startSpan(ctx context.Context, operation string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := s.tracer.Start(ctx, "storage."+operation,
		trace.WithAttributes(append([]attribute.KeyValue{
			attribute.String("storage.operation", operation),
		}, attrs...)...),
	)
	return ctx, span
}

func (s *InstrumentedStore) record(ctx context.Context, span trace.Span, operation string, start time.Time, err error) {
	elapsed := time.Since(start).Seconds()
	attrs := metric.WithAttributes(attribute.String("operation", operation))

	s.duration.Record(ctx, elapsed, attrs)

	if err != nil {
		s.errors.Add(ctx, 1, attrs)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}

	span.End()
}

func (s *InstrumentedStore) CountSince(ctx context.Context, endpoint, identifier, kind string, since time.Time) (int, error) {
	ctx, span := s.startSpan(ctx, "CountSince",
		attribute.String("endpoint", endpoint),
		attribute.String("event.kind", kind),
	)
	start := time.Now()
	count, err := s.inner.CountSince(ctx, endpoint, identifier, kind, since)
	s.record(ctx, span, "CountSince", start, err)
	return count, err
}

func (s *InstrumentedStore) OldestSince(ctx context.Context, endpoint, identifier, kind string, since time.Time) (time.Time, bool, error) {
	ctx, span := s.startSpan(ctx, "OldestSince",
		attribute.String("endpoint", endpoint),
		attribute.String("event.kind", kind),
	)
	start := time.Now()
	oldest, found, err := s.inner.OldestSince(ctx, endpoint, identifier, kind, since)
	s.record(ctx, span, "OldestSince", start, err)
	return oldest, found, err
}

func (s *InstrumentedStore) Append(ctx context.Context, event storage.Event) error {
	ctx, span := s.startSpan(ctx, "Append",
		attribute.String("endpoint", event.Endpoint),
		attribute.String("event.kind", event.Kind),
	)
	start := time.Now()
	err := s.inner.Append(ctx, event)
	s.record(ctx, span, "Append", start, err)
	return err
}

func (s *InstrumentedStore) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx, span := s.startSpan(ctx, "PruneBefore")
	start := time.Now()
	pruned, err := s.inner.PruneBefore(ctx, cutoff)
	span.SetAttributes(attribute.Int64("events.pruned", pruned))
	s.record(ctx, span, "PruneBefore", start, err)
	return pruned, err
}

func (s *InstrumentedStore) Ping(ctx context.Context) error {
	ctx, span := s.startSpan(ctx, "Ping")
	start := time.Now()
	err := s.inner.Ping(ctx)
	s.record(ctx, span, "Ping", start, err)
	return err
}

func (s *InstrumentedStore) Close() error {
	return s.inner.Close()
}
