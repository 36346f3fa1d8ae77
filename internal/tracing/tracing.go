// Package tracing wraps client operations in OpenTelemetry spans.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/intelinfo/intelinfo-go"

var tracer trace.Tracer

func getTracer() trace.Tracer {
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}
	return tracer
}

// Trace runs a single API operation inside a span named after it. Errors
// are recorded on the span and returned unchanged.
func Trace[T any](ctx context.Context, operation string, fn func(context.Context) (T, error)) (T, error) {
	ctx, span := getTracer().Start(ctx, "intelinfo."+operation,
		trace.WithAttributes(attribute.String("intelinfo.operation", operation)))
	defer span.End()

	result, err := fn(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return result, err
}

// Session tracks a long-lived channel connection as a single span, counting
// delivered and dropped frames.
type Session struct {
	span      trace.Span
	delivered int64
	dropped   int64
}

// StartSession opens a span for a live channel session.
func StartSession(ctx context.Context, operation string, url string) (context.Context, *Session) {
	spanCtx, span := getTracer().Start(ctx, "intelinfo."+operation,
		trace.WithAttributes(
			attribute.String("intelinfo.operation", operation),
			attribute.String("intelinfo.channel.url", url),
		))
	return spanCtx, &Session{span: span}
}

// OnDelivered records one frame handed to the consumer.
func (s *Session) OnDelivered() {
	s.delivered++
}

// OnDropped records one malformed frame that was discarded.
func (s *Session) OnDropped() {
	s.dropped++
}

// End closes the session span, recording frame counts and the terminal
// error, if any.
func (s *Session) End(err error) {
	s.span.SetAttributes(
		attribute.Int64("intelinfo.channel.frames_delivered", s.delivered),
		attribute.Int64("intelinfo.channel.frames_dropped", s.dropped),
	)
	if err != nil {
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
	}
	s.span.End()
}
