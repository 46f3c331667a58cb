package logging

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/leengari/recordstore/internal/config"
)

// SetupTracing builds the tracer provider for mutation spans, or returns nil
// when tracing is disabled. Spans are batched and written to logger, so they
// reach the same console and Seq sinks as every other record. Callers must
// Shutdown the provider to flush the last batch.
func SetupTracing(cfg config.TracingConfig, logger *slog.Logger) *sdktrace.TracerProvider {
	if !cfg.Enabled {
		return nil
	}
	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(&spanLogExporter{logger: logger}),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", cfg.ServiceName),
		)),
	)
}

// spanLogExporter is an sdktrace.SpanExporter that logs one record per span.
type spanLogExporter struct {
	logger *slog.Logger
}

func (e *spanLogExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, span := range spans {
		sc := span.SpanContext()
		attrs := []slog.Attr{
			slog.String("span", span.Name()),
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
			slog.Duration("duration", span.EndTime().Sub(span.StartTime())),
		}
		for _, kv := range span.Attributes() {
			attrs = append(attrs, slog.Any(string(kv.Key), kv.Value.AsInterface()))
		}

		level := slog.LevelDebug
		if status := span.Status(); status.Code == codes.Error {
			level = slog.LevelWarn
			attrs = append(attrs, slog.String("status", status.Description))
		}
		e.logger.LogAttrs(ctx, level, "span finished", attrs...)
	}
	return nil
}

func (e *spanLogExporter) Shutdown(context.Context) error {
	return nil
}
