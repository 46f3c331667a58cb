package engine

import (
	"context"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/leengari/recordstore/internal/engine"

// TracingObserver records each mutation as an OpenTelemetry span covering
// the mutation's start and end times.
type TracingObserver struct {
	tracer trace.Tracer
}

// NewTracingObserver uses the global tracer provider when tp is nil.
func NewTracingObserver(tp trace.TracerProvider) *TracingObserver {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &TracingObserver{tracer: tp.Tracer(tracerName)}
}

func (o *TracingObserver) OnEvent(event Event) {
	_, span := o.tracer.Start(context.Background(), "recordstore."+string(event.Type),
		trace.WithTimestamp(event.Started),
		trace.WithSpanKind(trace.SpanKindInternal),
	)

	attrs := []attribute.KeyValue{
		attribute.String("db.name", event.Database),
		attribute.String("recordstore.tx_id", event.TxID),
		attribute.Int64("recordstore.seq", int64(event.Seq)),
	}
	keys := make([]string, 0, len(event.Data))
	for k := range event.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		attrs = append(attrs, dataAttribute("recordstore."+k, event.Data[k]))
	}
	span.SetAttributes(attrs...)

	if event.Err != nil {
		span.RecordError(event.Err)
		span.SetStatus(codes.Error, event.Err.Error())
	}
	span.End(trace.WithTimestamp(event.Timestamp))
}

func dataAttribute(key string, v interface{}) attribute.KeyValue {
	switch val := v.(type) {
	case int:
		return attribute.Int(key, val)
	case int64:
		return attribute.Int64(key, val)
	case bool:
		return attribute.Bool(key, val)
	case string:
		return attribute.String(key, val)
	default:
		return attribute.String(key, fmt.Sprint(val))
	}
}
