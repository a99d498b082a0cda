package seqgraph

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/hupe1980/seqgraph"

// telemetry holds the tracer and instruments of one Graph.
type telemetry struct {
	tracer     trace.Tracer
	operations metric.Int64Counter
	latency    metric.Float64Histogram
	vertices   metric.Int64Histogram
}

func newTelemetry(tp trace.TracerProvider, mp metric.MeterProvider) (*telemetry, error) {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(instrumentationName)

	t := &telemetry{tracer: tp.Tracer(instrumentationName)}
	var err error

	t.operations, err = meter.Int64Counter(
		"seqgraph_operations_total",
		metric.WithDescription("Total number of graph operations"),
	)
	if err != nil {
		return nil, err
	}

	t.latency, err = meter.Float64Histogram(
		"seqgraph_operation_duration_seconds",
		metric.WithDescription("Duration of graph operations"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	t.vertices, err = meter.Int64Histogram(
		"seqgraph_vertices_created",
		metric.WithDescription("Number of vertices created per mutation"),
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// start opens a span for op.
func (t *telemetry) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "Graph."+op, trace.WithAttributes(attrs...))
}

// end records the outcome of op and closes span. Search misses are not
// errors.
func (t *telemetry) end(ctx context.Context, span trace.Span, op string, start time.Time, created int, err error) {
	success := err == nil || isSearchMiss(err)
	if err != nil {
		span.RecordError(err)
		if !success {
			span.SetStatus(codes.Error, err.Error())
		}
	}
	span.End()

	attrs := metric.WithAttributes(
		attribute.String("op", op),
		attribute.Bool("success", success),
	)
	t.operations.Add(ctx, 1, attrs)
	t.latency.Record(ctx, time.Since(start).Seconds(), attrs)
	if created > 0 {
		t.vertices.Record(ctx, int64(created), metric.WithAttributes(attribute.String("op", op)))
	}
}
