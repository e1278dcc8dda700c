package dag

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/pmnps/logger"
	"github.com/kbukum/pmnps/observability"
)

// WithTracing wraps fn in a "pmnps.node" span.
func WithTracing[V Vertex](fn NodeFunc[V], action string) NodeFunc[V] {
	return func(ctx context.Context, node V, exclusive bool) error {
		ctx, span := observability.StartSpan(ctx, observability.SpanNode, trace.WithAttributes(
			attribute.String(observability.AttrAction, action),
			attribute.String(observability.AttrMember, node.Name()),
			attribute.Bool("pmnps.exclusive", exclusive),
		))
		defer span.End()

		err := fn(ctx, node, exclusive)
		if err != nil {
			observability.SetSpanError(ctx, err)
			span.SetStatus(codes.Error, err.Error())
		}
		return err
	}
}

// WithMetrics records count, duration and failures of fn.
func WithMetrics[V Vertex](fn NodeFunc[V], action string, metrics *observability.Metrics) NodeFunc[V] {
	return func(ctx context.Context, node V, exclusive bool) error {
		start := time.Now()
		err := fn(ctx, node, exclusive)

		status := string(StatusCompleted)
		if err != nil {
			status = string(StatusFailed)
		}
		metrics.RecordNode(ctx, action, status, time.Since(start))
		return err
	}
}

// WithLogging logs node name, duration and outcome of fn.
func WithLogging[V Vertex](fn NodeFunc[V], log *logger.Logger) NodeFunc[V] {
	return func(ctx context.Context, node V, exclusive bool) error {
		start := time.Now()
		err := fn(ctx, node, exclusive)

		fields := logger.MergeWithDuration(logger.Fields(logger.FieldMember, node.Name()), time.Since(start))
		l := log.WithContext(ctx)
		if err != nil {
			l.Error("node failed", logger.MergeWithError(fields, err))
		} else {
			l.Debug("node completed", fields)
		}
		return err
	}
}
