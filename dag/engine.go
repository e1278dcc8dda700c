package dag

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/kbukum/pmnps/errors"
	"github.com/kbukum/pmnps/logger"
	"github.com/kbukum/pmnps/observability"
	"github.com/kbukum/pmnps/resilience"
)

// NodeFunc runs one node. exclusive is true when the node is alone in its
// batch.
type NodeFunc[V Vertex] func(ctx context.Context, node V, exclusive bool) error

// Engine runs batches in order and the nodes of a batch concurrently.
type Engine[V Vertex] struct {
	// MaxParallel limits concurrent nodes per batch (0 = unlimited).
	MaxParallel int
	// Action labels spans and metrics, e.g. "build".
	Action string
	// Logger defaults to the "dag" component logger.
	Logger *logger.Logger
	// Metrics defaults to observability.DefaultMetrics.
	Metrics *observability.Metrics
}

// Run executes batches strictly in order. A batch settles completely before
// the next starts. The first failure in batch order is returned once its
// batch has settled, and every node of the later batches is recorded as
// skipped. Siblings of a failed node are not canceled.
func (e *Engine[V]) Run(ctx context.Context, batches [][]V, fn NodeFunc[V]) (*Result, error) {
	start := time.Now()
	result := &Result{}
	run := e.instrument(fn)

	finish := func(from int, err error) (*Result, error) {
		for bi := from; bi < len(batches); bi++ {
			for _, node := range batches[bi] {
				result.Nodes = append(result.Nodes, NodeResult{Name: node.Name(), Batch: bi, Status: StatusSkipped})
			}
		}
		result.Duration = time.Since(start)
		return result, err
	}

	for bi, batch := range batches {
		if err := ctx.Err(); err != nil {
			return finish(bi, errors.Canceled(err))
		}
		if len(batch) == 0 {
			continue
		}
		if err := e.runBatch(ctx, bi, batch, run, result); err != nil {
			return finish(bi+1, err)
		}
	}
	return finish(len(batches), nil)
}

func (e *Engine[V]) runBatch(ctx context.Context, bi int, batch []V, fn NodeFunc[V], result *Result) error {
	ctx, span := observability.StartSpan(ctx, observability.SpanBatch, trace.WithAttributes(
		attribute.String(observability.AttrAction, e.Action),
		attribute.Int(observability.AttrBatch, bi),
		attribute.Int(observability.AttrBatchSize, len(batch)),
	))
	defer span.End()

	e.metrics().RecordBatch(ctx, e.Action, len(batch))
	e.log().WithContext(ctx).Debug("batch started", logger.Fields(
		logger.FieldBatch, bi, "size", len(batch),
	))

	var bulkhead *resilience.Bulkhead
	if e.MaxParallel > 0 && e.MaxParallel < len(batch) {
		bulkhead = resilience.NewBulkhead(resilience.BulkheadConfig{
			Name:          fmt.Sprintf("%s-batch-%d", e.Action, bi),
			MaxConcurrent: e.MaxParallel,
		})
	}

	exclusive := len(batch) == 1
	nodes := make([]NodeResult, len(batch))

	var g errgroup.Group
	for i, node := range batch {
		g.Go(func() error {
			nr := NodeResult{Name: node.Name(), Batch: bi, Status: StatusCompleted}
			call := func() error {
				begin := time.Now()
				defer func() { nr.Duration = time.Since(begin) }()
				return fn(ctx, node, exclusive)
			}

			var err error
			if bulkhead != nil {
				err = bulkhead.Execute(ctx, call)
			} else {
				err = call()
			}
			if err != nil {
				nr.Status, nr.Error = StatusFailed, err
			}
			nodes[i] = nr
			return err
		})
	}

	err := g.Wait()
	result.Nodes = append(result.Nodes, nodes...)
	if err == nil {
		return nil
	}

	// Wait reports the first failure to finish; report the first in batch order.
	for _, nr := range nodes {
		if nr.Error != nil {
			err = nr.Error
			break
		}
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func (e *Engine[V]) instrument(fn NodeFunc[V]) NodeFunc[V] {
	fn = WithLogging(fn, e.log())
	fn = WithMetrics(fn, e.Action, e.metrics())
	return WithTracing(fn, e.Action)
}

func (e *Engine[V]) log() *logger.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return logger.Get("dag")
}

func (e *Engine[V]) metrics() *observability.Metrics {
	if e.Metrics != nil {
		return e.Metrics
	}
	return observability.DefaultMetrics()
}
