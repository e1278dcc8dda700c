package observability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/pmnps/logger"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	ServiceName    string
	ServiceVersion string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
}

// DefaultMeterConfig returns defaults for a local collector.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: "dev",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter initializes the OpenTelemetry meter provider and installs it
// globally. Shutdown flushes the last collection.
func InitMeter(ctx context.Context, config *MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(newResource(config.ServiceName, config.ServiceVersion)),
	)

	otel.SetMeterProvider(mp)

	logger.Debug("meter initialized", logger.Fields(
		"endpoint", config.Endpoint,
		"interval", config.Interval.String(),
	))

	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}

// Metrics holds the scheduler instruments.
type Metrics struct {
	nodeTotal    metric.Int64Counter
	nodeDuration metric.Float64Histogram
	nodeFailures metric.Int64Counter
	batchTotal   metric.Int64Counter
	batchSize    metric.Int64Histogram
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	nodeTotal, err := meter.Int64Counter("pmnps.node.total",
		metric.WithDescription("Member tasks executed, by action and status"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pmnps.node.total counter: %w", err)
	}

	nodeDuration, err := meter.Float64Histogram("pmnps.node.duration",
		metric.WithDescription("Duration of member tasks in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pmnps.node.duration histogram: %w", err)
	}

	nodeFailures, err := meter.Int64Counter("pmnps.node.failures",
		metric.WithDescription("Member tasks that exited non-zero"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pmnps.node.failures counter: %w", err)
	}

	batchTotal, err := meter.Int64Counter("pmnps.batch.total",
		metric.WithDescription("Batches started"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pmnps.batch.total counter: %w", err)
	}

	batchSize, err := meter.Int64Histogram("pmnps.batch.size",
		metric.WithDescription("Members per batch"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pmnps.batch.size histogram: %w", err)
	}

	return &Metrics{
		nodeTotal:    nodeTotal,
		nodeDuration: nodeDuration,
		nodeFailures: nodeFailures,
		batchTotal:   batchTotal,
		batchSize:    batchSize,
	}, nil
}

var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns instruments on the global meter. It returns nil if
// they could not be created.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		m, err := NewMetrics(Meter(defaultTracerName))
		if err != nil {
			logger.Warn("metrics disabled", logger.Fields(logger.FieldError, err.Error()))
			return
		}
		defaultMetrics = m
	})
	return defaultMetrics
}

// RecordNode records one finished member task.
func (m *Metrics) RecordNode(ctx context.Context, action, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.nodeTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("action", action),
		attribute.String("status", status),
	))
	m.nodeDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("action", action),
	))
	if status == "failed" {
		m.nodeFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("action", action)))
	}
}

// RecordBatch records a started batch of size members.
func (m *Metrics) RecordBatch(ctx context.Context, action string, size int) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("action", action))
	m.batchTotal.Add(ctx, 1, attrs)
	m.batchSize.Record(ctx, int64(size), attrs)
}
