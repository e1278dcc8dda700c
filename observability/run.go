package observability

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Settings selects telemetry export for one CLI invocation.
type Settings struct {
	Endpoint   string
	Insecure   bool
	SampleRate float64
	Version    string
}

// Setup installs OTLP trace and metric providers when an endpoint is set.
// The returned function flushes and stops them; it is never nil.
func Setup(ctx context.Context, s Settings) (func(context.Context) error, error) {
	if s.Endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}

	tp, err := InitTracer(ctx, &TracerConfig{
		ServiceName:    "pmnps",
		ServiceVersion: s.Version,
		Endpoint:       s.Endpoint,
		Insecure:       s.Insecure,
		SampleRate:     s.SampleRate,
	})
	if err != nil {
		return nil, err
	}

	cfg := DefaultMeterConfig("pmnps")
	cfg.ServiceVersion = s.Version
	cfg.Endpoint = s.Endpoint
	cfg.Insecure = s.Insecure
	mp, err := InitMeter(ctx, &cfg)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, err
	}

	return func(ctx context.Context) error {
		return errors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
	}, nil
}

// Run tracks one action invocation: the root span and its timing.
type Run struct {
	Action    string
	ID        string
	StartTime time.Time
	span      trace.Span
}

type runKey struct{}

// StartRun opens the root span of an action and stores the Run on ctx.
func StartRun(ctx context.Context, action, runID string) (context.Context, *Run) {
	ctx, span := StartSpan(ctx, ActionSpan(action), trace.WithAttributes(
		attribute.String(AttrAction, action),
		attribute.String(AttrRunID, runID),
	))
	r := &Run{Action: action, ID: runID, StartTime: time.Now(), span: span}
	return context.WithValue(ctx, runKey{}, r), r
}

// RunFromContext returns the Run stored by StartRun, or nil.
func RunFromContext(ctx context.Context) *Run {
	if r, ok := ctx.Value(runKey{}).(*Run); ok {
		return r
	}
	return nil
}

// ActionFromContext returns the running action name, or "".
func ActionFromContext(ctx context.Context) string {
	if r := RunFromContext(ctx); r != nil {
		return r.Action
	}
	return ""
}

// End closes the root span, recording err when set.
func (r *Run) End(err error) {
	status := "ok"
	if err != nil {
		status = "error"
		r.span.RecordError(err)
		r.span.SetStatus(codes.Error, err.Error())
		r.span.SetAttributes(attribute.String(AttrErrorMessage, err.Error()))
	}
	r.span.SetAttributes(
		attribute.String(AttrStatus, status),
		attribute.Int64(AttrDurationMs, r.Duration().Milliseconds()),
	)
	r.span.End()
}

// Duration returns the elapsed time since the run started.
func (r *Run) Duration() time.Duration {
	return time.Since(r.StartTime)
}
