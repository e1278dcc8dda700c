// Package observability wires OpenTelemetry tracing and metrics into pmnps.
//
// Export is opt-in. With telemetry.endpoint unset, Setup leaves the global
// no-op providers in place and every span and instrument is free.
//
//	shutdown, err := observability.Setup(ctx, observability.Settings{
//	    Endpoint: cfg.Telemetry.Endpoint,
//	    Version:  version.Version,
//	})
//	defer shutdown(context.Background())
//
//	ctx, run := observability.StartRun(ctx, "build", runID)
//	defer run.End(ctx, err)
package observability
