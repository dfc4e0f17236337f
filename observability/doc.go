// Package observability provides OpenTelemetry tracing and metrics for
// depdep applications.
//
// Setup initializes OTLP/HTTP trace and metric exporters from Config:
//
//	shutdown, err := observability.Setup(ctx, cfg.Observability, observability.Service{Name: "static-server"})
//	defer shutdown(ctx)
//
// FactoryObserver plugs into the dependency graph and turns every factory
// invocation into a span (nested the way factories read each other) and a
// factory.invocations / factory.duration measurement:
//
//	obs := observability.NewFactoryObserver(ctx, observability.Tracer(name), metrics)
//	c, err := di.BuildApplicationContext(factories, subs, di.WithObserver(obs))
package observability
