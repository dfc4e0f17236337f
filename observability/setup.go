package observability

import (
	"context"
	"errors"
)

// ShutdownFunc flushes and stops the providers started by Setup.
type ShutdownFunc func(ctx context.Context) error

// Setup starts OTLP trace and metric export for svc when cfg.Enabled.
// When disabled it returns a no-op shutdown and the global providers stay
// the OpenTelemetry no-op defaults.
func Setup(ctx context.Context, cfg Config, svc Service) (ShutdownFunc, error) {
	if !cfg.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	tp, err := InitTracer(ctx, cfg.TracerConfig(svc))
	if err != nil {
		return nil, err
	}
	mp, err := InitMeter(ctx, cfg.MeterConfig(svc))
	if err != nil {
		return nil, errors.Join(err, tp.Shutdown(ctx))
	}

	return func(ctx context.Context) error {
		return errors.Join(mp.Shutdown(ctx), tp.Shutdown(ctx))
	}, nil
}
