package app

import (
	"context"
	"fmt"
)

// Hook is a lifecycle callback that runs during application start or stop.
type Hook func(ctx context.Context) error

// OnStart registers hooks that run after the server is listening.
func (a *Application) OnStart(hooks ...Hook) {
	a.onStart = append(a.onStart, hooks...)
}

// OnStop registers hooks that run before the server is shut down.
func (a *Application) OnStop(hooks ...Hook) {
	a.onStop = append(a.onStop, hooks...)
}

// runHooks executes hooks sequentially, returning the first error.
func runHooks(ctx context.Context, hooks []Hook) error {
	for i, h := range hooks {
		if err := h(ctx); err != nil {
			return fmt.Errorf("hook %d failed: %w", i, err)
		}
	}
	return nil
}
