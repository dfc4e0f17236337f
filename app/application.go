package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/depdep/errors"
	"github.com/kbukum/depdep/di"
	"github.com/kbukum/depdep/logger"
)

// Runner is anything the application can start and stop. The server entry
// of the graph must satisfy it, which lets tests substitute a fake server.
type Runner interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Application is a fully built application graph with a lifecycle.
type Application struct {
	ctx    *di.Context
	runner Runner
	log    *logger.Logger

	gracefulTimeout time.Duration
	onStart         []Hook
	onStop          []Hook
}

// BuildApplication realizes the whole graph from Factories, replacing every
// entry named in substitutions with the given value. Resolution failures are
// returned as *errors.AppError.
func BuildApplication(substitutions di.Substitutions, opts ...Option) (*Application, error) {
	o := resolveOptions(opts)

	c, err := di.BuildApplicationContext(Factories(), substitutions, o.contextOptions()...)
	if err != nil {
		return nil, apperrors.FromResolution(err)
	}
	runner, err := di.Get[Runner](c, Names.Server.Name())
	if err != nil {
		return nil, apperrors.FromResolution(err)
	}
	if runner == nil {
		return nil, apperrors.New(apperrors.ErrCodeTypeMismatch, "server entry is nil", http.StatusInternalServerError)
	}

	log := o.logger
	if log == nil {
		if l, ok := di.TryGet[*logger.Logger](c, Names.Logger.Name()); ok && l != nil {
			log = l
		} else {
			log = logger.NewNop()
		}
	}

	return &Application{
		ctx:             c,
		runner:          runner,
		log:             log.WithComponent("app"),
		gracefulTimeout: o.gracefulTimeout,
	}, nil
}

// Context returns the realized dependency graph.
func (a *Application) Context() *di.Context { return a.ctx }

// Router returns the graph's router, or nil if the router entry is not a
// *gin.Engine.
func (a *Application) Router() *gin.Engine {
	r, _ := di.TryGet[*gin.Engine](a.ctx, Names.Router.Name())
	return r
}

// Addr returns the server address when the server reports one.
func (a *Application) Addr() string {
	if s, ok := a.runner.(interface{ Addr() string }); ok {
		return s.Addr()
	}
	return ""
}

// Start starts the server, then runs the OnStart hooks.
func (a *Application) Start(ctx context.Context) error {
	if err := a.runner.Start(ctx); err != nil {
		return apperrors.ServiceUnavailable(Names.Server.Name()).WithCause(err)
	}
	if err := runHooks(ctx, a.onStart); err != nil {
		return fmt.Errorf("onStart hook failed: %w", err)
	}
	a.log.Info("Application started", logger.Fields(logger.FieldAddr, a.Addr()))
	return nil
}

// Stop runs the OnStop hooks, then stops the server. Both always run; their
// errors are joined.
func (a *Application) Stop(ctx context.Context) error {
	var hookErr error
	if err := runHooks(ctx, a.onStop); err != nil {
		a.log.WithError(err).Error("OnStop hook error", logger.Fields(logger.FieldOperation, "stop"))
		hookErr = fmt.Errorf("onStop hook failed: %w", err)
	}
	stopErr := a.runner.Stop(ctx)
	if err := errors.Join(hookErr, stopErr); err != nil {
		return err
	}
	a.log.Info("Application stopped")
	return nil
}

// Run starts the application, blocks until SIGINT, SIGTERM or ctx
// cancellation, then stops it within the graceful timeout.
func (a *Application) Run(ctx context.Context) error {
	if err := a.Start(ctx); err != nil {
		return err
	}
	a.WaitForSignal(ctx)

	stopCtx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()
	return a.Stop(stopCtx)
}

// WaitForSignal blocks until an OS interrupt/term signal or context cancellation.
func (a *Application) WaitForSignal(ctx context.Context) os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.log.Info("Received shutdown signal", logger.Fields("signal", sig.String()))
		return sig
	case <-ctx.Done():
		a.log.Info("Context canceled, shutting down")
		return nil
	}
}
