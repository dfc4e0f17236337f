package app

import (
	"time"

	"github.com/kbukum/depdep/di"
	"github.com/kbukum/depdep/logger"
)

// Option configures the Application during BuildApplication.
type Option func(*appOptions)

type appOptions struct {
	logger          *logger.Logger
	observers       []di.Observer
	gracefulTimeout time.Duration
}

func resolveOptions(opts []Option) *appOptions {
	o := &appOptions{gracefulTimeout: 15 * time.Second}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets the logger used for lifecycle messages and for tracing
// graph resolution. Without it the graph's own logger entry is used once built.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) {
		o.logger = l
	}
}

// WithObserver observes every factory invocation of the graph.
func WithObserver(obs di.Observer) Option {
	return func(o *appOptions) {
		o.observers = append(o.observers, obs)
	}
}

// WithGracefulTimeout sets the maximum duration for graceful shutdown in Run.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *appOptions) {
		o.gracefulTimeout = d
	}
}

func (o *appOptions) contextOptions() []di.Option {
	var opts []di.Option
	if o.logger != nil {
		opts = append(opts, di.WithLogger(o.logger))
	}
	for _, obs := range o.observers {
		opts = append(opts, di.WithObserver(obs))
	}
	return opts
}
