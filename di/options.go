package di

import (
	"time"

	"github.com/kbukum/depdep/logger"
)

// Option configures a Context at build time.
type Option func(*options)

type options struct {
	logger    *logger.Logger
	observers []Observer
}

// Observer is notified around every factory invocation. Calls nest the way
// factories do: a factory that reads an unbuilt dependency produces a
// FactoryStarted for the dependency before its own FactoryFinished.
type Observer interface {
	FactoryStarted(name, requester string)
	FactoryFinished(name string, d time.Duration, err error)
}

// WithLogger traces factory invocations and substitution hits at debug
// level. Without it the engine writes no logs.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithObserver adds an Observer. Observers are called in the order added.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observers = append(o.observers, obs)
		}
	}
}

func resolveOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
