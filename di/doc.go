// Package di resolves a set of named, interdependent factories into a
// memoized object graph.
//
// A factory receives the *Context under construction and reads its
// dependencies by name. No ordering or dependency declarations are needed:
// evaluation is demand-driven, and every name is produced at most once.
//
// # Building
//
//	factories := di.Factories{
//	    "foo": di.Value("F"),
//	    "bar": func(c *di.Context) (any, error) {
//	        foo, err := di.Get[string](c, "foo")
//	        if err != nil {
//	            return nil, err
//	        }
//	        return "B" + foo, nil
//	    },
//	}
//
//	lazy := di.BuildLazyContext(factories, nil)             // nothing built yet
//	eager, err := di.BuildContext(factories, nil)           // everything built
//	app, err := di.BuildApplicationContext(factories, subs) // substitutions copied verbatim
//
// # Substitutions
//
// A substitution preempts a factory: the substituted value is surfaced
// under that name and flows into every dependent, and the factory is never
// invoked. The caller's Substitutions map is never modified.
//
// # Observing
//
// WithObserver reports the start and end of every factory invocation.
// Nested invocations finish innermost first, so an observer can keep a stack.
//
// # Concurrency
//
// A Context is not safe for concurrent use while it is being realized.
// Once BuildContext or BuildApplicationContext returns, reads only hit the
// cache.
package di
