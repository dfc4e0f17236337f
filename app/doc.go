// Package app is a static file server assembled from a dependency graph.
//
// Every piece of the application is a named factory in Factories; the graph
// is realized by di.BuildApplicationContext, so any piece can be replaced by
// a substitution without touching the rest:
//
//	subs := di.Substitutions{}
//	app.Names.FileSystem.Substitute(subs, afero.NewMemMapFs())
//	a, err := app.BuildApplication(subs)
//
// The graph:
//
//	config ─┬─> logger, metrics ───────────────────────────┬─> router ─> server
//	        └─> fileSystem ─> routeFactory ─> routes ──────┘
package app
