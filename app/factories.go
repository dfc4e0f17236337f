package app

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"

	apperrors "github.com/kbukum/depdep/errors"
	"github.com/kbukum/depdep/di"
	"github.com/kbukum/depdep/logger"
	"github.com/kbukum/depdep/observability"
	"github.com/kbukum/depdep/server"
	"github.com/kbukum/depdep/server/endpoint"
	"github.com/kbukum/depdep/server/middleware"
)

// Factories returns the default factories of the application graph.
// Each call returns a fresh map the caller may modify.
func Factories() di.Factories {
	f := di.Factories{}
	Names.Config.Bind(f, newConfig)
	Names.Logger.Bind(f, newLogger)
	Names.Metrics.Bind(f, newMetrics)
	Names.FileSystem.Bind(f, newFileSystem)
	Names.RouteFactory.Bind(f, newRouteFactory)
	Names.Routes.Bind(f, newRoutes)
	Names.Router.Bind(f, newRouter)
	Names.Server.Bind(f, newServer)
	return f
}

func newConfig(*di.Context) (*Config, error) {
	return LoadConfig()
}

func newLogger(c *di.Context) (*logger.Logger, error) {
	cfg, err := Names.Config.Get(c)
	if err != nil {
		return nil, err
	}
	return logger.New(&cfg.Logging, cfg.Name), nil
}

// newMetrics uses the global meter provider, a no-op unless
// observability.Setup installed one.
func newMetrics(c *di.Context) (*observability.Metrics, error) {
	cfg, err := Names.Config.Get(c)
	if err != nil {
		return nil, err
	}
	return observability.NewMetrics(observability.Meter(cfg.Name))
}

// newFileSystem serves files read-only from below the static root.
func newFileSystem(c *di.Context) (afero.Fs, error) {
	cfg, err := Names.Config.Get(c)
	if err != nil {
		return nil, err
	}
	base := afero.NewOsFs()
	ok, err := afero.DirExists(base, cfg.Static.Root)
	if err != nil {
		return nil, fmt.Errorf("stat static root %s: %w", cfg.Static.Root, err)
	}
	if !ok {
		return nil, fmt.Errorf("static root %s is not a directory", cfg.Static.Root)
	}
	return afero.NewReadOnlyFs(afero.NewBasePathFs(base, cfg.Static.Root)), nil
}

func newRouteFactory(c *di.Context) (*RouteFactory, error) {
	fsys, err := Names.FileSystem.Get(c)
	if err != nil {
		return nil, err
	}
	log, err := Names.Logger.Get(c)
	if err != nil {
		return nil, err
	}
	return NewRouteFactory(fsys, log), nil
}

func newRoutes(c *di.Context) (Routes, error) {
	rf, err := Names.RouteFactory.Get(c)
	if err != nil {
		return nil, err
	}
	return Routes{
		"/":          rf.Get("public/index.html"),
		"/index.css": rf.Get("public/index.css"),
		"/index.js":  rf.Get("public/index.js"),
	}, nil
}

func newRouter(c *di.Context) (*gin.Engine, error) {
	cfg, err := Names.Config.Get(c)
	if err != nil {
		return nil, err
	}
	log, err := Names.Logger.Get(c)
	if err != nil {
		return nil, err
	}
	routes, err := Names.Routes.Get(c)
	if err != nil {
		return nil, err
	}
	metrics, err := Names.Metrics.Get(c)
	if err != nil {
		return nil, err
	}

	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(middleware.RequestID(), middleware.Recovery(log), middleware.RequestLogger(log))
	if metrics != nil {
		engine.Use(middleware.Metrics(metrics))
	}
	engine.GET("/health", endpoint.Health(cfg.Name, graphHealth(c)))
	engine.GET("/version", endpoint.Version())
	for _, p := range slices.Sorted(maps.Keys(routes)) {
		engine.GET(p, routes[p])
	}
	engine.NoRoute(func(gc *gin.Context) {
		server.RespondWithError(gc, apperrors.NotFound("route", gc.Request.URL.Path))
	})
	return engine, nil
}

// graphHealth reports every graph entry: realized entries are healthy,
// entries not built yet are degraded.
func graphHealth(c *di.Context) endpoint.HealthChecker {
	return func(context.Context) []endpoint.ComponentHealth {
		entries := c.Entries()
		out := make([]endpoint.ComponentHealth, 0, len(entries))
		for _, e := range entries {
			h := endpoint.ComponentHealth{Name: e.Name, Status: endpoint.StatusHealthy, Message: e.Origin.String()}
			if !e.Realized {
				h.Status = endpoint.StatusDegraded
			}
			out = append(out, h)
		}
		return out
	}
}

func newServer(c *di.Context) (*server.Server, error) {
	cfg, err := Names.Config.Get(c)
	if err != nil {
		return nil, err
	}
	router, err := Names.Router.Get(c)
	if err != nil {
		return nil, err
	}
	log, err := Names.Logger.Get(c)
	if err != nil {
		return nil, err
	}
	return server.New(cfg.Server, router, log), nil
}
