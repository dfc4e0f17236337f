package app

import (
	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"

	"github.com/kbukum/depdep/di"
	"github.com/kbukum/depdep/logger"
	"github.com/kbukum/depdep/observability"
	"github.com/kbukum/depdep/server"
)

// Names holds the typed key of every entry in the application graph.
var Names = struct {
	Config       di.Key[*Config]
	Logger       di.Key[*logger.Logger]
	Metrics      di.Key[*observability.Metrics]
	FileSystem   di.Key[afero.Fs]
	RouteFactory di.Key[*RouteFactory]
	Routes       di.Key[Routes]
	Router       di.Key[*gin.Engine]
	Server       di.Key[*server.Server]
}{
	Config:       "config",
	Logger:       "logger",
	Metrics:      "metrics",
	FileSystem:   "fileSystem",
	RouteFactory: "routeFactory",
	Routes:       "routes",
	Router:       "router",
	Server:       "server",
}
