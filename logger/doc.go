// Package logger provides structured logging for depdep applications
// using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers carrying structured fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.WithComponent("router")
//	log.Info("routes registered", logger.Fields("count", 3))
package logger
