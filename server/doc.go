// Package server provides the HTTP server used by depdep applications.
//
// A Server wraps any http.Handler (usually a Gin engine built from the
// dependency graph) with configured timeouts, binds its listener in Start
// and shuts down gracefully in Stop.
//
// # Middleware
//
// Gin middleware (server/middleware):
//
//   - Recovery: Panic recovery with structured logging
//   - RequestLogger: Request logging with duration tracking
//   - RequestID: Request ID generation and propagation
//
// # Endpoints
//
// Built-in endpoints (server/endpoint):
//
//   - /health: Health check aggregation
package server
