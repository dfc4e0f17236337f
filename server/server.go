package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kbukum/depdep/logger"
)

const shutdownTimeout = 5 * time.Second

// ErrServerClosed is returned by Start after the server has been stopped.
var ErrServerClosed = errors.New("server: closed")

// Server serves an http.Handler on the configured address.
type Server struct {
	httpServer *http.Server
	handler    http.Handler
	config     Config
	log        *logger.Logger

	mu       sync.Mutex
	listener net.Listener
	closed   bool
}

// New creates a new Server for handler. Nothing is bound until Start.
// With cfg.H2C the handler also accepts HTTP/2 cleartext connections.
func New(cfg Config, handler http.Handler, log *logger.Logger) *Server {
	if log == nil {
		log = logger.NewNop()
	}

	served := handler
	if cfg.H2C {
		h2s := &http2.Server{
			MaxConcurrentStreams: 250,
			IdleTimeout:          seconds(cfg.IdleTimeout),
		}
		served = h2c.NewHandler(handler, h2s)
	}

	httpServer := &http.Server{
		Addr:         net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Handler:      served,
		ReadTimeout:  seconds(cfg.ReadTimeout),
		WriteTimeout: seconds(cfg.WriteTimeout),
		IdleTimeout:  seconds(cfg.IdleTimeout),
	}

	return &Server{
		httpServer: httpServer,
		handler:    handler,
		config:     cfg,
		log:        log.WithComponent("server"),
	}
}

// Handler returns the handler passed to New.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start binds the port and begins serving. It returns once the listener is
// bound so the caller knows the port is ready; serving continues in a goroutine.
// A server cannot be restarted after Stop: Start then returns ErrServerClosed.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrServerClosed
	}
	if s.listener != nil {
		return fmt.Errorf("server already listening on %s", s.listener.Addr())
	}

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("server failed to bind %s: %w", s.httpServer.Addr, err)
	}
	s.listener = listener

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.WithError(err).Error("Server error", logger.Fields(logger.FieldAddr, listener.Addr().String()))
		}
	}()

	s.log.Info("HTTP server started", logger.Fields(logger.FieldAddr, listener.Addr().String()))
	return nil
}

// Stop gracefully shuts down the server with a 5-second deadline.
// Stopping a server that was never started, or is already stopped, is a no-op.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	started := s.listener != nil
	s.listener = nil
	if started {
		s.closed = true
	}
	s.mu.Unlock()
	if !started {
		return nil
	}

	s.log.Info("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.log.Error("Server shutdown error", logger.ErrorFields("shutdown", err))
		return fmt.Errorf("server shutdown error: %w", err)
	}

	s.log.Info("HTTP server shut down successfully")
	return nil
}

// Addr returns the bound address while serving, otherwise the configured one.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpServer.Addr
}
