package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"crypto-watcher/internal/infrastructure/logging"
)

// Server encapsulates HTTP server configuration
type Server struct {
	httpServer *http.Server
	port       int
}

// NewServer creates a new server instance
func NewServer(handler http.Handler, port int) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		port: port,
	}
}

// Start listens on the configured port. It returns nil after Stop.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln. It returns nil after Stop.
func (s *Server) Serve(ln net.Listener) error {
	ctx := context.Background()

	logging.Info(ctx, "HTTP server starting", logging.Fields{
		"addr": ln.Addr().String(),
	})

	logging.Info(ctx, "Available endpoints", logging.Fields{
		"endpoints": []string{
			"GET /cryptocurrencies/cryptocurrency",
			"GET /cryptocurrencies/cryptocurrency/{currency_id}",
			"GET /cryptocurrencies/markets",
			"GET /cryptocurrencies/stream (websocket)",
			"GET /health",
			"GET /ready",
			"GET /metrics",
			"GET /swagger/index.html",
		},
	})

	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop stops the HTTP server gracefully
func (s *Server) Stop(ctx context.Context) error {
	logging.Info(ctx, "Stopping HTTP server gracefully", logging.Fields{
		"port": s.port,
	})

	return s.httpServer.Shutdown(ctx)
}

// GetPort returns the configured port
func (s *Server) GetPort() int {
	return s.port
}
