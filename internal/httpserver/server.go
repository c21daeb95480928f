// Package httpserver wraps the standard HTTP server with the configuration
// and shutdown behaviour shared by every service binary.
package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ornge/orange-services/internal/config"
	"github.com/ornge/orange-services/pkg/logger"
)

// Server is a configured HTTP server.
type Server struct {
	srv *http.Server
	log *logger.Logger
}

// New creates a server bound to the configured host and port.
func New(cfg config.ServerConfig, log *logger.Logger, handler http.Handler) *Server {
	if log == nil {
		log = logger.NewDefault("httpserver")
	}
	return &Server{
		srv: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		log: log,
	}
}

// Addr returns the listen address.
func (s *Server) Addr() string { return s.srv.Addr }

// Start blocks serving requests until Shutdown is called.
func (s *Server) Start() error {
	return s.srv.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
