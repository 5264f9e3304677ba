// Package api provides the HTTP surface of the skiff daemon: the REST API,
// the health check, and the WebSocket endpoint clients connect to.
package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/skiffworks/skiff/internal/logger"
)

// Server is the HTTP server carrying the REST API and the WebSocket endpoint.
type Server struct {
	server       *http.Server
	config       Config
	shutdownOnce sync.Once
}

// NewServer creates an HTTP server with the given configuration and handler.
func NewServer(config Config, handler http.Handler) *Server {
	config.applyDefaults()

	return &Server{
		server: &http.Server{
			Addr:         config.Addr(),
			Handler:      handler,
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
			IdleTimeout:  config.IdleTimeout,
		},
		config: config,
	}
}

// Start runs the server until ctx is cancelled or the listener fails.
// WebSocket connections hijack their conn on upgrade, so Shutdown does not
// wait for live sessions; their handlers wind down through their own context.
func (s *Server) Start(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		logger.Info("Starting API server", logger.KeyAddr, s.config.Addr())
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			select {
			case errChan <- err:
			default:
			}
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Stop(shutdownCtx)
	case err := <-errChan:
		return fmt.Errorf("API server failed: %w", err)
	}
}

// Stop gracefully shuts down the server. Safe to call more than once.
func (s *Server) Stop(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		logger.Info("Stopping API server")
		err = s.server.Shutdown(ctx)
	})
	return err
}
