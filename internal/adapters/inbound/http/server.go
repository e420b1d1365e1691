// Package http provides the inbound JSON API adapter built on gin.
package http

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	// Addr is the address to listen on (e.g., ":8080").
	Addr string

	// Logger for the server.
	Logger *slog.Logger

	// Metrics records request latency (optional).
	Metrics RequestRecorder

	// ReadTimeout for HTTP requests.
	ReadTimeout time.Duration

	// WriteTimeout for HTTP responses. Must cover an upstream fetch.
	WriteTimeout time.Duration
}

// ServerConfigDefaults returns a config with default values.
func ServerConfigDefaults() ServerConfig {
	return ServerConfig{
		Addr:         ":8080",
		Logger:       slog.Default(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
}

// Server serves the API and health routes.
type Server struct {
	server *http.Server
	engine *gin.Engine
	logger *slog.Logger
}

// NewServer builds the router for api and health.
func NewServer(config ServerConfig, api *Handler, health *HealthHandler) *Server {
	defaults := ServerConfigDefaults()
	if config.Addr == "" {
		config.Addr = defaults.Addr
	}
	if config.Logger == nil {
		config.Logger = defaults.Logger
	}
	if config.ReadTimeout == 0 {
		config.ReadTimeout = defaults.ReadTimeout
	}
	if config.WriteTimeout == 0 {
		config.WriteTimeout = defaults.WriteTimeout
	}
	logger := config.Logger.With("component", "api-server")

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(logger))
	if config.Metrics != nil {
		r.Use(requestMetrics(config.Metrics))
	}

	health.RegisterRoutes(r)
	api.RegisterRoutes(r)

	return &Server{
		engine: r,
		logger: logger,
		server: &http.Server{
			Addr:              config.Addr,
			Handler:           r,
			ReadHeaderTimeout: config.ReadTimeout,
			ReadTimeout:       config.ReadTimeout,
			WriteTimeout:      config.WriteTimeout,
		},
	}
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start begins listening. It returns once the listener is bound; serving
// continues in a goroutine.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return err
	}
	s.server.BaseContext = func(_ net.Listener) context.Context { return ctx }

	go func() {
		s.logger.Info("starting API server", "addr", listener.Addr().String())
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server failed", "error", err)
		}
	}()
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}
