package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"sentinel-hq/sentinel/pkg/config"
	"sentinel-hq/sentinel/pkg/evaluation/aggregator"
	"sentinel-hq/sentinel/pkg/evaluation/manager"
	"sentinel-hq/sentinel/pkg/gateway/handlers"
	"sentinel-hq/sentinel/pkg/gateway/middleware"
	"sentinel-hq/sentinel/pkg/policy/engine"
	"sentinel-hq/sentinel/pkg/policy/store"
	"sentinel-hq/sentinel/pkg/providers"
	"sentinel-hq/sentinel/pkg/telemetry/health"
	"sentinel-hq/sentinel/pkg/telemetry/metrics"
)

// Dependencies carries everything the server needs. All fields except
// Metrics are required.
type Dependencies struct {
	Config     *config.Config
	Logger     *slog.Logger
	Manager    *manager.Manager
	Engine     *engine.Engine
	Aggregator *aggregator.Aggregator
	Store      store.Store
	Registry   *providers.Registry
	Checker    *health.Checker
	Metrics    *metrics.Metrics
	Version    string
}

// Server is the Sentinel gateway HTTP server.
type Server struct {
	deps         Dependencies
	httpServer   *http.Server
	logger       *slog.Logger
	shutdownOnce sync.Once
}

// NewServer builds the gateway server from its dependencies.
func NewServer(deps Dependencies) (*Server, error) {
	switch {
	case deps.Config == nil:
		return nil, fmt.Errorf("config is required")
	case deps.Manager == nil || deps.Engine == nil || deps.Aggregator == nil:
		return nil, fmt.Errorf("evaluation components are required")
	case deps.Store == nil || deps.Registry == nil || deps.Checker == nil:
		return nil, fmt.Errorf("store, registry, and health checker are required")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	s := &Server{
		deps:   deps,
		logger: deps.Logger.With("component", "gateway.server"),
	}

	cfg := deps.Config.Server
	s.httpServer = &http.Server{
		Addr:           cfg.ListenAddress,
		Handler:        s.routes(),
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: cfg.MaxHeaderBytes,
	}
	return s, nil
}

// routes builds the mux and wraps it in the middleware chain.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	chat := handlers.NewChat(s.deps.Engine, s.deps.Store, s.deps.Registry, s.deps.Metrics, s.deps.Logger)
	policies := handlers.NewPolicies(s.deps.Store, s.deps.Logger)
	evaluation := handlers.NewEvaluation(s.deps.Aggregator, s.deps.Logger)
	system := handlers.NewSystem(s.deps.Manager, s.deps.Checker, s.deps.Registry, s.deps.Version)

	mux.Handle("POST /v1/chat/completions", chat)

	mux.HandleFunc("GET /v1/policies", policies.List)
	mux.HandleFunc("POST /v1/policies", policies.Create)
	mux.HandleFunc("GET /v1/policies/{id}", policies.Get)
	mux.HandleFunc("PUT /v1/policies/{id}", policies.Update)
	mux.HandleFunc("DELETE /v1/policies/{id}", policies.Delete)

	mux.Handle("POST /v1/evaluation/comprehensive", evaluation)

	mux.HandleFunc("GET /v1/system/info", system.Info)
	mux.HandleFunc("GET /v1/system/health", system.Health)

	if s.deps.Metrics != nil && s.deps.Config.Telemetry.Metrics.Enabled {
		mux.Handle("GET "+s.deps.Config.Telemetry.Metrics.Path, s.deps.Metrics.Handler())
	}

	var handler http.Handler = mux
	handler = middleware.Logging(s.deps.Logger)(handler)
	handler = middleware.RequestID(handler)
	handler = middleware.Recovery(s.deps.Logger)(handler)
	return handler
}

// Handler exposes the fully wired handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start runs the server until the context is cancelled or the listener
// fails, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("gateway listening", "address", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, shutting down")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	}
}

// Shutdown drains in-flight requests within the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		timeout := s.deps.Config.Server.ShutdownTimeout
		s.logger.Info("initiating graceful shutdown", "timeout", timeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}
	})
	return shutdownErr
}
