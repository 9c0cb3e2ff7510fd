// Package server wires the router, the security gate, and the handlers.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/gesturequiz/gesturequiz/internal/config"
	"github.com/gesturequiz/gesturequiz/internal/gate"
	"github.com/gesturequiz/gesturequiz/internal/ratelimit"
	"github.com/gesturequiz/gesturequiz/internal/server/handlers"
)

// Deps are the collaborators the server routes to.
type Deps struct {
	Questions *handlers.Questions
	GenAI     *handlers.GenAI
	Storage   *handlers.Storage
	Health    *handlers.Health
	Limiter   ratelimit.Store
	Security  config.SecurityConfig
	Logger    *zap.Logger
}

// Server is the HTTP server.
type Server struct {
	router *chi.Mux
	server *http.Server
	cfg    config.ServerConfig
	logger *zap.Logger
}

// New builds the router with the gate applied to every /api route.
func New(cfg config.ServerConfig, deps Deps) *Server {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(gate.RequestID)
	r.Use(gate.RequestLogger(deps.Logger))
	r.Use(gate.Recovery(deps.Logger))

	s := &Server{router: r, cfg: cfg, logger: deps.Logger}
	s.registerRoutes(deps)
	return s
}

// Start runs the server until it fails or is shut down.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	s.logger.Info("starting HTTP server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}
