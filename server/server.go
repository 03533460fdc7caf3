// Package server is a local stand-in for the MediaCMS chapters API, backed
// by the SQLite database.
package server

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/user/mediacms-timeline/config"
)

type Server struct {
	cfg        config.ServerConfig
	logger     zerolog.Logger
	httpServer *http.Server
	router     *chi.Mux
	handler    *Handler
}

func New(cfg config.ServerConfig, logger zerolog.Logger, database *sql.DB) *Server {
	s := &Server{
		cfg:     cfg,
		logger:  logger.With().Str("component", "server").Logger(),
		handler: NewHandler(database, logger),
	}

	s.router = chi.NewRouter()
	s.router.Use(CORSMiddleware(cfg.AllowedOrigins))
	s.router.Use(LoggingMiddleware(s.logger))
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s
}

func (s *Server) setupRoutes() {
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handler.Health)

		r.Get("/media", s.handler.ListMedia)
		r.Get("/media/{id}/chapters", s.handler.GetChapters)
		r.With(s.handler.RequireCSRF).Post("/media/{id}/chapters", s.handler.SaveChapters)
	})
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.logger.Info().
		Str("addr", s.httpServer.Addr).
		Msg("starting server")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	return s.httpServer.Shutdown(shutdownCtx)
}
