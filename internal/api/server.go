package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/Hsiii/MomComePickMeUp/internal/api/middleware"
	"github.com/Hsiii/MomComePickMeUp/internal/config"
	"github.com/Hsiii/MomComePickMeUp/internal/schedule"
	"github.com/Hsiii/MomComePickMeUp/internal/stations"
)

// Resolver produces a schedule for an origin/destination/date query.
type Resolver interface {
	Resolve(ctx context.Context, origin, dest, date string) (*schedule.Response, error)
}

// Directory serves the cached station list.
type Directory interface {
	List(ctx context.Context) ([]stations.Station, error)
}

type Server struct {
	cfg      config.ServerConfig
	resolver Resolver
	dir      Directory
	dev      bool
	logger   *log.Logger

	srv *http.Server
}

func NewServer(cfg config.ServerConfig, resolver Resolver, dir Directory, dev bool, logger *log.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		resolver: resolver,
		dir:      dir,
		dev:      dev,
		logger:   logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Security)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	s.registerRoutes(r)

	s.srv = &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

func (s *Server) registerRoutes(r chi.Router) {
	r.Get("/healthz", s.healthHandler)
	r.Get("/schedule", s.getScheduleHandler)
	r.Get("/stations", s.getStationsHandler)
}

// Handler exposes the routed handler for tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

func (s *Server) Start() error {
	s.logger.Printf("api: starting server on %s", s.srv.Addr)
	err := s.srv.ListenAndServe()
	if err == http.ErrServerClosed {
		s.logger.Printf("api: server stopped")
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Print("api: shutting down server")
	if err := s.srv.Shutdown(ctx); err != nil {
		s.logger.Printf("api: error during server shutdown: %v", err)
		return err
	}
	return nil
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// helper for consistent JSON responses.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	// best-effort encode; in the event of error there's not much we can do
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
