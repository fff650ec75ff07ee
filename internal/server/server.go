// Package server provides the HTTP API for bunseki.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/bunseki/internal/config"
	"github.com/hyperjump/bunseki/internal/search"
	"github.com/hyperjump/bunseki/internal/storage"
	"github.com/hyperjump/bunseki/pkg/utils"
)

// PrincipalHeader carries the identity of the caller. It is trusted as given.
const PrincipalHeader = "X-Principal-ID"

// WatchService reports the inbox directories being watched. Optional.
type WatchService interface {
	Directories() []string
}

// Server is the HTTP server for the bunseki API.
type Server struct {
	engine  *search.Engine
	storage storage.Storage
	config  *config.Config
	watch   WatchService
	logger  *zap.Logger
	server  *http.Server
}

// NewServer creates a server with the given dependencies. watch may be nil.
func NewServer(
	engine *search.Engine,
	store storage.Storage,
	cfg *config.Config,
	logger *zap.Logger,
	watch WatchService,
) *Server {
	return &Server{
		engine:  engine,
		storage: store,
		config:  cfg,
		watch:   watch,
		logger:  utils.OrNop(logger),
	}
}

// Handler returns the API router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(s.requirePrincipal)
			r.Get("/status", s.handleStatus)
			r.Post("/search", s.handleSearch)
			r.Post("/clusters", s.handleCluster)

			r.Route("/documents", func(r chi.Router) {
				r.Post("/", s.handleCreateDocument)
				r.Get("/", s.handleListDocuments)
				r.Get("/{id}", s.handleGetDocument)
				r.Put("/{id}", s.handleUpdateDocument)
				r.Delete("/{id}", s.handleDeleteDocument)
				r.Get("/{id}/collaborators", s.handleListCollaborators)
				r.Post("/{id}/collaborators", s.handleAddCollaborator)
				r.Delete("/{id}/collaborators/{principal}", s.handleRemoveCollaborator)
			})
		})
	})
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

type principalKey struct{}

func (s *Server) requirePrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal := r.Header.Get(PrincipalHeader)
		if principal == "" {
			s.respondError(w, http.StatusUnauthorized, "missing "+PrincipalHeader+" header")
			return
		}
		ctx := context.WithValue(r.Context(), principalKey{}, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func principalFrom(r *http.Request) string {
	p, _ := r.Context().Value(principalKey{}).(string)
	return p
}
