// Package server provides the HTTP API for lexfold.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/lexfold/lexfold/internal/config"
	"github.com/lexfold/lexfold/internal/extract"
	"github.com/lexfold/lexfold/internal/filetext"
	"github.com/lexfold/lexfold/internal/index"
	"github.com/lexfold/lexfold/internal/redact"
	"github.com/lexfold/lexfold/internal/search"
	"github.com/lexfold/lexfold/internal/storage"
	"github.com/lexfold/lexfold/internal/templates"
	"github.com/lexfold/lexfold/internal/vector"
)

// Deps are the collaborators the server routes requests to.
type Deps struct {
	Config    *config.Config
	Logger    *zap.Logger
	Templates *templates.Store
	Extractor *extract.Engine
	Redactor  *redact.Engine
	Converter *filetext.Converter
	Storage   storage.Storage
	Indexer   *index.Indexer
	Catalog   *index.Catalog
	Vectors   vector.Index
	Jobs      *index.JobPool
	Search    *search.Engine
}

// Server is the HTTP server for the lexfold API.
type Server struct {
	deps   Deps
	logger *zap.Logger
	server *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(deps Deps) *Server {
	return &Server{deps: deps, logger: deps.Logger}
}

// Router builds the chi router with all API routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))

	r.Get("/health", s.handleHealth)
	r.Get("/api/v1/status", s.handleStatus)

	r.Get("/api/v1/templates", s.handleListTemplates)
	r.Get("/api/v1/templates/{filename}/schema", s.handleTemplateSchema)

	r.Post("/api/v1/contracts/generate", s.handleGenerate)
	r.Post("/api/v1/contracts/extract", s.handleExtract)
	r.Post("/api/v1/contracts/upload", s.handleUpload)

	r.Post("/api/v1/redact", s.handleRedact)

	r.Post("/api/v1/search", s.handleSearch)
	r.Get("/api/v1/search/suggest", s.handleSuggest)
	r.Get("/api/v1/search/facets", s.handleFacets)

	r.Delete("/api/v1/documents/{entityType}/{id}", s.handleDeleteDocument)

	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.deps.Config.Server.Host, s.deps.Config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
