// Package server exposes ingestion and search over HTTP. It is a thin
// translation layer: requests map onto the ingest pipeline and the query
// planner, responses are their reports and results.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ziadkadry99/corpora/internal/ingest"
	"github.com/ziadkadry99/corpora/internal/vectorstore"
)

// Config holds server configuration.
type Config struct {
	Port       int
	AllowAll   bool           // allow all CORS origins (dev mode)
	Model      string         // embedding model name, reported by /api/status
	IngestOpts ingest.Options // defaults applied to ingestion requests
}

// Ingestor runs an ingestion over a filesystem root.
type Ingestor interface {
	Run(ctx context.Context, root string, opts ingest.Options) (*ingest.Report, error)
}

// IngestorFactory builds an Ingestor reporting progress to fn (may be nil).
// Each streaming connection gets its own Ingestor so progress callbacks
// never cross connections.
type IngestorFactory func(fn ingest.ProgressFunc) Ingestor

// Searcher answers similarity queries.
type Searcher interface {
	SearchSimilar(ctx context.Context, query string, limit int) ([]vectorstore.SearchResult, error)
}

// Server is the corpora HTTP server.
type Server struct {
	cfg         Config
	newIngestor IngestorFactory
	searcher    Searcher
	store       vectorstore.Store
	router      chi.Router
	httpServer  *http.Server
}

// New creates a Server with all dependencies.
func New(cfg Config, newIngestor IngestorFactory, searcher Searcher, store vectorstore.Store) *Server {
	s := &Server{
		cfg:         cfg,
		newIngestor: newIngestor,
		searcher:    searcher,
		store:       store,
	}

	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/ingest", s.handleIngest)
		r.Get("/ingest/ws", s.handleIngestWS)
		r.Post("/search", s.handleSearch)
		r.Get("/status", s.handleStatus)
	})

	return r
}

// Router returns the chi router, mainly for tests.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured port and blocks until the
// server stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		// Ingestion of a large repository can far outlast a normal
		// request; the write timeout has to accommodate it.
		WriteTimeout: 30 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("corpora server listening on %s", addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
