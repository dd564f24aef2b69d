// Package httpapi exposes the finalized dataset to the visualization layer
// and operators, alongside health and metrics endpoints.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lawatlas/disaster-law-etl/internal/dataset"
	"github.com/lawatlas/disaster-law-etl/internal/domain"
)

// Server serves dataset queries plus /healthz, /readyz, and /metrics.
type Server struct {
	httpServer *http.Server
	ds         *dataset.Dataset
	logger     *slog.Logger
}

// NewServer creates an HTTP server over a finalized dataset.
func NewServer(addr string, ds *dataset.Dataset, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		ds:     ds,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/jurisdictions", s.handleList)
	mux.HandleFunc("GET /api/jurisdictions/{id}", s.handleLookup)
	mux.HandleFunc("GET /api/visualization", s.handleVisualization)
	mux.HandleFunc("GET /api/unresolved", s.handleUnresolved)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	if s.ds == nil || s.ds.Len() == 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  "no dataset loaded",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.ds.All())
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	rec, err := s.ds.Lookup(id)
	if err != nil {
		if errors.Is(err, dataset.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
			return
		}
		s.logger.Error("lookup failed", "id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "lookup failed"})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleVisualization(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.ds.ForVisualization())
}

func (s *Server) handleUnresolved(w http.ResponseWriter, _ *http.Request) {
	unresolved := s.ds.Unresolved()
	if unresolved == nil {
		unresolved = []domain.Unresolved{}
	}
	writeJSON(w, http.StatusOK, unresolved)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
