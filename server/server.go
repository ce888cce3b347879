// Package server exposes an engine's snapshot and neighbor queries over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"

	"github.com/botirk38/podcastsim/neighbors"
	"github.com/botirk38/podcastsim/similarity"
	"github.com/botirk38/podcastsim/types"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Engine is the part of the podcast engine the server drives
type Engine interface {
	Current() *types.Snapshot
	Build(ctx context.Context, ids []string) (*types.Snapshot, error)
	NeighborsIn(ctx context.Context, s *types.Snapshot, id string, k int) ([]neighbors.Neighbor, error)
	Compare(ctx context.Context, id, other string) (neighbors.Neighbor, error)
}

// Server routes HTTP requests to an Engine
type Server struct {
	engine Engine
	logger logrus.FieldLogger
	router *mux.Router
}

// SnapshotInfo describes the published snapshot
type SnapshotInfo struct {
	Version    string    `json:"version"`
	Documents  int       `json:"documents"`
	Vocabulary int       `json:"vocabulary"`
	BuiltAt    time.Time `json:"built_at"`
}

// NeighborsResponse is the body of a neighbor query
type NeighborsResponse struct {
	ID        string               `json:"id"`
	Version   string               `json:"version"`
	Neighbors []neighbors.Neighbor `json:"neighbors"`
}

// BuildRequest is the body of a rebuild request
type BuildRequest struct {
	IDs []string `json:"ids"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Message  string `json:"message"`
	Response int    `json:"response"`
}

// New creates a server for engine. A nil logger selects the standard logger.
func New(engine Engine, logger logrus.FieldLogger) *Server {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	s := &Server{
		engine: engine,
		logger: logger,
		router: mux.NewRouter(),
	}
	s.registerHandlers(s.router)
	return s
}

func (s *Server) registerHandlers(r *mux.Router) {
	r.HandleFunc("/healthz", s.health).Methods(http.MethodGet)
	r.HandleFunc("/v1/snapshot", s.snapshot).Methods(http.MethodGet)
	r.HandleFunc("/v1/snapshot", s.build).Methods(http.MethodPost)
	r.HandleFunc("/v1/documents/{id}/neighbors", s.neighbors).Methods(http.MethodGet)
	r.HandleFunc("/v1/documents/{id}/compare/{other}", s.compare).Methods(http.MethodGet)
}

// Handler returns the router wrapped with request logging and panic recovery
func (s *Server) Handler() http.Handler {
	logged := handlers.CustomLoggingHandler(io.Discard, s.router, func(_ io.Writer, p handlers.LogFormatterParams) {
		s.logger.WithFields(logrus.Fields{
			"method":  p.Request.Method,
			"path":    p.URL.Path,
			"status":  p.StatusCode,
			"size":    p.Size,
			"elapsed": time.Since(p.TimeStamp),
		}).Info("Request")
	})
	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(s.logger),
		handlers.PrintRecoveryStack(true),
	)(logged)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 20 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("Serving")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down server: %w", err)
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"snapshot": s.engine.Current() != nil,
	})
}

func (s *Server) snapshot(w http.ResponseWriter, r *http.Request) {
	snap := s.engine.Current()
	if snap == nil {
		s.writeError(w, types.ErrNoSnapshot)
		return
	}
	writeJSON(w, http.StatusOK, info(snap))
}

func (s *Server) build(w http.ResponseWriter, r *http.Request) {
	var req BuildRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "invalid request body: " + err.Error(), Response: http.StatusBadRequest})
		return
	}
	if len(req.IDs) == 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "ids must not be empty", Response: http.StatusBadRequest})
		return
	}

	snap, err := s.engine.Build(r.Context(), req.IDs)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, info(snap))
}

func (s *Server) neighbors(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	k := neighbors.DefaultK
	if raw := r.URL.Query().Get("k"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: fmt.Sprintf("invalid k %q", raw), Response: http.StatusBadRequest})
			return
		}
		k = parsed
	}

	snap := s.engine.Current()
	if snap == nil {
		s.writeError(w, types.ErrNoSnapshot)
		return
	}
	result, err := s.engine.NeighborsIn(r.Context(), snap, id, k)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, NeighborsResponse{
		ID:        id,
		Version:   snap.Version.String(),
		Neighbors: result,
	})
}

func (s *Server) compare(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	result, err := s.engine.Compare(r.Context(), vars["id"], vars["other"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func info(snap *types.Snapshot) SnapshotInfo {
	return SnapshotInfo{
		Version:    snap.Version.String(),
		Documents:  snap.Len(),
		Vocabulary: len(snap.Vocabulary),
		BuiltAt:    snap.BuiltAt,
	}
}

// writeError maps engine errors onto status codes
func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, types.ErrDocumentNotFound):
		code = http.StatusNotFound
	case errors.Is(err, types.ErrNoSnapshot):
		code = http.StatusServiceUnavailable
	case errors.Is(err, types.ErrDuplicateDocument),
		errors.Is(err, types.ErrNegativeCount),
		errors.Is(err, similarity.ErrNonFinite):
		code = http.StatusBadRequest
	case errors.Is(err, context.Canceled):
		code = http.StatusRequestTimeout
	}
	if code == http.StatusInternalServerError {
		s.logger.WithError(err).Error("Request failed")
	}
	writeJSON(w, code, ErrorResponse{Message: err.Error(), Response: code})
}

func writeJSON(w http.ResponseWriter, code int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(value); err != nil {
		logrus.Errorf("unable to write json: %q", err)
	}
}
