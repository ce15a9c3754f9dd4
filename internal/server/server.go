// Package server exposes the scout pipeline over HTTP: a server-sent
// event stream for runs, a thesis enhancement endpoint, and a health
// probe.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/meridian-vc/scout-cli/internal/model"
	"github.com/meridian-vc/scout-cli/internal/pipeline"
)

// Runner executes one scout run, streaming progress through emit.
type Runner interface {
	Run(ctx context.Context, req model.ScoutRequest, emit pipeline.EmitFunc) error
}

// Enhancer refines a raw thesis into a sharper search query.
type Enhancer interface {
	EnhanceThesis(ctx context.Context, raw string) (string, error)
}

// Server holds the HTTP surface over the pipeline.
type Server struct {
	runner         Runner
	enhancer       Enhancer
	allowedOrigins []string
}

// New creates a Server.
func New(runner Runner, enhancer Enhancer, allowedOrigins []string) *Server {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	return &Server{
		runner:         runner,
		enhancer:       enhancer,
		allowedOrigins: allowedOrigins,
	}
}

// Handler builds the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", s.handleHealth)
	r.Post("/scout", s.handleScout)
	r.Post("/enhance", s.handleEnhance)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScout runs the pipeline and streams its progress as server-sent
// events. The client disconnecting cancels the run via the request
// context.
func (s *Server) handleScout(w http.ResponseWriter, r *http.Request) {
	var req model.ScoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Thesis) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "thesis is required"})
		return
	}

	stream, err := newEventStream(w)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "streaming unsupported"})
		return
	}

	if err := s.runner.Run(r.Context(), req, stream.Emit); err != nil {
		// the terminal error event already went out on the stream
		zap.L().Warn("scout run failed", zap.Error(err))
	}
}

func (s *Server) handleEnhance(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
		return
	}

	enhanced, err := s.enhancer.EnhanceThesis(r.Context(), req.Query)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "enhancement failed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"original_query": req.Query,
		"enhanced_query": enhanced,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Warn("write response failed", zap.Error(err))
	}
}
