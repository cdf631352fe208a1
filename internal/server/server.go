// Package server provides the HTTP API for the Sage engine.
package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tokenforge/sage/internal/engine"
	"github.com/tokenforge/sage/internal/knowledge"
	"github.com/tokenforge/sage/internal/learning"
	"github.com/tokenforge/sage/internal/metrics"
	"github.com/tokenforge/sage/internal/tasks"
)

// Server is the HTTP API server.
type Server struct {
	router   chi.Router
	engine   *engine.Engine
	events   *learning.EventStore
	store    *knowledge.Store
	tasks    *tasks.Store
	daily    *metrics.Daily
	registry *prometheus.Registry
}

// Options bundles the server's collaborators.
type Options struct {
	Engine   *engine.Engine
	Events   *learning.EventStore
	Store    *knowledge.Store
	Tasks    *tasks.Store
	Daily    *metrics.Daily
	Registry *prometheus.Registry
}

// New creates a Server.
func New(opts Options) *Server {
	s := &Server{
		engine:   opts.Engine,
		events:   opts.Events,
		store:    opts.Store,
		tasks:    opts.Tasks,
		daily:    opts.Daily,
		registry: opts.Registry,
	}
	s.router = s.buildRouter()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/api/v1/health", s.handleHealth)
	r.Post("/api/v1/ask", s.handleAsk)
	r.Post("/api/v1/feedback", s.handleFeedback)
	r.Get("/api/v1/knowledge", s.handleListKnowledge)
	r.Post("/api/v1/knowledge", s.handleCreateKnowledge)
	r.Get("/api/v1/tasks", s.handleListTasks)
	r.Get("/api/v1/metrics/learning", s.handleLearningMetrics)

	if s.registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
