// Package api provides the HTTP server for the kobo daemon. The CLI and any
// local UI talk to it: capture transactions, trigger flushes, inspect the
// queue and sync status.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kobo-ledger/kobo/internal/app/queue"
	"github.com/kobo-ledger/kobo/internal/infra/connectivity"
	"github.com/kobo-ledger/kobo/internal/infra/remote"
)

// Version is reported by /api/status.
const Version = "0.1.0"

// Server is the kobo HTTP API server.
type Server struct {
	queue          *queue.Queue
	endpoint       remote.Endpoint
	monitor        connectivity.Monitor
	metricsEnabled bool
}

// NewServer creates a new API server over the queue and its collaborators.
func NewServer(q *queue.Queue, endpoint remote.Endpoint, monitor connectivity.Monitor) *Server {
	return &Server{queue: q, endpoint: endpoint, monitor: monitor}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/transactions", s.handleCapture)
		r.Get("/status", s.handleStatus)
		r.Route("/queue", func(r chi.Router) {
			r.Get("/", s.handleQueueList)
			r.Get("/stats", s.handleQueueStats)
			r.Post("/flush", s.handleFlush)
			r.Delete("/", s.handleQueueClear)
		})
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}

// corsMiddleware adds CORS headers so browser clients on other origins can
// reach the API, and answers OPTIONS preflights directly.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
