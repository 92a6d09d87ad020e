// Package server wires the HTTP surface: health probes and the
// websocket subscription endpoint.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hostmond/hostmond/internal/hub"
	"github.com/hostmond/hostmond/internal/middleware"
)

// NewRouter creates and configures the HTTP router.
func NewRouter(h *hub.Hub, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))

	r.Get("/health", healthHandler(h))
	r.Get("/ready", readyHandler())
	r.Get("/ws", h.ServeWS)

	return r
}

func healthHandler(h *hub.Hub) http.HandlerFunc {
	started := time.Now()
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":         "ok",
			"clients":        h.Count(),
			"uptime_seconds": int(time.Since(started).Seconds()),
		})
	}
}

func readyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
