// Package handler exposes the liveness and readiness probes.
package handler

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/adriandevv/checador/internal/server/respond"
)

// Handler serves /healthz. Readiness pings the database; liveness does not.
type Handler struct {
	db *sql.DB
}

// NewHandler returns a health handler. db may be nil for liveness-only use.
func NewHandler(db *sql.DB) *Handler {
	return &Handler{db: db}
}

// RegisterRoutes mounts the health routes on r.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/healthz", h.Live).Methods(http.MethodGet)
	r.HandleFunc("/healthz/ready", h.Ready).Methods(http.MethodGet)
}

// Live handles GET /healthz.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	respond.Success(w, http.StatusOK, "ok", nil)
}

// Ready handles GET /healthz/ready.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			respond.Error(w, http.StatusServiceUnavailable, respond.CodeInternal, "database unreachable")
			return
		}
	}
	respond.Success(w, http.StatusOK, "ready", nil)
}
