// Package handler exposes the audit trail to administrators.
package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	auditrepo "github.com/adriandevv/checador/internal/audit/repository"
	"github.com/adriandevv/checador/internal/server/middleware"
	"github.com/adriandevv/checador/internal/server/respond"
	userdomain "github.com/adriandevv/checador/internal/user/domain"
)

// Handler serves the /admin/audit routes. All of them are admin only.
type Handler struct {
	repo auditrepo.Repository
}

// NewHandler returns an audit admin handler.
func NewHandler(repo auditrepo.Repository) *Handler {
	return &Handler{repo: repo}
}

// RegisterRoutes mounts the admin audit routes on r.
func (h *Handler) RegisterRoutes(r *mux.Router, mw *middleware.Auth) {
	admin := r.PathPrefix("/admin/audit").Subrouter()
	admin.Use(mw.RequireAuth, middleware.RequireRole(userdomain.RoleAdmin))
	admin.HandleFunc("/user/{id:[0-9]+}", h.UserEvents).Methods(http.MethodGet)
}

type auditLogResponse struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"userId"`
	Action    string    `json:"action"`
	Resource  string    `json:"resource"`
	IP        string    `json:"ip"`
	Metadata  string    `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserEvents handles GET /admin/audit/user/{id}?limit=N.
func (h *Handler) UserEvents(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, respond.CodeInvalidPayload, "invalid id")
		return
	}
	limit := int64(50)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.ParseInt(raw, 10, 32)
		if err != nil || limit <= 0 {
			respond.Error(w, http.StatusBadRequest, respond.CodeInvalidPayload, "invalid limit")
			return
		}
	}
	list, err := h.repo.ListByUser(r.Context(), userID, int32(limit))
	if err != nil {
		respond.Internal(w, err)
		return
	}
	out := make([]auditLogResponse, len(list))
	for i, entry := range list {
		out[i] = auditLogResponse{
			ID: entry.ID, UserID: entry.UserID, Action: entry.Action,
			Resource: entry.Resource, IP: entry.IP, Metadata: entry.Metadata,
			CreatedAt: entry.CreatedAt,
		}
	}
	respond.Success(w, http.StatusOK, "audit events", map[string]any{"events": out})
}
