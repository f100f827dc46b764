// Package handler exposes the revocation store's admin surface.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/adriandevv/checador/internal/revocation/domain"
	"github.com/adriandevv/checador/internal/revocation/service"
	"github.com/adriandevv/checador/internal/server/middleware"
	"github.com/adriandevv/checador/internal/server/respond"
	userdomain "github.com/adriandevv/checador/internal/user/domain"
)

// Handler serves the /admin/blacklist routes. All of them are admin only.
type Handler struct {
	revocations *service.RevocationService
}

// NewHandler returns a revocation admin handler.
func NewHandler(revocations *service.RevocationService) *Handler {
	return &Handler{revocations: revocations}
}

// RegisterRoutes mounts the admin blacklist routes on r.
func (h *Handler) RegisterRoutes(r *mux.Router, mw *middleware.Auth) {
	admin := r.PathPrefix("/admin/blacklist").Subrouter()
	admin.Use(mw.RequireAuth, middleware.RequireRole(userdomain.RoleAdmin))
	admin.HandleFunc("/stats", h.Stats).Methods(http.MethodGet)
	admin.HandleFunc("/cleanup", h.Cleanup).Methods(http.MethodPost)
	admin.HandleFunc("/user/{id:[0-9]+}", h.UserRevocations).Methods(http.MethodGet)
	admin.HandleFunc("/invalidate", h.Invalidate).Methods(http.MethodPost)
}

// Stats handles GET /admin/blacklist/stats.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.revocations.Stats(r.Context())
	if err != nil {
		respond.Internal(w, err)
		return
	}
	respond.Success(w, http.StatusOK, "blacklist stats", stats)
}

// Cleanup handles POST /admin/blacklist/cleanup. Runs one sweep on demand.
func (h *Handler) Cleanup(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.revocations.Sweep(r.Context())
	if err != nil {
		respond.Internal(w, err)
		return
	}
	respond.Success(w, http.StatusOK, "cleanup complete", map[string]int64{"deletedCount": deleted})
}

type revocationResponse struct {
	ID        int64     `json:"id"`
	TokenID   string    `json:"tokenId"`
	UserID    int64     `json:"userId"`
	Reason    string    `json:"reason"`
	RevokedAt time.Time `json:"revokedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// UserRevocations handles GET /admin/blacklist/user/{id}?limit=N.
func (h *Handler) UserRevocations(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, respond.CodeInvalidPayload, "invalid id")
		return
	}
	limit := int64(10)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.ParseInt(raw, 10, 32)
		if err != nil || limit <= 0 {
			respond.Error(w, http.StatusBadRequest, respond.CodeInvalidPayload, "invalid limit")
			return
		}
	}
	list, err := h.revocations.UserRevocations(r.Context(), userID, int32(limit))
	if err != nil {
		respond.Internal(w, err)
		return
	}
	epoch, err := h.revocations.UserEpoch(r.Context(), userID)
	if err != nil {
		respond.Internal(w, err)
		return
	}
	out := make([]revocationResponse, len(list))
	for i, rec := range list {
		out[i] = revocationResponse{
			ID: rec.ID, TokenID: rec.TokenID, UserID: rec.UserID,
			Reason: string(rec.Reason), RevokedAt: rec.RevokedAt, ExpiresAt: rec.ExpiresAt,
		}
	}
	data := map[string]any{"revocations": out}
	if epoch != nil {
		data["revokedBefore"] = epoch
	}
	respond.Success(w, http.StatusOK, "user revocations", data)
}

// Invalidate handles POST /admin/blacklist/invalidate. Revokes an arbitrary
// token string; the token does not need to verify, only to be attributable.
func (h *Handler) Invalidate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token  string `json:"token"`
		Reason string `json:"reason"`
		UserID int64  `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		respond.Error(w, http.StatusBadRequest, respond.CodeInvalidPayload, "token is required")
		return
	}
	reason := domain.Reason(req.Reason)
	if req.Reason == "" {
		reason = domain.ReasonAdminRevoke
	}
	created, err := h.revocations.InvalidateToken(r.Context(), req.Token, reason, req.UserID)
	if err != nil {
		if errors.Is(err, service.ErrUndecodableToken) {
			respond.Error(w, http.StatusBadRequest, respond.CodeInvalidPayload, "token cannot be decoded; supply userId")
			return
		}
		respond.Internal(w, err)
		return
	}
	msg := "token revoked"
	if !created {
		msg = "token was already revoked"
	}
	respond.Success(w, http.StatusOK, msg, map[string]bool{"created": created})
}
