// Package handler exposes user administration over HTTP.
package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/adriandevv/checador/internal/server/middleware"
	"github.com/adriandevv/checador/internal/server/respond"
	"github.com/adriandevv/checador/internal/user/domain"
	"github.com/adriandevv/checador/internal/user/repository"
)

// Handler serves the /users routes. All of them are admin only; accounts are
// created through /auth/register.
type Handler struct {
	users repository.Repository
}

// NewHandler returns a user admin handler.
func NewHandler(users repository.Repository) *Handler {
	return &Handler{users: users}
}

// RegisterRoutes mounts the user routes on r.
func (h *Handler) RegisterRoutes(r *mux.Router, mw *middleware.Auth) {
	admin := r.PathPrefix("/users").Subrouter()
	admin.Use(mw.RequireAuth, middleware.RequireRole(domain.RoleAdmin))
	admin.HandleFunc("", h.List).Methods(http.MethodGet)
	admin.HandleFunc("/{id:[0-9]+}", h.Get).Methods(http.MethodGet)
	admin.HandleFunc("/{id:[0-9]+}/role", h.UpdateRole).Methods(http.MethodPatch)
	admin.HandleFunc("/{id:[0-9]+}/active", h.SetActive).Methods(http.MethodPatch)
}

type userResponse struct {
	ID         int64     `json:"id"`
	Email      string    `json:"email"`
	Active     bool      `json:"active"`
	RoleID     int64     `json:"roleId"`
	EmployeeID int64     `json:"employeeId"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func toResponse(u *domain.User) userResponse {
	return userResponse{
		ID: u.ID, Email: u.Email, Active: u.Active,
		RoleID: int64(u.RoleID), EmployeeID: u.EmployeeID,
		CreatedAt: u.CreatedAt, UpdatedAt: u.UpdatedAt,
	}
}

// List handles GET /users?limit=N&offset=M.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset, ok := pagination(w, r)
	if !ok {
		return
	}
	users, err := h.users.List(r.Context(), limit, offset)
	if err != nil {
		respond.Internal(w, err)
		return
	}
	out := make([]userResponse, len(users))
	for i, u := range users {
		out[i] = toResponse(u)
	}
	respond.Success(w, http.StatusOK, "users", out)
}

// Get handles GET /users/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	user, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		respond.Internal(w, err)
		return
	}
	if user == nil {
		respond.Error(w, http.StatusNotFound, respond.CodeNotFound, "user not found")
		return
	}
	respond.Success(w, http.StatusOK, "user", toResponse(user))
}

// UpdateRole handles PATCH /users/{id}/role.
func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		RoleID int64 `json:"roleId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, respond.CodeInvalidPayload, "invalid request body")
		return
	}
	role := domain.Role(req.RoleID)
	if !role.Valid() {
		respond.Error(w, http.StatusBadRequest, respond.CodeValidation, "unknown role")
		return
	}
	if err := h.users.UpdateRole(r.Context(), id, role); err != nil {
		respond.Internal(w, err)
		return
	}
	respond.Success(w, http.StatusOK, "role updated", nil)
}

// SetActive handles PATCH /users/{id}/active. Deactivation takes effect on
// the next token check; outstanding tokens stop working without being
// individually revoked.
func (h *Handler) SetActive(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Active bool `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, respond.CodeInvalidPayload, "invalid request body")
		return
	}
	if err := h.users.SetActive(r.Context(), id, req.Active); err != nil {
		respond.Internal(w, err)
		return
	}
	respond.Success(w, http.StatusOK, "user updated", nil)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, respond.CodeInvalidPayload, "invalid id")
		return 0, false
	}
	return id, true
}

func pagination(w http.ResponseWriter, r *http.Request) (limit, offset int32, ok bool) {
	limit, offset = 50, 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || n <= 0 || n > 500 {
			respond.Error(w, http.StatusBadRequest, respond.CodeInvalidPayload, "invalid limit")
			return 0, 0, false
		}
		limit = int32(n)
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || n < 0 {
			respond.Error(w, http.StatusBadRequest, respond.CodeInvalidPayload, "invalid offset")
			return 0, 0, false
		}
		offset = int32(n)
	}
	return limit, offset, true
}
