// Package handler exposes the auth service over HTTP.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/adriandevv/checador/internal/auth/service"
	employeerepo "github.com/adriandevv/checador/internal/employee/repository"
	revocationdomain "github.com/adriandevv/checador/internal/revocation/domain"
	"github.com/adriandevv/checador/internal/server/middleware"
	"github.com/adriandevv/checador/internal/server/respond"
	userdomain "github.com/adriandevv/checador/internal/user/domain"
)

// Handler serves the /auth routes.
type Handler struct {
	auth      *service.AuthService
	employees employeerepo.Repository
}

// NewHandler returns an auth handler.
func NewHandler(auth *service.AuthService, employees employeerepo.Repository) *Handler {
	return &Handler{auth: auth, employees: employees}
}

// RegisterRoutes mounts the auth routes on r. mw gates the protected ones.
func (h *Handler) RegisterRoutes(r *mux.Router, mw *middleware.Auth) {
	r.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost)

	protected := r.PathPrefix("/auth").Subrouter()
	protected.Use(mw.RequireAuth)
	protected.HandleFunc("/logout", h.Logout).Methods(http.MethodPost)
	protected.HandleFunc("/logout-all", h.LogoutAll).Methods(http.MethodPost)
	protected.HandleFunc("/refresh-token", h.Refresh).Methods(http.MethodPost)
	protected.HandleFunc("/change-password", h.ChangePassword).Methods(http.MethodPut)
	protected.HandleFunc("/verify-token", h.VerifyToken).Methods(http.MethodGet)
	protected.HandleFunc("/profile", h.Profile).Methods(http.MethodGet)

	admin := protected.NewRoute().Subrouter()
	admin.Use(middleware.RequireRole(userdomain.RoleAdmin))
	admin.HandleFunc("/register", h.Register).Methods(http.MethodPost)
	admin.HandleFunc("/revoke-user-tokens/{id:[0-9]+}", h.RevokeUserTokens).Methods(http.MethodPost)
}

type userResponse struct {
	ID         int64 `json:"id"`
	Email      string `json:"email"`
	Active     bool   `json:"active"`
	RoleID     int64  `json:"roleId"`
	EmployeeID int64  `json:"employeeId"`
}

func toUserResponse(u *userdomain.User) userResponse {
	return userResponse{
		ID: u.ID, Email: u.Email, Active: u.Active,
		RoleID: int64(u.RoleID), EmployeeID: u.EmployeeID,
	}
}

type tokenResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      userResponse `json:"user"`
}

// Login handles POST /auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, respond.CodeInvalidPayload, "invalid request body")
		return
	}
	res, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respond.Error(w, http.StatusUnauthorized, respond.CodeInvalidCredentials, "invalid credentials")
			return
		}
		respond.Internal(w, err)
		return
	}
	respond.Success(w, http.StatusOK, "login successful", tokenResponse{
		Token: res.Token, ExpiresAt: res.ExpiresAt, User: toUserResponse(res.User),
	})
}

// Logout handles POST /auth/logout. The token being revoked is the one that
// authenticated the request.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.GetIdentity(r.Context())
	if err := h.auth.Logout(r.Context(), id.Token, id.UserID); err != nil {
		respond.Internal(w, err)
		return
	}
	respond.Success(w, http.StatusOK, "logout successful", nil)
}

// LogoutAll handles POST /auth/logout-all.
func (h *Handler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.GetIdentity(r.Context())
	count, err := h.auth.LogoutAll(r.Context(), id.UserID)
	if err != nil {
		respond.Internal(w, err)
		return
	}
	respond.Success(w, http.StatusOK, "all sessions revoked", map[string]int64{"revokedCount": count})
}

// Refresh handles POST /auth/refresh-token. The presented token is revoked
// and replaced in one step.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.GetIdentity(r.Context())
	res, err := h.auth.Refresh(r.Context(), id.Token)
	if err != nil {
		status, code, msg := refreshErrorResponse(err)
		respond.Error(w, status, code, msg)
		return
	}
	respond.Success(w, http.StatusOK, "token refreshed", tokenResponse{
		Token: res.Token, ExpiresAt: res.ExpiresAt, User: toUserResponse(res.User),
	})
}

// ChangePassword handles PUT /auth/change-password. Every token issued
// before the change stops working.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.GetIdentity(r.Context())
	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, respond.CodeInvalidPayload, "invalid request body")
		return
	}
	if err := h.auth.ChangePassword(r.Context(), id.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			respond.Error(w, http.StatusUnauthorized, respond.CodeInvalidCredentials, "current password is incorrect")
		case errors.Is(err, service.ErrUserNotFound):
			respond.Error(w, http.StatusNotFound, respond.CodeUserNotFound, "user not found")
		default:
			respond.Error(w, http.StatusBadRequest, respond.CodeValidation, err.Error())
		}
		return
	}
	respond.Success(w, http.StatusOK, "password changed", nil)
}

// VerifyToken handles GET /auth/verify-token. Reaching the handler means the
// middleware already checked the token; the body echoes the identity.
func (h *Handler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.GetIdentity(r.Context())
	respond.Success(w, http.StatusOK, "token is valid", map[string]any{
		"userId":     id.UserID,
		"roleId":     int64(id.Role),
		"employeeId": id.EmployeeID,
		"tokenId":    id.TokenID,
	})
}

// Profile handles GET /auth/profile.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	id, _ := middleware.GetIdentity(r.Context())
	employee, err := h.employees.GetByID(r.Context(), id.EmployeeID)
	if err != nil {
		respond.Internal(w, err)
		return
	}
	data := map[string]any{
		"userId":     id.UserID,
		"roleId":     int64(id.Role),
		"employeeId": id.EmployeeID,
	}
	if employee != nil {
		data["employee"] = map[string]any{
			"id":       employee.ID,
			"fullName": employee.FullName(),
			"active":   employee.Active,
		}
	}
	respond.Success(w, http.StatusOK, "profile", data)
}

// Register handles POST /auth/register (admin only).
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email      string `json:"email"`
		Password   string `json:"password"`
		RoleID     int64  `json:"roleId"`
		EmployeeID int64  `json:"employeeId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, respond.CodeInvalidPayload, "invalid request body")
		return
	}
	user, err := h.auth.Register(r.Context(), req.Email, req.Password, userdomain.Role(req.RoleID), req.EmployeeID)
	if err != nil {
		if errors.Is(err, service.ErrEmailAlreadyRegistered) {
			respond.Error(w, http.StatusConflict, respond.CodeConflict, "email already registered")
			return
		}
		respond.Error(w, http.StatusBadRequest, respond.CodeValidation, err.Error())
		return
	}
	respond.Success(w, http.StatusCreated, "user registered", toUserResponse(user))
}

// RevokeUserTokens handles POST /auth/revoke-user-tokens/{id} (admin only).
// The body may carry a reason; without one the revocation is recorded as an
// admin revoke.
func (h *Handler) RevokeUserTokens(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, respond.CodeInvalidPayload, "invalid id")
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respond.Error(w, http.StatusBadRequest, respond.CodeInvalidPayload, "invalid request body")
		return
	}
	reason := revocationdomain.ReasonAdminRevoke
	if req.Reason != "" {
		reason = revocationdomain.Reason(req.Reason)
		if !reason.Valid() {
			respond.Error(w, http.StatusBadRequest, respond.CodeValidation, "unknown reason")
			return
		}
	}
	count, err := h.auth.RevokeUserTokens(r.Context(), userID, reason)
	if err != nil {
		respond.Internal(w, err)
		return
	}
	respond.Success(w, http.StatusOK, "user tokens revoked", map[string]int64{"revokedCount": count})
}

func refreshErrorResponse(err error) (int, string, string) {
	switch {
	case errors.Is(err, service.ErrTokenExpired):
		return http.StatusUnauthorized, respond.CodeTokenExpired, "token expired"
	case errors.Is(err, service.ErrTokenRevoked):
		return http.StatusUnauthorized, respond.CodeTokenRevoked, "token revoked"
	case errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized, respond.CodeInvalidToken, "invalid token"
	case errors.Is(err, service.ErrUserNotFound):
		return http.StatusUnauthorized, respond.CodeUserNotFound, "user not found"
	case errors.Is(err, service.ErrUserInactive):
		return http.StatusUnauthorized, respond.CodeUserInactive, "user is deactivated"
	default:
		return http.StatusInternalServerError, respond.CodeInternal, "internal server error"
	}
}
