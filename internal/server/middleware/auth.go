// Package middleware gates requests on token checks, roles, and resource
// ownership. The header is validated before the token is handed to the
// checker, so malformed requests never touch the revocation store.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	authservice "github.com/adriandevv/checador/internal/auth/service"
	"github.com/adriandevv/checador/internal/server/respond"
	userdomain "github.com/adriandevv/checador/internal/user/domain"
)

// Checker establishes an identity from a bearer token.
type Checker interface {
	Check(ctx context.Context, token string) (*authservice.Principal, error)
}

// Auth builds the auth-related middleware from a token checker.
type Auth struct {
	checker Checker
}

// NewAuth returns middleware backed by the given checker.
func NewAuth(checker Checker) *Auth {
	return &Auth{checker: checker}
}

// RequireAuth rejects requests without a valid bearer token and stores the
// identity in the request context for downstream handlers.
func (a *Auth) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, code, ok := bearerToken(r)
		if !ok {
			respond.Error(w, http.StatusUnauthorized, code, "authentication required")
			return
		}
		principal, err := a.checker.Check(r.Context(), token)
		if err != nil {
			status, code, msg := checkErrorResponse(err)
			respond.Error(w, status, code, msg)
			return
		}
		ctx := WithIdentity(r.Context(), principalIdentity(principal, token))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuth attaches an identity when a valid token is presented and
// passes the request through anonymously otherwise. It never rejects; a
// bad or missing token just means no identity in context.
func (a *Auth) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, _, ok := bearerToken(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		principal, err := a.checker.Check(r.Context(), token)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		ctx := WithIdentity(r.Context(), principalIdentity(principal, token))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole gates a route on the caller's role. Must run after RequireAuth.
func RequireRole(role userdomain.Role) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := GetIdentity(r.Context())
			if !ok {
				respond.Error(w, http.StatusUnauthorized, respond.CodeNoToken, "authentication required")
				return
			}
			if id.Role != role && !id.Role.IsAdmin() {
				respond.Error(w, http.StatusForbidden, respond.CodeInsufficientPermissions, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireOwnership gates a route on the employee path variable matching the
// caller's linked employee. Admins bypass the check. Must run after
// RequireAuth.
func RequireOwnership(pathVar string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := GetIdentity(r.Context())
			if !ok {
				respond.Error(w, http.StatusUnauthorized, respond.CodeNoToken, "authentication required")
				return
			}
			if id.Role.IsAdmin() {
				next.ServeHTTP(w, r)
				return
			}
			employeeID, err := strconv.ParseInt(mux.Vars(r)[pathVar], 10, 64)
			if err != nil {
				respond.Error(w, http.StatusBadRequest, respond.CodeInvalidPayload, "invalid id")
				return
			}
			if employeeID != id.EmployeeID {
				respond.Error(w, http.StatusForbidden, respond.CodeResourceNotOwned, "resource not owned")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the token from an exact "Bearer <token>" header.
// A missing header and a malformed one report different codes.
func bearerToken(r *http.Request) (token, code string, ok bool) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", respond.CodeNoToken, false
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", respond.CodeInvalidTokenFormat, false
	}
	return parts[1], "", true
}

func principalIdentity(p *authservice.Principal, token string) *Identity {
	return &Identity{
		UserID:     p.User.ID,
		Email:      p.User.Email,
		Role:       p.User.RoleID,
		EmployeeID: p.User.EmployeeID,
		TokenID:    p.Claims.TokenID(),
		Token:      token,
	}
}

func checkErrorResponse(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, authservice.ErrTokenExpired):
		return http.StatusUnauthorized, respond.CodeTokenExpired, "token expired"
	case errors.Is(err, authservice.ErrTokenRevoked):
		return http.StatusUnauthorized, respond.CodeTokenRevoked, "token revoked"
	case errors.Is(err, authservice.ErrInvalidToken):
		return http.StatusUnauthorized, respond.CodeInvalidToken, "invalid token"
	case errors.Is(err, authservice.ErrUserNotFound):
		return http.StatusUnauthorized, respond.CodeUserNotFound, "user not found"
	case errors.Is(err, authservice.ErrUserInactive):
		return http.StatusUnauthorized, respond.CodeUserInactive, "user is deactivated"
	default:
		return http.StatusInternalServerError, respond.CodeInternal, "internal server error"
	}
}
