package middleware

import (
	"context"

	userdomain "github.com/adriandevv/checador/internal/user/domain"
)

type contextKey struct{ name string }

var identityKey = contextKey{"identity"}

// Identity is the authenticated caller, established by RequireAuth (or
// OptionalAuth) from a checked token.
type Identity struct {
	UserID     int64
	Email      string
	Role       userdomain.Role
	EmployeeID int64
	TokenID    string
	Token      string
}

// WithIdentity returns a context carrying the authenticated identity.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// GetIdentity returns the identity from context and true if set.
func GetIdentity(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey).(*Identity)
	return id, ok
}
