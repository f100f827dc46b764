package domain

import "time"

// Reason records why a token was revoked.
type Reason string

const (
	ReasonLogout         Reason = "logout"
	ReasonLogoutAll      Reason = "logout_all"
	ReasonRefresh        Reason = "refresh"
	ReasonPasswordChange Reason = "password_change"
	ReasonAdminRevoke    Reason = "admin_revoke"
)

// Valid reports whether r is one of the known reasons.
func (r Reason) Valid() bool {
	switch r {
	case ReasonLogout, ReasonLogoutAll, ReasonRefresh, ReasonPasswordChange, ReasonAdminRevoke:
		return true
	}
	return false
}

// Revocation is an immutable record that a specific token was killed before
// its natural expiry. A token is addressable by its jti or, when the jti
// cannot be extracted, by the fingerprint of the full token string; both
// are unique across all records. Un-revoking is not supported.
type Revocation struct {
	ID        int64
	TokenID   string
	TokenHash string
	UserID    int64
	Reason    Reason
	RevokedAt time.Time
	// ExpiresAt is copied from the token's own exp claim, never recomputed.
	// It bounds the record's useful life: once past, the token is dead on
	// its own and the sweep may delete the record.
	ExpiresAt time.Time
}

// Expired reports whether the underlying token could no longer be valid at now.
func (r *Revocation) Expired(now time.Time) bool {
	return !r.ExpiresAt.After(now)
}

// Stats summarizes the revocation store for the admin surface.
type Stats struct {
	Total    int64            `json:"total"`
	Active   int64            `json:"active"`
	Expired  int64            `json:"expired"`
	ByReason map[string]int64 `json:"byReason"`
}
