package repository

import (
	"context"
	"time"

	"github.com/adriandevv/checador/internal/revocation/domain"
)

// Repository defines persistence for revocation records and per-user
// revocation epochs. Create and SetUserEpoch must be safe under concurrent
// invocation from independent requests; the Postgres implementation relies
// on the table's unique constraints and an atomic upsert for this, not on
// application-level locking.
type Repository interface {
	// Create inserts the record and reports whether a row was created.
	// A duplicate jti or token hash is the success path: the token is
	// already revoked, Create returns (false, nil).
	Create(ctx context.Context, rec *domain.Revocation) (created bool, err error)
	// FindByTokenIDOrHash returns the record matching either key, or nil when
	// neither matches.
	FindByTokenIDOrHash(ctx context.Context, tokenID, tokenHash string) (*domain.Revocation, error)
	ListByUser(ctx context.Context, userID int64, limit int32) ([]*domain.Revocation, error)
	// DeleteExpired removes all records with expires_at <= now and returns
	// the number removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	Stats(ctx context.Context, now time.Time) (*domain.Stats, error)
	// SetUserEpoch moves the user's revocation cutoff forward to cutoff.
	// The epoch never moves backward; a delayed duplicate call with an older
	// cutoff leaves the stored value untouched.
	SetUserEpoch(ctx context.Context, userID int64, cutoff time.Time) error
	// GetUserEpoch returns the user's revocation cutoff, or nil when the user
	// has never had a bulk revocation.
	GetUserEpoch(ctx context.Context, userID int64) (*time.Time, error)
}
