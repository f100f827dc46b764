package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/adriandevv/checador/internal/db/sqlc/gen"
	"github.com/adriandevv/checador/internal/revocation/domain"
)

type PostgresRepository struct {
	queries *gen.Queries
}

// NewPostgresRepository returns a revocation repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{queries: gen.New(db)}
}

// Create inserts the record with ON CONFLICT DO NOTHING so that concurrent
// duplicate revocations race safely: exactly one caller creates the row and
// every caller sees the token as revoked afterwards.
func (r *PostgresRepository) Create(ctx context.Context, rec *domain.Revocation) (bool, error) {
	rows, err := r.queries.CreateRevokedToken(ctx, gen.CreateRevokedTokenParams{
		Jti:       rec.TokenID,
		TokenHash: rec.TokenHash,
		UserID:    rec.UserID,
		Reason:    string(rec.Reason),
		RevokedAt: rec.RevokedAt,
		ExpiresAt: rec.ExpiresAt,
	})
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// FindByTokenIDOrHash returns the record matching either key, or nil when neither matches.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) FindByTokenIDOrHash(ctx context.Context, tokenID, tokenHash string) (*domain.Revocation, error) {
	rec, err := r.queries.GetRevokedToken(ctx, gen.GetRevokedTokenParams{Jti: tokenID, TokenHash: tokenHash})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return genRevokedTokenToDomain(&rec), nil
}

// ListByUser returns the user's revocation records, most recent first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64, limit int32) ([]*domain.Revocation, error) {
	list, err := r.queries.ListRevokedTokensByUser(ctx, gen.ListRevokedTokensByUserParams{UserID: userID, Limit: limit})
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Revocation, len(list))
	for i := range list {
		out[i] = genRevokedTokenToDomain(&list[i])
	}
	return out, nil
}

// DeleteExpired removes all records whose expires_at has passed and returns
// the number removed. A single DELETE statement; safe to run concurrently
// with Create and FindByTokenIDOrHash.
func (r *PostgresRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return r.queries.DeleteExpiredRevokedTokens(ctx, now)
}

// Stats returns totals for the admin surface.
func (r *PostgresRepository) Stats(ctx context.Context, now time.Time) (*domain.Stats, error) {
	total, err := r.queries.CountRevokedTokens(ctx)
	if err != nil {
		return nil, err
	}
	expired, err := r.queries.CountExpiredRevokedTokens(ctx, now)
	if err != nil {
		return nil, err
	}
	byReason, err := r.queries.CountRevokedTokensByReason(ctx)
	if err != nil {
		return nil, err
	}
	reasons := make(map[string]int64, len(byReason))
	for _, row := range byReason {
		reasons[row.Reason] = row.Count
	}
	return &domain.Stats{
		Total:    total,
		Active:   total - expired,
		Expired:  expired,
		ByReason: reasons,
	}, nil
}

// SetUserEpoch upserts the user's revocation cutoff. GREATEST in the upsert
// keeps the epoch monotonic under concurrent or delayed duplicate calls.
func (r *PostgresRepository) SetUserEpoch(ctx context.Context, userID int64, cutoff time.Time) error {
	return r.queries.UpsertUserTokenEpoch(ctx, gen.UpsertUserTokenEpochParams{
		UserID:        userID,
		RevokedBefore: cutoff,
	})
}

// GetUserEpoch returns the user's revocation cutoff, or nil when absent.
func (r *PostgresRepository) GetUserEpoch(ctx context.Context, userID int64) (*time.Time, error) {
	t, err := r.queries.GetUserTokenEpoch(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func genRevokedTokenToDomain(rec *gen.RevokedToken) *domain.Revocation {
	if rec == nil {
		return nil
	}
	return &domain.Revocation{
		ID:        rec.ID,
		TokenID:   rec.Jti,
		TokenHash: rec.TokenHash,
		UserID:    rec.UserID,
		Reason:    domain.Reason(rec.Reason),
		RevokedAt: rec.RevokedAt,
		ExpiresAt: rec.ExpiresAt,
	}
}
