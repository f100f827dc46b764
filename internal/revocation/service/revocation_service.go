// Package service implements the revocation authority: idempotent token
// invalidation, per-user revocation epochs, and the expired-record sweep.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/adriandevv/checador/internal/revocation/domain"
	"github.com/adriandevv/checador/internal/revocation/repository"
	"github.com/adriandevv/checador/internal/security"
	"github.com/adriandevv/checador/internal/telemetry"
)

// ErrUndecodableToken is returned when a token is so malformed that neither
// its jti nor its expiry can be recovered; such a token is revoked by
// fingerprint with a synthetic jti and a fallback expiry.
var ErrUndecodableToken = errors.New("token cannot be decoded")

// RevocationService coordinates writes to the revocation store. Reads on the
// request path go through the auth service's checker; this service owns the
// mutation and maintenance side.
type RevocationService struct {
	repo        repository.Repository
	fallbackTTL time.Duration
	metrics     *telemetry.Metrics
}

// NewRevocationService returns a RevocationService persisting to repo.
// fallbackTTL bounds the record lifetime for tokens whose expiry cannot be
// decoded; metrics may be nil.
func NewRevocationService(repo repository.Repository, fallbackTTL time.Duration, metrics *telemetry.Metrics) *RevocationService {
	return &RevocationService{repo: repo, fallbackTTL: fallbackTTL, metrics: metrics}
}

// InvalidateToken revokes a single token. The token is decoded without
// signature verification: revocation must work for tokens we can no longer
// (or never could) verify, and the fingerprint keys the record even when the
// jti is missing. userID may be zero when unknown; the decoded claim wins.
// Returns created=false when the token was already revoked, so duplicate
// and concurrent calls are idempotent.
func (s *RevocationService) InvalidateToken(ctx context.Context, token string, reason domain.Reason, userID int64) (bool, error) {
	now := time.Now().UTC()
	rec := &domain.Revocation{
		TokenID:   uuid.New().String(),
		TokenHash: security.FingerprintToken(token),
		UserID:    userID,
		Reason:    reason,
		RevokedAt: now,
		ExpiresAt: now.Add(s.fallbackTTL),
	}

	claims := &security.Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err == nil {
		if claims.TokenID() != "" {
			rec.TokenID = claims.TokenID()
		}
		if exp := claims.ExpiryTime(); !exp.IsZero() {
			rec.ExpiresAt = exp
		}
		if claims.UserID != 0 {
			rec.UserID = claims.UserID
		}
	} else if userID == 0 {
		return false, ErrUndecodableToken
	}

	created, err := s.repo.Create(ctx, rec)
	if err != nil {
		return false, err
	}
	if created {
		s.metrics.RecordRevocation(ctx, string(reason))
	}
	return created, nil
}

// IsRevoked reports whether a record exists for either key.
func (s *RevocationService) IsRevoked(ctx context.Context, tokenID, tokenHash string) (bool, error) {
	rec, err := s.repo.FindByTokenIDOrHash(ctx, tokenID, tokenHash)
	if err != nil {
		return false, err
	}
	return rec != nil, nil
}

// RevokeAllUserTokens moves the user's revocation epoch to now, killing every
// token issued before this moment without enumerating them. Returns the
// number of explicit records the user already has, for the admin response.
// The cutoff is truncated to whole seconds because iat claims are; a
// finer-grained cutoff would kill tokens issued in the same second after it.
func (s *RevocationService) RevokeAllUserTokens(ctx context.Context, userID int64, reason domain.Reason) (int64, error) {
	if err := s.repo.SetUserEpoch(ctx, userID, time.Now().UTC().Truncate(time.Second)); err != nil {
		return 0, err
	}
	s.metrics.RecordRevocation(ctx, string(reason))
	existing, err := s.repo.ListByUser(ctx, userID, 1000)
	if err != nil {
		// The epoch write succeeded; the count is informational only.
		log.Warn().Err(err).Int64("user_id", userID).Msg("counting existing revocations failed")
		return 0, nil
	}
	return int64(len(existing)), nil
}

// UserEpoch returns the user's revocation cutoff, or nil when absent.
func (s *RevocationService) UserEpoch(ctx context.Context, userID int64) (*time.Time, error) {
	return s.repo.GetUserEpoch(ctx, userID)
}

// UserRevocations returns the user's explicit revocation records, most recent first.
func (s *RevocationService) UserRevocations(ctx context.Context, userID int64, limit int32) ([]*domain.Revocation, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.repo.ListByUser(ctx, userID, limit)
}

// Sweep deletes every record whose underlying token has naturally expired
// and returns the number removed. Running it twice in a row removes nothing
// the second time.
func (s *RevocationService) Sweep(ctx context.Context) (int64, error) {
	deleted, err := s.repo.DeleteExpired(ctx, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		log.Info().Int64("deleted", deleted).Msg("expired revocation records swept")
	}
	s.metrics.RecordSweep(ctx, deleted)
	return deleted, nil
}

// Stats returns store totals for the admin surface.
func (s *RevocationService) Stats(ctx context.Context) (*domain.Stats, error) {
	return s.repo.Stats(ctx, time.Now().UTC())
}
