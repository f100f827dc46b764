package repository

import (
	"context"
	"database/sql"

	"github.com/adriandevv/checador/internal/audit/domain"
	"github.com/adriandevv/checador/internal/db/sqlc/gen"
)

type PostgresRepository struct {
	queries *gen.Queries
}

// NewPostgresRepository returns an audit log repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{queries: gen.New(db)}
}

// Create persists the audit log. The audit log must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, a *domain.AuditLog) error {
	uid := sql.NullInt64{Int64: a.UserID, Valid: a.UserID != 0}
	meta := sql.NullString{String: a.Metadata, Valid: a.Metadata != ""}
	return r.queries.CreateAuditLog(ctx, gen.CreateAuditLogParams{
		ID: a.ID, UserID: uid, Action: a.Action, Resource: a.Resource,
		Ip: a.IP, Metadata: meta, CreatedAt: a.CreatedAt,
	})
}

// ListByUser returns the user's audit logs, most recent first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64, limit int32) ([]*domain.AuditLog, error) {
	uid := sql.NullInt64{Int64: userID, Valid: userID != 0}
	list, err := r.queries.ListAuditLogsByUser(ctx, gen.ListAuditLogsByUserParams{UserID: uid, Limit: limit})
	if err != nil {
		return nil, err
	}
	out := make([]*domain.AuditLog, len(list))
	for i := range list {
		out[i] = genAuditLogToDomain(&list[i])
	}
	return out, nil
}

func genAuditLogToDomain(a *gen.AuditLog) *domain.AuditLog {
	if a == nil {
		return nil
	}
	var uid int64
	if a.UserID.Valid {
		uid = a.UserID.Int64
	}
	meta := ""
	if a.Metadata.Valid {
		meta = a.Metadata.String
	}
	return &domain.AuditLog{
		ID: a.ID, UserID: uid, Action: a.Action, Resource: a.Resource,
		IP: a.Ip, Metadata: meta, CreatedAt: a.CreatedAt,
	}
}
