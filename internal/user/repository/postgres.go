package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/adriandevv/checador/internal/db/sqlc/gen"
	"github.com/adriandevv/checador/internal/user/domain"
)

type PostgresRepository struct {
	queries *gen.Queries
}

// NewPostgresRepository returns a user repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{queries: gen.New(db)}
}

// GetByID returns the user for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	u, err := r.queries.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return genUserToDomain(&u), nil
}

// GetActiveByEmail returns the active user for email, or nil if not found or inactive.
func (r *PostgresRepository) GetActiveByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, err := r.queries.GetActiveUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return genUserToDomain(&u), nil
}

// List returns users ordered by id with limit and offset.
func (r *PostgresRepository) List(ctx context.Context, limit, offset int32) ([]*domain.User, error) {
	list, err := r.queries.ListUsers(ctx, gen.ListUsersParams{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	out := make([]*domain.User, len(list))
	for i := range list {
		out[i] = genUserToDomain(&list[i])
	}
	return out, nil
}

// Create persists the user and returns it with the generated ID and timestamps.
func (r *PostgresRepository) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	created, err := r.queries.CreateUser(ctx, gen.CreateUserParams{
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Active:       u.Active,
		RoleID:       int64(u.RoleID),
		EmployeeID:   u.EmployeeID,
	})
	if err != nil {
		return nil, err
	}
	return genUserToDomain(&created), nil
}

// UpdatePassword replaces the user's password hash.
func (r *PostgresRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	_, err := r.queries.UpdateUserPassword(ctx, gen.UpdateUserPasswordParams{ID: id, PasswordHash: passwordHash})
	return err
}

// UpdateRole sets the user's role.
func (r *PostgresRepository) UpdateRole(ctx context.Context, id int64, role domain.Role) error {
	_, err := r.queries.UpdateUserRole(ctx, gen.UpdateUserRoleParams{ID: id, RoleID: int64(role)})
	return err
}

// SetActive toggles the user's active flag.
func (r *PostgresRepository) SetActive(ctx context.Context, id int64, active bool) error {
	_, err := r.queries.SetUserActive(ctx, gen.SetUserActiveParams{ID: id, Active: active})
	return err
}

func genUserToDomain(u *gen.User) *domain.User {
	if u == nil {
		return nil
	}
	return &domain.User{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Active:       u.Active,
		RoleID:       domain.Role(u.RoleID),
		EmployeeID:   u.EmployeeID,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}
