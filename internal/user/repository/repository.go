package repository

import (
	"context"

	"github.com/adriandevv/checador/internal/user/domain"
)

// Repository defines persistence for users.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	// GetActiveByEmail returns the active user with the given email, or nil
	// when no such user exists or the user is deactivated.
	GetActiveByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, limit, offset int32) ([]*domain.User, error)
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	UpdateRole(ctx context.Context, id int64, role domain.Role) error
	SetActive(ctx context.Context, id int64, active bool) error
}
