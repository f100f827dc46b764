package repository

import (
	"context"

	"github.com/adriandevv/checador/internal/employee/domain"
)

// Repository defines persistence for employees.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*domain.Employee, error)
	List(ctx context.Context, limit, offset int32) ([]*domain.Employee, error)
	Create(ctx context.Context, e *domain.Employee) (*domain.Employee, error)
	Update(ctx context.Context, e *domain.Employee) error
	SetActive(ctx context.Context, id int64, active bool) error
}
