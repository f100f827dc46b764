package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/adriandevv/checador/internal/db/sqlc/gen"
	"github.com/adriandevv/checador/internal/employee/domain"
)

type PostgresRepository struct {
	queries *gen.Queries
}

// NewPostgresRepository returns an employee repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{queries: gen.New(db)}
}

// GetByID returns the employee for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*domain.Employee, error) {
	e, err := r.queries.GetEmployee(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return genEmployeeToDomain(&e), nil
}

// List returns employees ordered by id with limit and offset.
func (r *PostgresRepository) List(ctx context.Context, limit, offset int32) ([]*domain.Employee, error) {
	list, err := r.queries.ListEmployees(ctx, gen.ListEmployeesParams{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Employee, len(list))
	for i := range list {
		out[i] = genEmployeeToDomain(&list[i])
	}
	return out, nil
}

// Create persists the employee and returns it with the generated ID and timestamps.
func (r *PostgresRepository) Create(ctx context.Context, e *domain.Employee) (*domain.Employee, error) {
	created, err := r.queries.CreateEmployee(ctx, gen.CreateEmployeeParams{
		FirstName:      e.FirstName,
		LastName:       e.LastName,
		SecondLastName: e.SecondLastName,
	})
	if err != nil {
		return nil, err
	}
	return genEmployeeToDomain(&created), nil
}

// Update replaces the employee's name fields.
func (r *PostgresRepository) Update(ctx context.Context, e *domain.Employee) error {
	_, err := r.queries.UpdateEmployee(ctx, gen.UpdateEmployeeParams{
		ID:             e.ID,
		FirstName:      e.FirstName,
		LastName:       e.LastName,
		SecondLastName: e.SecondLastName,
	})
	return err
}

// SetActive toggles the employee's active flag.
func (r *PostgresRepository) SetActive(ctx context.Context, id int64, active bool) error {
	_, err := r.queries.SetEmployeeActive(ctx, gen.SetEmployeeActiveParams{ID: id, Active: active})
	return err
}

func genEmployeeToDomain(e *gen.Employee) *domain.Employee {
	if e == nil {
		return nil
	}
	return &domain.Employee{
		ID:             e.ID,
		FirstName:      e.FirstName,
		LastName:       e.LastName,
		SecondLastName: e.SecondLastName,
		Active:         e.Active,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}
