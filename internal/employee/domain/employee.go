package domain

import (
	"errors"
	"strings"
	"time"
)

// Employee is a person on the payroll. Employees exist independently of
// login accounts; a user links to exactly one employee.
type Employee struct {
	ID             int64
	FirstName      string
	LastName       string
	SecondLastName string
	Active         bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// FullName returns the employee's display name.
func (e *Employee) FullName() string {
	parts := []string{e.FirstName, e.LastName}
	if e.SecondLastName != "" {
		parts = append(parts, e.SecondLastName)
	}
	return strings.Join(parts, " ")
}

// Validate validates the employee for persistence.
func (e *Employee) Validate() error {
	if strings.TrimSpace(e.FirstName) == "" {
		return errors.New("first name is required")
	}
	if strings.TrimSpace(e.LastName) == "" {
		return errors.New("last name is required")
	}
	return nil
}
