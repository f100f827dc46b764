package domain

import (
	"errors"
	"time"
)

// User is an account that can log in. Every user is linked to an employee
// record; the employee link is what ownership checks compare against.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Active       bool
	RoleID       Role
	EmployeeID   int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Role identifies the user's role. The numeric values match the seeded
// roles table; call sites must use the named predicates, never the raw number.
type Role int64

const (
	RoleAdmin    Role = 1
	RoleEmployee Role = 2
)

// IsAdmin reports whether the role grants unrestricted access.
func (r Role) IsAdmin() bool { return r == RoleAdmin }

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool { return r == RoleAdmin || r == RoleEmployee }

// Validate validates the user for persistence. Returns an error describing the first validation failure.
func (u *User) Validate() error {
	if u.Email == "" {
		return errors.New("email is required")
	}
	if u.PasswordHash == "" {
		return errors.New("password hash is required")
	}
	if !u.RoleID.Valid() {
		return errors.New("unknown role")
	}
	if u.EmployeeID == 0 {
		return errors.New("employee link is required")
	}
	return nil
}
