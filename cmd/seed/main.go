// seed inserts a development admin account for local testing.
// Idempotent: skips inserts if the admin user (admin@example.com) already exists.
package main

import (
	"context"
	"log"

	"github.com/adriandevv/checador/internal/config"
	"github.com/adriandevv/checador/internal/db"
	employeedomain "github.com/adriandevv/checador/internal/employee/domain"
	employeerepo "github.com/adriandevv/checador/internal/employee/repository"
	"github.com/adriandevv/checador/internal/security"
	userdomain "github.com/adriandevv/checador/internal/user/domain"
	userrepo "github.com/adriandevv/checador/internal/user/repository"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "password123"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer database.Close()

	ctx := context.Background()
	users := userrepo.NewPostgresRepository(database)
	employees := employeerepo.NewPostgresRepository(database)

	existing, err := users.GetActiveByEmail(ctx, adminEmail)
	if err != nil {
		log.Fatalf("lookup: %v", err)
	}
	if existing != nil {
		log.Printf("seed: %s already exists, nothing to do", adminEmail)
		return
	}

	employee, err := employees.Create(ctx, &employeedomain.Employee{
		FirstName: "Admin",
		LastName:  "Dev",
		Active:    true,
	})
	if err != nil {
		log.Fatalf("creating employee: %v", err)
	}

	hasher := security.NewHasher(cfg.BcryptCost)
	hash, err := hasher.Hash([]byte(adminPassword))
	if err != nil {
		log.Fatalf("hashing password: %v", err)
	}
	user, err := users.Create(ctx, &userdomain.User{
		Email:        adminEmail,
		PasswordHash: hash,
		Active:       true,
		RoleID:       userdomain.RoleAdmin,
		EmployeeID:   employee.ID,
	})
	if err != nil {
		log.Fatalf("creating user: %v", err)
	}
	log.Printf("seed: created admin user %d (%s / %s)", user.ID, adminEmail, adminPassword)
}
