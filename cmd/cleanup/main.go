// cleanup runs one expired-revocation sweep and prints store stats. Meant
// for cron or operator use; the server also sweeps on its own schedule.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/adriandevv/checador/internal/config"
	"github.com/adriandevv/checador/internal/db"
	revocationrepo "github.com/adriandevv/checador/internal/revocation/repository"
	revocationservice "github.com/adriandevv/checador/internal/revocation/service"
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

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	svc := revocationservice.NewRevocationService(
		revocationrepo.NewPostgresRepository(database), cfg.TokenTTL(), nil)

	deleted, err := svc.Sweep(ctx)
	if err != nil {
		log.Fatalf("sweep: %v", err)
	}
	stats, err := svc.Stats(ctx)
	if err != nil {
		log.Fatalf("stats: %v", err)
	}
	fmt.Printf("deleted %d expired records; %d active, %d total\n", deleted, stats.Active, stats.Total)
}
