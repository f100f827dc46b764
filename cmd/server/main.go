package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/adriandevv/checador/internal/audit"
	auditrepo "github.com/adriandevv/checador/internal/audit/repository"
	authservice "github.com/adriandevv/checador/internal/auth/service"
	"github.com/adriandevv/checador/internal/config"
	"github.com/adriandevv/checador/internal/db"
	employeerepo "github.com/adriandevv/checador/internal/employee/repository"
	revocationrepo "github.com/adriandevv/checador/internal/revocation/repository"
	revocationservice "github.com/adriandevv/checador/internal/revocation/service"
	"github.com/adriandevv/checador/internal/security"
	"github.com/adriandevv/checador/internal/server"
	"github.com/adriandevv/checador/internal/server/middleware"
	"github.com/adriandevv/checador/internal/telemetry"
	"github.com/adriandevv/checador/internal/telemetry/otel"
	userrepo "github.com/adriandevv/checador/internal/user/repository"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	setupLogging(cfg)

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers, err := otel.NewProviders(ctx, cfg.OTLPEndpoint, "checador-api", cfg.Env != "production")
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	providers.SetGlobal()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = providers.Shutdown(shutdownCtx)
	}()

	metrics, err := telemetry.NewMetrics(providers.MeterProvider.Meter("checador"))
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	users := userrepo.NewPostgresRepository(database)
	employees := employeerepo.NewPostgresRepository(database)
	revocations := revocationrepo.NewPostgresRepository(database)
	auditLogs := auditrepo.NewPostgresRepository(database)
	auditLogger := audit.NewLogger(auditLogs, middleware.ClientIPFrom)

	hasher := security.NewHasher(cfg.BcryptCost)
	codec := security.NewTokenCodec(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL())

	revocationSvc := revocationservice.NewRevocationService(revocations, cfg.TokenTTL(), metrics)
	authSvc := authservice.NewAuthService(users, revocationSvc, hasher, codec, auditLogger, metrics)

	sweeper := cron.New()
	if _, err := sweeper.AddFunc(fmt.Sprintf("@every %s", cfg.SweepInterval()), func() {
		if _, err := revocationSvc.Sweep(context.Background()); err != nil {
			log.Error().Err(err).Msg("revocation sweep failed")
		}
	}); err != nil {
		return fmt.Errorf("scheduling sweep: %w", err)
	}
	sweeper.Start()
	defer sweeper.Stop()

	router := server.NewRouter(server.Deps{
		DB:          database,
		Auth:        authSvc,
		Revocations: revocationSvc,
		Users:       users,
		Employees:   employees,
		Audit:       auditLogs,
		CORSOrigins: cfg.Origins(),
	})
	srv := server.New(cfg.HTTPAddr, router)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func setupLogging(cfg *config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}
