// Package server assembles the HTTP router and runs the server with
// graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	audithandler "github.com/adriandevv/checador/internal/audit/handler"
	auditrepo "github.com/adriandevv/checador/internal/audit/repository"
	authhandler "github.com/adriandevv/checador/internal/auth/handler"
	authservice "github.com/adriandevv/checador/internal/auth/service"
	employeehandler "github.com/adriandevv/checador/internal/employee/handler"
	employeerepo "github.com/adriandevv/checador/internal/employee/repository"
	healthhandler "github.com/adriandevv/checador/internal/health/handler"
	revocationhandler "github.com/adriandevv/checador/internal/revocation/handler"
	revocationservice "github.com/adriandevv/checador/internal/revocation/service"
	"github.com/adriandevv/checador/internal/server/middleware"
	userhandler "github.com/adriandevv/checador/internal/user/handler"
	userrepo "github.com/adriandevv/checador/internal/user/repository"
)

// Deps are the wired services and repositories the router serves.
type Deps struct {
	DB          *sql.DB
	Auth        *authservice.AuthService
	Revocations *revocationservice.RevocationService
	Users       userrepo.Repository
	Employees   employeerepo.Repository
	Audit       auditrepo.Repository
	CORSOrigins []string
}

// NewRouter builds the full route table under /api/v1 plus the health
// probes at the root.
func NewRouter(deps Deps) http.Handler {
	r := mux.NewRouter()
	r.Use(requestLogger, middleware.ClientIP)

	healthhandler.NewHandler(deps.DB).RegisterRoutes(r)

	api := r.PathPrefix("/api/v1").Subrouter()
	mw := middleware.NewAuth(deps.Auth)
	authhandler.NewHandler(deps.Auth, deps.Employees).RegisterRoutes(api, mw)
	revocationhandler.NewHandler(deps.Revocations).RegisterRoutes(api, mw)
	userhandler.NewHandler(deps.Users).RegisterRoutes(api, mw)
	employeehandler.NewHandler(deps.Employees).RegisterRoutes(api, mw)
	audithandler.NewHandler(deps.Audit).RegisterRoutes(api, mw)

	c := cors.New(cors.Options{
		AllowedOrigins:   deps.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})
	return c.Handler(r)
}

// Server runs the HTTP server and shuts it down cleanly.
type Server struct {
	srv *http.Server
}

// New returns a Server listening on addr once Start is called.
func New(addr string, handler http.Handler) *Server {
	return &Server{srv: &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}}
}

// Start blocks serving requests until Shutdown or a listener error.
func (s *Server) Start() error {
	log.Info().Str("addr", s.srv.Addr).Msg("http server listening")
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
