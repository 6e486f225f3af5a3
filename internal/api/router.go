package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/medviet/clinic-booking/internal/auth"
	"github.com/medviet/clinic-booking/internal/clinic"
)

type RouterConfig struct {
	Service *clinic.Service
	Repo    clinic.Repository
	Tokens  *auth.TokenManager
	PgPool  *pgxpool.Pool
	Redis   *redis.Client
	Env     string
	Version string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(auth.Middleware(cfg.Tokens))
	r.Use(LoggingMiddleware)

	// Health endpoints
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	// Auth
	r.Post("/auth/login", loginHandler(cfg.Repo, cfg.Tokens))

	// Appointment endpoints
	r.Post("/appointments/auto-schedule", autoScheduleHandler(cfg.Service))
	r.Get("/appointments/me", myAppointmentsHandler(cfg.Service))
	r.Get("/appointments", listAppointmentsHandler(cfg.Service))
	r.Get("/appointments/{id}", getAppointmentHandler(cfg.Service))

	// Admin endpoints
	r.Post("/admin/doctors", createDoctorHandler(cfg.Repo))

	return r
}
