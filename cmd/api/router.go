package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/featherbook/featherbook/internal/auth"
	"github.com/featherbook/featherbook/internal/config"
	"github.com/featherbook/featherbook/internal/handler"
	"github.com/featherbook/featherbook/internal/metrics"
	"github.com/featherbook/featherbook/internal/middleware"
	"github.com/featherbook/featherbook/internal/model"
	"github.com/featherbook/featherbook/internal/ratelimit"
	"github.com/featherbook/featherbook/internal/repository"
	"github.com/featherbook/featherbook/internal/service"
)

// app carries the wired dependencies the router is built from.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	repo   *repository.Repository
	tokens *auth.TokenManager

	// limiter is nil when rate limiting is disabled.
	limiter ratelimit.Limiter

	recorder metrics.Recorder
	// metricsHandler is nil when metrics are disabled.
	metricsHandler http.Handler

	storeCheck handler.HealthChecker
	// cacheCheck is nil when Redis is not used.
	cacheCheck handler.HealthChecker
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(a *app) *chi.Mux {
	cfg, logger := a.cfg, a.logger

	// Services
	noteService := service.NewNoteService(a.repo, a.recorder)
	synthesisService := service.NewSynthesisService(a.repo, a.recorder)
	authService := service.NewAuthService(a.repo, a.tokens, nil, a.recorder)

	// Handlers
	h := handler.New()
	healthHandler := handler.NewHealthHandler(a.storeCheck, a.cacheCheck)
	authHandler := handler.NewAuthHandler(authService, logger)
	userHandler := handler.NewUserHandler(authService, logger)
	noteHandler := handler.NewNoteHandler(noteService, synthesisService, logger)
	synthesisHandler := handler.NewSynthesisHandler(synthesisService, logger)

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Metrics(a.recorder))
	r.Use(middleware.Security(middleware.SecurityConfig{
		IsDevelopment:      cfg.IsDevelopment(),
		MaxRequestBodySize: cfg.MaxRequestBodySize,
	}))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()
	r.Use(middleware.CORS(corsCfg))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

	// Probes (no auth, no rate limit)
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)
	if a.metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", a.metricsHandler)
	}

	authCfg := middleware.AuthConfig{
		Logger: logger,
		Tokens: a.tokens,
	}

	rateLimitCfg := middleware.RateLimitConfig{
		Logger:  logger,
		Limiter: a.limiter,
		Enabled: cfg.RateLimitEnabled,
		Metrics: a.recorder,
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(rateLimitCfg))
		r.Use(middleware.RejectSuspiciousInput)

		r.Get("/health", healthHandler.APIHealth)

		// Public auth endpoints
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		// Everything below requires a bearer token
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(authCfg))

			r.Get("/auth/me", authHandler.Me)
			r.Post("/auth/refresh", authHandler.Refresh)

			r.Route("/notes", func(r chi.Router) {
				r.Get("/", noteHandler.List)
				r.Post("/", noteHandler.Create)
				r.Get("/{id}", noteHandler.Get)
				r.Put("/{id}", noteHandler.Update)
				r.Delete("/{id}", noteHandler.Delete)
				r.Get("/{id}/syntheses", noteHandler.Syntheses)
			})

			r.Route("/syntheses", func(r chi.Router) {
				r.Get("/", synthesisHandler.List)
				r.Post("/", synthesisHandler.Create)
				r.Get("/{id}", synthesisHandler.Get)
				r.Delete("/{id}", synthesisHandler.Delete)
			})

			r.With(middleware.RequireRole(logger, model.RoleAdmin)).Get("/users", userHandler.List)
		})
	})

	// 404 and 405 handlers
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}
