package main

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/gestion/authsvc/internal/auth"
	"github.com/gestion/authsvc/internal/config"
	"github.com/gestion/authsvc/internal/handler"
	"github.com/gestion/authsvc/internal/metrics"
	"github.com/gestion/authsvc/internal/middleware"
)

type routes struct {
	root    *handler.Handler
	health  *handler.HealthHandler
	auth    *handler.AuthHandler
	metrics *handler.MetricsHandler
	tokens  *auth.TokenIssuer
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(rt routes, recorder metrics.Recorder, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()
	corsCfg.AllowCredentials = cfg.CORSAllowCredentials
	corsCfg.MaxAge = cfg.CORSMaxAge

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Metrics(recorder))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment()}))
	r.Use(middleware.CORS(corsCfg))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

	r.Get("/healthz", rt.health.Healthz)
	r.Get("/readyz", rt.health.Readyz)
	r.Get("/metrics", rt.metrics.Metrics)
	r.Get("/", rt.root.Info)

	authCfg := middleware.AuthConfig{
		Logger: logger,
		Tokens: rt.tokens,
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", rt.auth.Register)
			r.Post("/login", rt.auth.Login)
			r.With(middleware.RequireRefresh(authCfg)).Post("/refresh", rt.auth.Refresh)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAccess(authCfg))
				r.Post("/cambiar-clave", rt.auth.ChangePassword)
				r.Post("/cambiar-sucursal", rt.auth.ChangeBranch)
				r.Get("/me", rt.auth.Me)
				r.Put("/me", rt.auth.UpdateMe)
			})
		})

		r.With(middleware.RequireAccess(authCfg)).Get("/sucursales", rt.auth.Branches)
	})

	r.NotFound(rt.root.NotFound)
	r.MethodNotAllowed(rt.root.MethodNotAllowed)

	return r
}
