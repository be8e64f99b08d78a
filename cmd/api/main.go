// Package main is the entrypoint for the auth API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/gestion/authsvc/internal/auth"
	"github.com/gestion/authsvc/internal/cache"
	"github.com/gestion/authsvc/internal/config"
	"github.com/gestion/authsvc/internal/handler"
	"github.com/gestion/authsvc/internal/metrics"
	"github.com/gestion/authsvc/internal/migrations"
	"github.com/gestion/authsvc/internal/repository"
	"github.com/gestion/authsvc/internal/server"
	"github.com/gestion/authsvc/internal/service"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	if cfg.AutoMigrate {
		if err := migrations.Up(ctx, cfg.DatabaseURL); err != nil {
			logger.Error("failed to apply migrations",
				slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			)
			os.Exit(1)
		}
		logger.Info("migrations applied")
	}

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database")

	recorder := metrics.NewPrometheus()

	deps := service.AuthDeps{
		Store:     repo,
		Passwords: auth.NewPasswords(cfg.PasswordHasher, cfg.BcryptCost),
		Tokens:    auth.NewTokenIssuer(cfg.JWTSecretKey, cfg.JWTIssuer, cfg.AccessTokenTTL, cfg.RefreshTokenTTL),
		Metrics:   recorder,
		Logger:    logger,
	}

	// Redis is optional. Keep both the service dependency and the readiness
	// probe as untyped nil when it is not configured.
	var cacheProbe handler.HealthChecker
	var branchCache *cache.Cache
	if cfg.RedisURL != "" {
		branchCache, err = cache.New(ctx, cfg.RedisURL, cfg.BranchCacheTTL)
		if err != nil {
			logger.Error(
				"failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			repo.Close()
			os.Exit(1)
		}
		deps.Cache = branchCache
		cacheProbe = branchCache
		logger.Info("connected to Redis")
	} else {
		logger.Info("REDIS_URL not set, branch names are read from Postgres")
	}

	authService := service.NewAuthService(deps, service.AuthConfig{
		AppID:                   cfg.AppID,
		LoginIssuesRefreshToken: cfg.LoginIssuesRefreshToken,
		DefaultStatusID:         cfg.DefaultEstado,
		DefaultRoleID:           cfg.DefaultRol,
		DefaultProfileID:        cfg.DefaultPerfil,
	})

	r := setupRouter(routes{
		root:    handler.New(version),
		health:  handler.NewHealthHandler(repo, cacheProbe),
		auth:    handler.NewAuthHandler(authService, logger),
		metrics: handler.NewMetricsHandler(recorder),
		tokens:  deps.Tokens,
	}, recorder, cfg, logger)

	srv := server.New(r, server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	srv.OnShutdown("postgres", func(ctx context.Context) error {
		repo.Close()
		return nil
	})
	if branchCache != nil {
		srv.OnShutdown("redis", func(ctx context.Context) error {
			return branchCache.Close()
		})
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"version", version,
		"app_id", cfg.AppID,
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h).With("service", "authsvc")
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
