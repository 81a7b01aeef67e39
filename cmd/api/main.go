// Package main is the entrypoint for the Feather Book API server.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/featherbook/featherbook/internal/auth"
	"github.com/featherbook/featherbook/internal/cache"
	"github.com/featherbook/featherbook/internal/config"
	"github.com/featherbook/featherbook/internal/docstore"
	"github.com/featherbook/featherbook/internal/docstore/memory"
	"github.com/featherbook/featherbook/internal/docstore/mongo"
	"github.com/featherbook/featherbook/internal/metrics"
	"github.com/featherbook/featherbook/internal/ratelimit"
	"github.com/featherbook/featherbook/internal/repository"
	"github.com/featherbook/featherbook/internal/server"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	// Initialize document store
	store, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error(
			"failed to connect to document store",
			slog.String("backend", cfg.StoreBackend),
			slog.String("error", sanitizeError(err, cfg.MongoURI)),
			slog.String("mongodb_uri", redactURL(cfg.MongoURI)),
		)
		os.Exit(1)
	}
	logger.Info("connected to document store", slog.String("backend", cfg.StoreBackend))

	repo := repository.New(store)
	if err := repo.EnsureIndexes(ctx); err != nil {
		logger.Error("failed to ensure indexes", slog.String("error", sanitizeError(err, cfg.MongoURI)))
		os.Exit(1)
	}

	// Initialize Redis only when the shared rate limiter needs it
	var cacheClient *cache.Cache
	if cfg.UsesRedis() {
		cacheClient, err = cache.New(ctx, cfg.RedisURL, cache.DefaultOptions())
		if err != nil {
			logger.Error(
				"failed to connect to Redis",
				slog.String("error", sanitizeError(err, cfg.RedisURL)),
				slog.String("redis_url", redactURL(cfg.RedisURL)),
			)
			os.Exit(1)
		}
		logger.Info("connected to Redis")
	}

	tokens, err := auth.NewTokenManager([]byte(cfg.JWTSecretKey), auth.WithTTL(cfg.JWTExpiration))
	if err != nil {
		logger.Error("failed to create token manager", slog.String("error", err.Error()))
		os.Exit(1)
	}

	recorder, metricsHandler := initMetrics(cfg)
	limiter, sweeper := initLimiter(cfg, cacheClient)

	a := &app{
		cfg:            cfg,
		logger:         logger,
		repo:           repo,
		tokens:         tokens,
		limiter:        limiter,
		recorder:       recorder,
		metricsHandler: metricsHandler,
		storeCheck:     store,
	}
	if cacheClient != nil {
		a.cacheCheck = cacheClient
	}

	srv := server.New(setupRouter(a), server.Config{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	// Registered first, closed last.
	srv.OnShutdown("store", store.Close)
	if cacheClient != nil {
		srv.OnShutdown("redis", cacheClient.Close)
	}
	if sweeper != nil {
		srv.Go("ratelimit-sweeper", func(ctx context.Context) {
			sweeper.Run(ctx, cfg.RateLimitWindow)
		})
	}

	logger.Info("starting server",
		slog.Int("port", cfg.AppPort),
		slog.String("env", cfg.AppEnv),
		slog.String("store", cfg.StoreBackend),
		slog.Bool("rate_limit", cfg.RateLimitEnabled),
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// openStore connects the configured document store backend.
func openStore(ctx context.Context, cfg *config.Config) (docstore.Store, error) {
	if cfg.StoreBackend == config.StoreMemory {
		return memory.New(), nil
	}
	return mongo.New(ctx, mongo.Config{
		URI:                    cfg.MongoURI,
		Database:               cfg.MongoDatabase,
		MaxPoolSize:            cfg.MongoMaxPoolSize,
		MinPoolSize:            cfg.MongoMinPoolSize,
		MaxIdleTime:            cfg.MongoMaxIdleTime,
		ServerSelectionTimeout: cfg.MongoServerSelectionTimeout,
	})
}

// initMetrics returns the recorder and, when metrics are enabled, the
// handler serving /metrics.
func initMetrics(cfg *config.Config) (metrics.Recorder, http.Handler) {
	if !cfg.MetricsEnabled {
		return metrics.NewNoop(), nil
	}
	prom := metrics.NewPrometheus()
	return prom, prom.Handler()
}

// initLimiter builds the configured rate limiter. The in-memory limiter is
// also returned as the second value so its idle keys can be swept.
func initLimiter(cfg *config.Config, cacheClient *cache.Cache) (ratelimit.Limiter, *ratelimit.SlidingWindow) {
	if !cfg.RateLimitEnabled {
		return nil, nil
	}
	if cfg.RateLimitBackend == config.RateLimitRedis && cacheClient != nil {
		return ratelimit.NewRedis(cacheClient.Client(), cfg.RateLimitRequests, cfg.RateLimitWindow), nil
	}
	sw := ratelimit.NewSlidingWindow(cfg.RateLimitRequests, cfg.RateLimitWindow)
	return sw, sw
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s&]+`)

// redactURL drops the password from a connection string.
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

// sanitizeError replaces every secret connection string in err's message
// with its redacted form.
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
