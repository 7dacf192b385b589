// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mazzlabs/ripcity-dispatch/internal/admin"
	"github.com/mazzlabs/ripcity-dispatch/internal/alerts"
	"github.com/mazzlabs/ripcity-dispatch/internal/auth"
	"github.com/mazzlabs/ripcity-dispatch/internal/config"
	"github.com/mazzlabs/ripcity-dispatch/internal/core"
	"github.com/mazzlabs/ripcity-dispatch/internal/deals"
	"github.com/mazzlabs/ripcity-dispatch/internal/health"
	"github.com/mazzlabs/ripcity-dispatch/internal/inventory"
	"github.com/mazzlabs/ripcity-dispatch/internal/middleware"
	"github.com/mazzlabs/ripcity-dispatch/internal/server"
	"github.com/mazzlabs/ripcity-dispatch/internal/user"
	"github.com/mazzlabs/ripcity-dispatch/internal/venues"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	if cfg.IsDevelopment() {
		if _, statErr := os.Stat(cfg.JWT.PrivateKeyPath); os.IsNotExist(statErr) {
			logger.Warn("signing key missing, generating development keypair",
				"path", cfg.JWT.PrivateKeyPath,
			)
			if genErr := auth.GenerateKeyPair(
				cfg.JWT.PrivateKeyPath,
				cfg.JWT.PublicKeyPath,
			); genErr != nil {
				return genErr
			}
		}
	}

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", "ES256",
		"key_id", jwtManager.GetKeyID(),
	)

	var source inventory.Source
	if cfg.DemoMode() {
		logger.Warn("no inventory API key configured, " +
			"serving demo fixture data")
		source = inventory.NewDemoSource(time.Now().UTC())
	} else {
		source = inventory.NewClient(cfg.Inventory)
		logger.Info("inventory client initialized",
			"base_url", cfg.Inventory.BaseURL,
			"city", cfg.Inventory.City,
		)
	}

	userRepo := user.NewRepository(db.DB)
	userSvc := user.NewService(userRepo)
	userHandler := user.NewHandler(userSvc)

	authRepo := auth.NewRepository(db.DB)
	authSvc := auth.NewService(authRepo, jwtManager, userSvc, redis.Client)
	authHandler := auth.NewHandler(authSvc)

	dealSvc := deals.NewService(source, deals.NewScorer(), logger)
	dealHandler := deals.NewHandler(dealSvc, logger)

	venueHandler := venues.NewHandler(source)

	alertRepo := alerts.NewRepository(db.DB)
	alertSvc := alerts.NewService(alertRepo, logger)
	dispatcher := alerts.NewDispatcher(alertRepo, cfg.Alerts, logger)
	alertHandler := alerts.NewHandler(alertSvc, dispatcher, dealSvc, userSvc)

	healthHandler := health.NewHandler(db, redis)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		DBStats:     db.Stats,
		RedisStats:  redis.PoolStats,
		DBPing:      db.Ping,
		RedisPing:   redis.Ping,
		PurgeTokens: authRepo.DeleteExpired,
		Source:      source,
		DemoMode:    cfg.DemoMode(),
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerMinute(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
			),
			FailOpen: true,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	router.Get("/.well-known/jwks.json", jwtManager.GetJWKSHandler())

	authenticator := middleware.Authenticator(jwtManager, authSvc)
	optionalAuth := middleware.OptionalAuth(jwtManager)
	adminOnly := middleware.RequireAdmin
	tieredLimit := middleware.TieredRateLimiter(
		redis.Client,
		middleware.DefaultTiers,
	)
	hotDealsGate := middleware.RequireTier(cfg.Features.HotDealsMinTier)
	alertsGate := middleware.RequireTier(cfg.Features.AlertsMinTier)
	pushGate := middleware.RequireTier(cfg.Features.PushMinTier)

	router.Route("/v1", func(r chi.Router) {
		authHandler.RegisterRoutes(r, authenticator)

		r.Post("/users", authHandler.Register)

		userHandler.RegisterRoutes(r, authenticator)
		userHandler.RegisterAdminRoutes(r, authenticator, adminOnly)

		dealHandler.RegisterRoutes(
			r, optionalAuth, tieredLimit, authenticator, hotDealsGate,
		)
		venueHandler.RegisterRoutes(r)
		alertHandler.RegisterRoutes(
			r, authenticator, tieredLimit, alertsGate, pushGate,
		)

		adminHandler.RegisterRoutes(r, authenticator, adminOnly)
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
