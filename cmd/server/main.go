package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"linktracker-dashboard/internal/config"
	httpHandler "linktracker-dashboard/internal/handler/http"
	"linktracker-dashboard/internal/linkapi"
	"linktracker-dashboard/internal/ratelimit"
	"linktracker-dashboard/internal/repository/postgres"
	redisRepo "linktracker-dashboard/internal/repository/redis"
	"linktracker-dashboard/internal/service"
	"linktracker-dashboard/pkg/logger"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger := logger.New(cfg.App.LogLevel)
	appLogger.Info("Starting link tracker dashboard API",
		"environment", cfg.App.Environment,
		"port", cfg.Server.Port,
	)

	ctx := context.Background()

	// ==================== STORAGE ====================

	db, err := postgres.InitDB(
		ctx,
		cfg.Database.DatabaseDSN(),
		cfg.Database.MaxOpenConns,
		cfg.Database.MaxIdleConns,
		cfg.Database.ConnMaxLifetime,
	)
	if err != nil {
		appLogger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			appLogger.Error("Failed to apply schema", "error", err)
			os.Exit(1)
		}
	}
	appLogger.Info("Database connection established")

	redisClient, err := redisRepo.InitRedis(ctx, cfg.Redis.RedisAddr(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		appLogger.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	appLogger.Info("Redis connection established")

	// ==================== DEPENDENCIES ====================

	eventRepo := postgres.NewEventRepository(db)
	brandRepo := postgres.NewBrandRepository(db)
	statsCache := redisRepo.NewCache(redisClient, cfg.Analytics.StatsCacheTTL)

	linkClient := linkapi.NewClient(cfg.LinkAPI.BaseURL, cfg.LinkAPI.APIKey, cfg.LinkAPI.Timeout)
	if cfg.LinkAPI.APIKey == "" {
		appLogger.Warn("LINK_API_KEY is not set, link creation will be refused")
	}

	sessionService := service.NewSessionService(eventRepo, cfg.Analytics.ScanLimit)
	brandService := service.NewBrandService(brandRepo, statsCache, appLogger)
	linkService := service.NewLinkService(brandRepo, linkClient, statsCache, appLogger)
	statsService := service.NewStatsService(eventRepo, brandRepo, statsCache, appLogger, cfg.Analytics.StatsWindowDays)

	handler := httpHandler.NewHandler(sessionService, brandService, linkService, statsService, appLogger, httpHandler.Options{
		Environment:     cfg.App.Environment,
		DefaultPageSize: cfg.Analytics.DefaultPageSize,
		MaxPageSize:     cfg.Analytics.MaxPageSize,
	})

	// ==================== ROUTES ====================

	mux := http.NewServeMux()
	handler.Register(mux)
	if cfg.App.EnableMetrics {
		mux.Handle("GET /metrics", promhttp.Handler())
	}

	middlewares := []func(http.Handler) http.Handler{
		httpHandler.RecoveryMiddleware(appLogger),
		httpHandler.RequestIDMiddleware,
		httpHandler.LoggingMiddleware(appLogger),
		httpHandler.MetricsMiddleware,
		httpHandler.CORSMiddleware(cfg.Server.AllowedOrigin),
		httpHandler.TimeoutMiddleware(cfg.Server.RequestTimeout),
	}
	if cfg.App.RateLimitEnabled {
		limiter := ratelimit.NewFixedWindowLimiter(redisClient, cfg.App.RateLimitPerMinute, time.Minute)
		middlewares = append(middlewares, httpHandler.RateLimitMiddleware(limiter, appLogger))
		appLogger.Info("Rate limiting enabled", "requests_per_minute", cfg.App.RateLimitPerMinute)
	}

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      httpHandler.Chain(middlewares...)(mux),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// ==================== RUN ====================

	serverErr := make(chan error, 1)
	go func() {
		appLogger.Info("Server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		appLogger.Info("Shutting down server", "signal", sig.String())
	case err := <-serverErr:
		appLogger.Error("Server failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", "error", err)
	}

	appLogger.Info("Server exited")
}
