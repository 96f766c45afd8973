package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/houseofllm/user-management/internal/auth"
	"github.com/houseofllm/user-management/internal/config"
	"github.com/houseofllm/user-management/internal/health"
	"github.com/houseofllm/user-management/internal/logger"
	"github.com/houseofllm/user-management/internal/mailer"
	"github.com/houseofllm/user-management/internal/metrics"
	authmw "github.com/houseofllm/user-management/internal/middleware"
	"github.com/houseofllm/user-management/internal/repository"
)

var version = "dev"

func main() {
	cfg := config.Load()
	log := logger.New(logger.DefaultConfig())

	if cfg.JWT.SigningKey == "" {
		log.Error("JWT_SIGNING_KEY environment variable is required")
		os.Exit(1)
	}

	// Database connections: pgx pool for the account and token
	// repositories, a sqlx handle for the login-attempt audit.
	dbPool, err := setupDatabase(cfg)
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	auditDB, err := sqlx.Connect("pgx", cfg.Database.DSN())
	if err != nil {
		log.Error("Failed to open audit database handle", "error", err)
		os.Exit(1)
	}
	defer auditDB.Close()

	// Repositories
	accountRepo := repository.NewAccountRepository(dbPool)
	refreshRepo := repository.NewRefreshTokenRepository(dbPool)
	resetRepo := repository.NewPasswordResetRepository(dbPool)
	attemptRepo := repository.NewLoginAttemptRepository(auditDB)

	// Core services
	codec := auth.NewTokenCodec(auth.TokenCodecConfig{
		SigningKey: cfg.JWT.SigningKey,
		Issuer:     cfg.JWT.Issuer,
		Audience:   cfg.JWT.Audience,
	})
	hasher := auth.NewPasswordHasher()
	tokenStore := auth.NewRefreshTokenStore(refreshRepo, log)
	recorder := auth.NewLoginAttemptRecorder(attemptRepo, log)

	var resetMailer mailer.Mailer
	if cfg.Mailer.Enabled {
		resetMailer = mailer.NewSMTPMailer(cfg.Mailer, cfg.Reset.BaseURL, log)
	} else {
		resetMailer = mailer.NewNoopMailer(log)
	}

	resetFlow := auth.NewPasswordResetFlow(codec, resetRepo, resetMailer, cfg.Reset.TokenTTL, log)

	authService := auth.NewAuthService(
		accountRepo,
		tokenStore,
		resetFlow,
		recorder,
		hasher,
		codec,
		auth.AuthServiceConfig{
			AccessTokenTTL:  cfg.JWT.AccessTokenTTL,
			RefreshTokenTTL: cfg.JWT.RefreshTokenTTL,
		},
		log,
	)

	authHandler := auth.NewHandler(authService, log)
	authMiddleware := authmw.NewAuthMiddleware(codec)

	healthHandler := health.NewHandler(health.Config{
		DBPool:  dbPool,
		Version: version,
	})

	dbStats := metrics.NewDBStatsCollector(dbPool, auditDB.DB)
	dbStats.Start(15 * time.Second)
	defer dbStats.Stop()

	// Router
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(authmw.StructuredLogger(log))
	r.Use(metrics.Middleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", healthHandler.Health)
	r.Get("/health/ready", healthHandler.Readiness)
	r.Get("/health/live", healthHandler.Liveness)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		auth.RegisterRoutes(r, authHandler, authMiddleware.Authenticate)
	})

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Starting server", "addr", addr, "version", version)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	healthHandler.SetReady(false)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Server exited")
}

// setupDatabase creates and configures the database connection pool
func setupDatabase(cfg *config.Config) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = 50
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = 5 * time.Minute
	poolConfig.MaxConnIdleTime = 1 * time.Minute
	poolConfig.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}
