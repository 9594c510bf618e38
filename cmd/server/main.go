package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/boonegifts/server/internal/authz"
	"github.com/boonegifts/server/internal/config"
	"github.com/boonegifts/server/internal/handlers"
	"github.com/boonegifts/server/internal/observability"
	"github.com/boonegifts/server/internal/ratelimit"
	"github.com/boonegifts/server/internal/repository"
	"github.com/boonegifts/server/internal/services"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
)

const (
	serviceName    = "boone-gifts"
	serviceVersion = "1.0.0"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		observability.GetLogger().WithError(err).Error("Failed to load configuration")
		os.Exit(1)
	}

	logger := observability.NewLogger(serviceName, cfg.Log.Level, cfg.Log.Format)
	observability.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	telemetry, err := observability.Initialize(ctx, observability.Config{
		ServiceName:    serviceName,
		ServiceVersion: serviceVersion,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTEL.Endpoint,
		Enabled:        cfg.OTEL.Enabled,
	})
	if err != nil {
		logger.WithError(err).Error("Failed to initialize telemetry")
		os.Exit(1)
	}

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.Environment,
			Release:     serviceName + "@" + serviceVersion,
		}); err != nil {
			logger.WithError(err).Warn("Failed to initialize Sentry, continuing without it")
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Initialize database
	var (
		db     *sql.DB
		system string
	)
	if cfg.UsePostgres() {
		logger.Info("Using PostgreSQL database")
		db, err = repository.NewPostgresDB(cfg.DatabaseURL)
		system = "postgresql"
	} else {
		logger.WithField("path", cfg.DatabasePath).Info("Using SQLite database")
		db, err = repository.NewSQLiteDB(cfg.DatabasePath)
		system = "sqlite"
	}
	if err != nil {
		logger.WithError(err).Error("Failed to initialize database")
		os.Exit(1)
	}
	defer db.Close()

	dbMetrics, err := observability.NewDatabaseMetrics()
	if err != nil {
		logger.WithError(err).Warn("Failed to create database metrics")
	}
	store := repository.NewStore(db, repository.WithExecutorWrapper(func(ex repository.DBTX) repository.DBTX {
		return observability.NewTraceDB(ex, system, dbMetrics)
	}))

	businessMetrics, err := observability.NewBusinessMetrics()
	if err != nil {
		logger.WithError(err).Warn("Failed to create business metrics")
	}
	httpMetrics, err := observability.NewHTTPMetrics()
	if err != nil {
		logger.WithError(err).Warn("Failed to create HTTP metrics")
	}

	// Initialize services
	hub := services.NewWebSocketHub()
	go hub.Run(ctx)

	engine := authz.NewEngine(store.Shares)
	tokens := services.NewTokenService(cfg.JWT.Secret, cfg.JWT.AccessTTL(), cfg.JWT.RefreshTTL())
	mailer := services.NewSMTPService(services.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})
	if mailer == nil {
		logger.Info("SMTP not configured, invite emails disabled")
	}

	connections := services.NewConnectionService(store.Connections, store.Users, store, hub, businessMetrics)
	deps := handlers.RouterDeps{
		Auth:        services.NewAuthService(store.Users, store, tokens, businessMetrics),
		Admin:       services.NewAdminService(engine, store.Users, store.Invites, store, mailer, cfg.FrontendURL, businessMetrics),
		Lists:       services.NewListService(engine, store.Lists, store.Gifts),
		Claims:      services.NewClaimService(engine, store, businessMetrics),
		Shares:      services.NewShareService(engine, store.Lists, store.Shares, store),
		Collections: services.NewCollectionService(engine, store.Collections, store.CollectionItems, store.Lists, store),
		Connections: connections,
		Hub:         hub,
		DB:          store,
		RefreshTTL:  tokens.RefreshTTL(),
		CORSOrigins: cfg.CORSOrigins,
		ServiceName: serviceName,
		HTTPMetrics: httpMetrics,
		Sentry:      cfg.Sentry.DSN != "",
	}

	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.WithError(err).Warn("Redis unreachable at startup, login rate limiting fails open")
		}
		deps.LoginLimiter = ratelimit.New(rdb, "login", cfg.Redis.LoginRateLimit, cfg.Redis.LoginRateWindow()).Middleware
	}

	srv := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      handlers.NewRouter(deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.WithFields(map[string]interface{}{
			"addr":        cfg.ServerAddress,
			"environment": cfg.Environment,
		}).Info("Gift registry server starting")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("Server error")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}
	if err := telemetry.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("Telemetry shutdown incomplete")
	}

	logger.Info("Server stopped")
}
