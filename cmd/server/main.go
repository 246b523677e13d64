package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"

	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/database/migrations"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/server"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/storage"
	"github.com/ahmetcoskunkizilkaya/wardrobe-backend/internal/telemetry"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	stdout := logging.Setup(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database
	db, err := database.Connect(cfg)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if cfg.MigrateOnStart && cfg.DatabaseDriver == config.DriverPostgres {
		sqlDB, err := db.DB()
		if err == nil {
			err = migrations.MigrateUp(sqlDB)
		}
		if err != nil {
			slog.Error("migration failed", "error", err)
			os.Exit(1)
		}
		slog.Info("migrations applied")
	}

	// ERROR+ records also go to system_logs
	dbLog := logging.NewDBHandler(db, 5*time.Second)
	slog.SetDefault(slog.New(logging.NewMultiHandler(stdout, dbLog)))
	logging.StartCleanup(ctx, db, cfg.LogRetentionDays)

	shutdownTracing, err := telemetry.Setup(ctx, cfg)
	if err != nil {
		slog.Error("tracing setup failed", "error", err)
	}

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
			Release:          version,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		}
	}

	client, err := server.NewClient(cfg, db)
	if err != nil {
		slog.Error("platform client setup failed", "error", err)
		os.Exit(1)
	}

	deps := server.Deps{
		Client:    client,
		Health:    database.Pinger(db),
		Generator: server.NewGenerator(cfg),
		Version:   version,
	}
	if cfg.Storage.Enabled() {
		store, err := storage.NewS3Store(ctx, cfg.Storage)
		if err != nil {
			slog.Error("storage setup failed", "error", err)
			os.Exit(1)
		}
		deps.Storage = store
	}

	prometheus := fiberprometheus.New(cfg.OTelServiceName)
	app := server.New(cfg, deps,
		func(app *fiber.App) {
			app.Use(sentryfiber.New(sentryfiber.Options{Repanic: true}))
		},
		func(app *fiber.App) {
			prometheus.RegisterAt(app, "/metrics")
			app.Use(prometheus.Middleware)
		},
	)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "auth_provider", cfg.AuthProvider, "driver", cfg.DatabaseDriver)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdownTracing(flushCtx); err != nil {
		slog.Error("tracing shutdown error", "error", err)
	}
	sentry.Flush(2 * time.Second)

	// Restore stdout-only logging before the sink goes away.
	slog.SetDefault(slog.New(stdout))
	dbLog.Stop()

	if err := database.Close(db); err != nil {
		slog.Error("database close error", "error", err)
	}
	slog.Info("server stopped")
}
