package main

import (
	"context"
	"log"
	"time"

	"package-tracker/internal/core/cache"
	"package-tracker/internal/core/config"
	"package-tracker/internal/core/db"
	"package-tracker/internal/core/logger"
	"package-tracker/internal/core/scheduler"
	"package-tracker/internal/core/server"
	packageadapter "package-tracker/internal/features/packages/adapters"
	"package-tracker/internal/features/packages/domain"
	packagehandler "package-tracker/internal/features/packages/handler"
	packageservice "package-tracker/internal/features/packages/service"
	syncadapter "package-tracker/internal/features/sync/adapters"
	synchandler "package-tracker/internal/features/sync/handler"
	syncservice "package-tracker/internal/features/sync/service"
	webhookhandler "package-tracker/internal/features/webhook/handler"
	webhookservice "package-tracker/internal/features/webhook/service"

	"go.uber.org/zap"
)

// @title Package Tracker API
// @version 1.0
// @description Durable package tracking with carrier reconciliation, push ingestion and bulk import/export.
// @contact.name API Support
// @license.name MIT
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	l := logger.Get()
	l.Info("Application starting",
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
	)

	// Open the store and migrate the schema
	database, err := db.Open(cfg.DatabasePath, &domain.Package{}, &domain.Event{})
	if err != nil {
		l.Fatal("Failed to open database", zap.Error(err))
	}
	l.Info("Database ready", zap.String("path", cfg.DatabasePath))

	repo := packageadapter.NewGormPackageRepository(database)

	// Carrier-response cache is optional; the adapter runs uncached without it
	var carrierCache cache.Cache
	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedisAdapter(cfg.RedisURL)
		if err != nil {
			l.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer redisCache.Close()
		carrierCache = redisCache
		l.Info("Carrier-response cache enabled")
	}

	carrier := syncadapter.NewTrack17Adapter(cfg.Carrier, carrierCache,
		time.Duration(cfg.CarrierCacheTTLSeconds)*time.Second)

	healthCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := carrier.HealthCheck(healthCtx); err != nil {
		l.Warn("Carrier API unreachable at startup, syncs will retry", zap.Error(err))
	} else {
		l.Info("Carrier API connection verified")
	}
	cancel()

	// Services & Handlers
	packageSvc := packageservice.NewPackageService(repo)
	packageHdl := packagehandler.NewPackageHandler(packageSvc)

	syncSvc := syncservice.NewSyncService(repo, carrier)
	syncHdl := synchandler.NewSyncHandler(syncSvc)

	webhookSvc := webhookservice.NewWebhookService(repo)
	webhookHdl := webhookhandler.NewWebhookHandler(webhookSvc)

	srv := server.New(cfg)

	// Register Routes
	srv.App.Get("/health", packageHdl.Health)
	srv.App.Post("/packages", packageHdl.Add)
	srv.App.Get("/packages", packageHdl.List)
	srv.App.Post("/packages/import", packageHdl.Import)
	srv.App.Get("/packages/export", packageHdl.Export)
	srv.App.Get("/packages/:number", packageHdl.Get)
	srv.App.Delete("/packages/:number", packageHdl.Delete)
	srv.App.Post("/sync", syncHdl.Sync)
	srv.App.Post("/webhook", webhookHdl.Receive)

	if cfg.SyncSchedule != "" {
		sched, err := scheduler.New([]scheduler.Job{
			syncservice.NewPeriodicSyncJob(syncSvc, cfg.SyncSchedule),
		})
		if err != nil {
			l.Fatal("Invalid sync schedule", zap.Error(err))
		}
		sched.Start()
		defer sched.Stop()
		l.Info("Periodic sync scheduled", zap.String("cron", cfg.SyncSchedule))
	}

	if err := srv.Run(); err != nil {
		l.Fatal("Server failed to start", zap.Error(err))
	}
}
