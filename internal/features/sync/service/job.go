package service

import (
	"context"
	"time"

	"package-tracker/internal/core/logger"

	"go.uber.org/zap"
)

// PeriodicSyncJob runs a full reconciliation on a cron schedule.
type PeriodicSyncJob struct {
	syncService *SyncService
	schedule    string
}

// NewPeriodicSyncJob creates a scheduler job syncing all tracked packages.
func NewPeriodicSyncJob(syncService *SyncService, schedule string) *PeriodicSyncJob {
	return &PeriodicSyncJob{
		syncService: syncService,
		schedule:    schedule,
	}
}

// Name identifies the job in logs.
func (j *PeriodicSyncJob) Name() string { return "sync-all" }

// Schedule returns the configured cron expression.
func (j *PeriodicSyncJob) Schedule() string { return j.schedule }

// Run performs one full sync cycle.
func (j *PeriodicSyncJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if _, err := j.syncService.Sync(ctx, ""); err != nil {
		logger.Named("scheduler").Error("Scheduled sync failed", zap.Error(err))
	}
}
