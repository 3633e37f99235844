package service

import (
	"context"
	"errors"
	"fmt"

	"package-tracker/internal/core/logger"
	"package-tracker/internal/features/packages/domain"
	packageports "package-tracker/internal/features/packages/ports"
	"package-tracker/internal/features/sync/ports"

	"go.uber.org/zap"
)

// SyncError reports a per-number merge failure inside an otherwise
// successful sync.
type SyncError struct {
	TrackingNumber string `json:"tracking_number"`
	Message        string `json:"message"`
}

// SyncResult is the outcome of one reconciliation cycle.
type SyncResult struct {
	// Synced counts packages the carrier returned data for and whose merge
	// succeeded. Numbers absent from the carrier response are not counted
	// and not touched.
	Synced int         `json:"synced"`
	Errors []SyncError `json:"errors,omitempty"`
}

// SyncService reconciles local package state against the carrier API.
type SyncService struct {
	repo    packageports.PackageRepository
	carrier ports.CarrierProvider
}

// NewSyncService creates a new SyncService.
func NewSyncService(repo packageports.PackageRepository, carrier ports.CarrierProvider) *SyncService {
	return &SyncService{
		repo:    repo,
		carrier: carrier,
	}
}

// Sync refreshes one package (trackingNumber set) or all tracked packages
// (trackingNumber empty) from the carrier in a single batched call. A
// transport or decode failure aborts the whole cycle with zero store
// mutation; per-number merge failures are collected in the result.
func (s *SyncService) Sync(ctx context.Context, trackingNumber string) (*SyncResult, error) {
	var numbers []string

	if trackingNumber != "" {
		if _, _, err := s.repo.GetByTrackingNumber(ctx, trackingNumber); err != nil {
			if errors.Is(err, domain.ErrPackageNotFound) {
				return nil, err
			}
			return nil, fmt.Errorf("sync: failed to load package: %w", err)
		}
		numbers = []string{trackingNumber}
	} else {
		var err error
		numbers, err = s.repo.TrackingNumbers(ctx)
		if err != nil {
			return nil, fmt.Errorf("sync: failed to collect tracking numbers: %w", err)
		}
	}

	result := &SyncResult{}
	if len(numbers) == 0 {
		return result, nil
	}

	response, err := s.carrier.Query(ctx, numbers)
	if err != nil {
		return nil, fmt.Errorf("sync: carrier query failed: %w", err)
	}

	// Numbers the carrier did not return stay untouched: absence is not
	// evidence of carrier-side deletion.
	for number, info := range response {
		update := toTrackingUpdate(info)
		if _, err := s.repo.MergeUpdate(ctx, number, update); err != nil {
			result.Errors = append(result.Errors, SyncError{
				TrackingNumber: number,
				Message:        err.Error(),
			})
			continue
		}
		result.Synced++
	}

	logger.Get().Info("Sync finished",
		zap.Int("requested", len(numbers)),
		zap.Int("synced", result.Synced),
		zap.Int("errors", len(result.Errors)),
	)

	return result, nil
}

// toTrackingUpdate maps a carrier payload onto the store's merge input.
func toTrackingUpdate(info ports.TrackingInfo) domain.TrackingUpdate {
	update := domain.TrackingUpdate{
		Status: domain.ParseStatus(info.Status),
		Events: make([]domain.EventUpdate, 0, len(info.Events)),
	}
	for _, ev := range info.Events {
		update.Events = append(update.Events, domain.EventUpdate{
			Timestamp:   domain.ParseEventTime(ev.Time),
			Location:    ev.Location,
			Description: ev.Description,
		})
	}
	return update
}
