package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"package-tracker/internal/core/logger"
	"package-tracker/internal/features/packages/domain"
	"package-tracker/internal/features/packages/ports"

	"go.uber.org/zap"
)

// PackageService orchestrates store operations over the package repository.
type PackageService struct {
	repo ports.PackageRepository
}

// NewPackageService creates a new PackageService.
func NewPackageService(repo ports.PackageRepository) *PackageService {
	return &PackageService{
		repo: repo,
	}
}

// Add registers a new tracking number with status pending.
func (s *PackageService) Add(ctx context.Context, trackingNumber, carrier string) (*domain.Package, error) {
	trackingNumber = strings.TrimSpace(trackingNumber)
	if trackingNumber == "" {
		return nil, domain.ErrInvalidRecord
	}

	pkg := &domain.Package{
		TrackingNumber: trackingNumber,
		Carrier:        carrier,
		Status:         domain.StatusPending,
	}

	if err := s.repo.Create(ctx, pkg); err != nil {
		if errors.Is(err, domain.ErrDuplicateTrackingNumber) {
			return nil, err
		}
		return nil, fmt.Errorf("service: failed to add package: %w", err)
	}

	return pkg, nil
}

// List returns tracked packages, optionally filtered by exact status.
func (s *PackageService) List(ctx context.Context, statusFilter string) ([]domain.Package, error) {
	packages, err := s.repo.List(ctx, domain.Status(statusFilter))
	if err != nil {
		return nil, fmt.Errorf("service: failed to list packages: %w", err)
	}
	return packages, nil
}

// Get returns a package with its event ledger.
func (s *PackageService) Get(ctx context.Context, trackingNumber string) (*domain.PackageDetails, error) {
	pkg, events, err := s.repo.GetByTrackingNumber(ctx, trackingNumber)
	if err != nil {
		if errors.Is(err, domain.ErrPackageNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("service: failed to get package: %w", err)
	}

	return &domain.PackageDetails{
		TrackingNumber: pkg.TrackingNumber,
		Carrier:        pkg.Carrier,
		Status:         pkg.Status,
		LastUpdate:     pkg.LastUpdate,
		CreatedAt:      pkg.CreatedAt,
		Events:         events,
	}, nil
}

// Delete removes a package and its events.
func (s *PackageService) Delete(ctx context.Context, trackingNumber string) error {
	if err := s.repo.Delete(ctx, trackingNumber); err != nil {
		if errors.Is(err, domain.ErrPackageNotFound) {
			return err
		}
		return fmt.Errorf("service: failed to delete package: %w", err)
	}
	return nil
}

// Import bulk-loads records, skipping duplicates and invalid entries.
// Per-record failures are reported, never fatal to the batch.
func (s *PackageService) Import(ctx context.Context, records []ImportRecord) *ImportResult {
	result := &ImportResult{Errors: []ImportError{}}

	for i, record := range records {
		number := strings.TrimSpace(record.Number)
		if number == "" {
			result.Errors = append(result.Errors, ImportError{
				Record:  i + 1,
				Message: domain.ErrInvalidRecord.Error(),
			})
			continue
		}

		err := s.repo.Create(ctx, &domain.Package{
			TrackingNumber: number,
			Carrier:        record.Carrier,
			Status:         domain.StatusPending,
		})
		switch {
		case errors.Is(err, domain.ErrDuplicateTrackingNumber):
			result.Errors = append(result.Errors, ImportError{
				Record:         i + 1,
				TrackingNumber: number,
				Message:        "skipped: already tracked",
			})
		case err != nil:
			result.Errors = append(result.Errors, ImportError{
				Record:         i + 1,
				TrackingNumber: number,
				Message:        err.Error(),
			})
		default:
			result.Imported++
		}
	}

	logger.Get().Info("Import finished",
		zap.Int("imported", result.Imported),
		zap.Int("errors", len(result.Errors)),
	)

	return result
}

// Export returns a snapshot of every package with its event ledger. Each
// package read is atomic; packages deleted mid-export are skipped.
func (s *PackageService) Export(ctx context.Context) ([]domain.PackageDetails, error) {
	numbers, err := s.repo.TrackingNumbers(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to export packages: %w", err)
	}

	snapshot := make([]domain.PackageDetails, 0, len(numbers))
	for _, number := range numbers {
		details, err := s.Get(ctx, number)
		if errors.Is(err, domain.ErrPackageNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		snapshot = append(snapshot, *details)
	}

	return snapshot, nil
}
