package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"package-tracker/internal/core/keylock"
	"package-tracker/internal/features/packages/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPackageRepository implements the PackageRepository port on the local
// sqlite store.
type GormPackageRepository struct {
	db *gorm.DB
	// locks serializes merges per tracking number so two concurrent merges
	// cannot both read the ledger and insert the same event.
	locks *keylock.KeyedMutex
}

// NewGormPackageRepository creates a new repository over the given database.
func NewGormPackageRepository(db *gorm.DB) *GormPackageRepository {
	return &GormPackageRepository{
		db:    db,
		locks: keylock.New(),
	}
}

// Create inserts a new package with a store-assigned ID.
func (r *GormPackageRepository) Create(ctx context.Context, pkg *domain.Package) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.Package{}).
			Where("tracking_number = ?", pkg.TrackingNumber).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check tracking number: %w", err)
		}
		if count > 0 {
			return domain.ErrDuplicateTrackingNumber
		}

		pkg.ID = uuid.NewString()
		if pkg.Status == "" {
			pkg.Status = domain.StatusPending
		}

		if err := tx.Create(pkg).Error; err != nil {
			return fmt.Errorf("failed to insert package: %w", err)
		}
		return nil
	})
}

// List returns packages ordered most-recently-created first.
func (r *GormPackageRepository) List(ctx context.Context, status domain.Status) ([]domain.Package, error) {
	query := r.db.WithContext(ctx).Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var packages []domain.Package
	if err := query.Find(&packages).Error; err != nil {
		return nil, fmt.Errorf("failed to list packages: %w", err)
	}
	return packages, nil
}

// GetByTrackingNumber returns a package and its event ledger, newest events
// first with timestamp-less events last.
func (r *GormPackageRepository) GetByTrackingNumber(ctx context.Context, number string) (*domain.Package, []domain.Event, error) {
	var pkg domain.Package
	var events []domain.Event

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tracking_number = ?", number).First(&pkg).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrPackageNotFound
			}
			return fmt.Errorf("failed to load package: %w", err)
		}

		if err := tx.Where("package_id = ?", pkg.ID).
			Order("timestamp IS NULL, timestamp DESC").
			Find(&events).Error; err != nil {
			return fmt.Errorf("failed to load events: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &pkg, events, nil
}

// Delete removes a package and cascades event deletion in one transaction.
func (r *GormPackageRepository) Delete(ctx context.Context, number string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pkg domain.Package
		if err := tx.Where("tracking_number = ?", number).First(&pkg).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrPackageNotFound
			}
			return fmt.Errorf("failed to load package: %w", err)
		}

		if err := tx.Where("package_id = ?", pkg.ID).Delete(&domain.Event{}).Error; err != nil {
			return fmt.Errorf("failed to delete events: %w", err)
		}
		if err := tx.Delete(&pkg).Error; err != nil {
			return fmt.Errorf("failed to delete package: %w", err)
		}
		return nil
	})
}

// MergeUpdate applies a status+events payload idempotently. The per-number
// lock plus the transaction make the read-decide-insert sequence atomic with
// respect to concurrent syncs and webhooks on the same package.
func (r *GormPackageRepository) MergeUpdate(ctx context.Context, number string, update domain.TrackingUpdate) (int, error) {
	r.locks.Lock(number)
	defer r.locks.Unlock(number)

	inserted := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pkg domain.Package
		if err := tx.Where("tracking_number = ?", number).First(&pkg).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrPackageNotFound
			}
			return fmt.Errorf("failed to load package: %w", err)
		}

		now := time.Now().UTC()
		next := domain.NextStatus(pkg.Status, update.Status)
		if err := tx.Model(&domain.Package{}).
			Where("id = ?", pkg.ID).
			Updates(map[string]interface{}{"status": next, "last_update": now}).Error; err != nil {
			return fmt.Errorf("failed to update status: %w", err)
		}

		for _, ev := range update.Events {
			// Normalize to UTC so stored and queried timestamps compare equal.
			if ev.Timestamp != nil {
				ts := ev.Timestamp.UTC()
				ev.Timestamp = &ts
			}

			// The ledger is a set keyed on (timestamp, description).
			query := tx.Model(&domain.Event{}).
				Where("package_id = ? AND description = ?", pkg.ID, ev.Description)
			if ev.Timestamp == nil {
				query = query.Where("timestamp IS NULL")
			} else {
				query = query.Where("timestamp = ?", ev.Timestamp)
			}

			var count int64
			if err := query.Count(&count).Error; err != nil {
				return fmt.Errorf("failed to check event: %w", err)
			}
			if count > 0 {
				continue
			}

			event := domain.Event{
				PackageID:   pkg.ID,
				Timestamp:   ev.Timestamp,
				Location:    ev.Location,
				Description: ev.Description,
			}
			if err := tx.Create(&event).Error; err != nil {
				return fmt.Errorf("failed to insert event: %w", err)
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// TrackingNumbers returns every tracked number.
func (r *GormPackageRepository) TrackingNumbers(ctx context.Context) ([]string, error) {
	var numbers []string
	if err := r.db.WithContext(ctx).
		Model(&domain.Package{}).
		Order("created_at DESC").
		Pluck("tracking_number", &numbers).Error; err != nil {
		return nil, fmt.Errorf("failed to list tracking numbers: %w", err)
	}
	return numbers, nil
}
