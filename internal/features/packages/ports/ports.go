package ports

import (
	"context"

	"package-tracker/internal/features/packages/domain"
)

// PackageRepository defines the secondary port for the durable package store.
type PackageRepository interface {
	// Create inserts a new package. Returns domain.ErrDuplicateTrackingNumber
	// without mutating state if the tracking number is already present.
	Create(ctx context.Context, pkg *domain.Package) error

	// List returns packages ordered most-recently-created first, optionally
	// restricted to an exact status match. Empty status means no filter.
	List(ctx context.Context, status domain.Status) ([]domain.Package, error)

	// GetByTrackingNumber returns a package and its events ordered by
	// timestamp descending, events without a timestamp last.
	GetByTrackingNumber(ctx context.Context, number string) (*domain.Package, []domain.Event, error)

	// Delete removes a package and its events atomically.
	Delete(ctx context.Context, number string) error

	// MergeUpdate applies a status+events payload under the terminal-state
	// guard, inserting only events whose (timestamp, description) pair is not
	// already in the ledger. Returns the number of events inserted. Merges for
	// the same tracking number are serialized.
	MergeUpdate(ctx context.Context, number string, update domain.TrackingUpdate) (int, error)

	// TrackingNumbers returns every tracked number.
	TrackingNumbers(ctx context.Context) ([]string, error)
}
