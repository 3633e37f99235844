package domain

import (
	"errors"
	"time"
)

// Status represents the lifecycle state of a tracked package.
type Status string

const (
	// StatusPending indicates the package is registered but not yet synced.
	StatusPending Status = "pending"
	// StatusInTransit indicates the package is moving through the carrier network.
	StatusInTransit Status = "in_transit"
	// StatusOutForDelivery indicates the package is on its final delivery leg.
	StatusOutForDelivery Status = "out_for_delivery"
	// StatusDelivered indicates the package reached its recipient.
	StatusDelivered Status = "delivered"
	// StatusException indicates the carrier reported a delivery problem.
	StatusException Status = "exception"
	// StatusUnknown is the catch-all for unrecognized carrier statuses.
	StatusUnknown Status = "unknown"
)

var (
	// ErrDuplicateTrackingNumber is returned when adding a number that is already tracked.
	ErrDuplicateTrackingNumber = errors.New("tracking number already exists")
	// ErrPackageNotFound is returned when the tracking number is not in the store.
	ErrPackageNotFound = errors.New("package not found")
	// ErrInvalidRecord is returned for records or payloads missing a tracking number.
	ErrInvalidRecord = errors.New("tracking number is required")
)

// ParseStatus maps a carrier-reported status string onto the known set.
// Unrecognized values become StatusUnknown rather than failing the merge.
func ParseStatus(raw string) Status {
	switch Status(raw) {
	case StatusPending, StatusInTransit, StatusOutForDelivery, StatusDelivered, StatusException:
		return Status(raw)
	default:
		return StatusUnknown
	}
}

// Terminal reports whether the status ends the package lifecycle.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusException
}

// NextStatus applies the terminal-state guard: a terminal status is never
// replaced by a non-terminal one, so a stale carrier response cannot reopen
// a finished shipment. Every other transition is last-writer-wins.
func NextStatus(current, incoming Status) Status {
	if current.Terminal() && !incoming.Terminal() {
		return current
	}
	return incoming
}

// Package is a tracked shipment. TrackingNumber is the natural key used by
// all callers; ID is store-assigned and opaque.
type Package struct {
	ID             string     `gorm:"primaryKey;size:36" json:"id"`
	TrackingNumber string     `gorm:"size:100;not null;uniqueIndex" json:"tracking_number"`
	Carrier        string     `gorm:"size:50" json:"carrier,omitempty"`
	Status         Status     `gorm:"size:32;not null" json:"status"`
	LastUpdate     *time.Time `json:"last_update,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Event is one entry in a package's tracking ledger. Events belong
// exclusively to their package and are removed with it.
type Event struct {
	ID          uint       `gorm:"primaryKey;autoIncrement" json:"-"`
	PackageID   string     `gorm:"size:36;not null;index" json:"-"`
	Timestamp   *time.Time `json:"timestamp,omitempty"`
	Location    string     `gorm:"size:200" json:"location,omitempty"`
	Description string     `gorm:"size:500" json:"description"`
}

// PackageDetails pairs a package with its event ledger, newest events first.
type PackageDetails struct {
	TrackingNumber string     `json:"tracking_number"`
	Carrier        string     `json:"carrier,omitempty"`
	Status         Status     `json:"status"`
	LastUpdate     *time.Time `json:"last_update,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	Events         []Event    `json:"events"`
}

// TrackingUpdate is a status+events payload produced by a sync cycle or a
// webhook push, applied to the store through MergeUpdate.
type TrackingUpdate struct {
	Status Status
	Events []EventUpdate
}

// EventUpdate is one incoming ledger entry. A nil Timestamp means the
// carrier omitted the event time.
type EventUpdate struct {
	Timestamp   *time.Time
	Location    string
	Description string
}

// eventTimeLayouts covers the formats carriers report event times in.
var eventTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseEventTime parses a carrier-reported event time. Unparseable or empty
// values yield nil; the event is kept either way.
func ParseEventTime(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	for _, layout := range eventTimeLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			ts = ts.UTC()
			return &ts
		}
	}
	return nil
}
