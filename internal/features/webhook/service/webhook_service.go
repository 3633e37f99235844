package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"package-tracker/internal/core/logger"
	"package-tracker/internal/features/packages/domain"
	packageports "package-tracker/internal/features/packages/ports"

	"go.uber.org/zap"
)

// PayloadEvent is one tracking event inside a push notification.
type PayloadEvent struct {
	Time        string `json:"time"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

// Payload is the carrier push notification body.
type Payload struct {
	TrackingNumber string         `json:"tracking_number"`
	Status         string         `json:"status"`
	Events         []PayloadEvent `json:"events"`
}

// WebhookService applies carrier push notifications to the store.
type WebhookService struct {
	repo packageports.PackageRepository
}

// NewWebhookService creates a new WebhookService.
func NewWebhookService(repo packageports.PackageRepository) *WebhookService {
	return &WebhookService{
		repo: repo,
	}
}

// Ingest merges a push notification into the store. Notifications for
// untracked numbers are logged and dropped without error so the carrier
// never sees a failure for them and stops retrying. Only a payload with
// no tracking number is rejected.
func (s *WebhookService) Ingest(ctx context.Context, payload Payload) error {
	number := strings.TrimSpace(payload.TrackingNumber)
	if number == "" {
		return fmt.Errorf("%w: tracking number is required", domain.ErrInvalidRecord)
	}

	update := domain.TrackingUpdate{
		Status: domain.ParseStatus(payload.Status),
		Events: make([]domain.EventUpdate, 0, len(payload.Events)),
	}
	for _, ev := range payload.Events {
		update.Events = append(update.Events, domain.EventUpdate{
			Timestamp:   domain.ParseEventTime(ev.Time),
			Location:    ev.Location,
			Description: ev.Description,
		})
	}

	inserted, err := s.repo.MergeUpdate(ctx, number, update)
	if err != nil {
		if errors.Is(err, domain.ErrPackageNotFound) {
			logger.Get().Info("Webhook for untracked number dropped",
				zap.String("tracking_number", number))
			return nil
		}
		logger.Get().Error("Webhook merge failed",
			zap.String("tracking_number", number),
			zap.Error(err))
		return nil
	}

	logger.Get().Debug("Webhook merged",
		zap.String("tracking_number", number),
		zap.Int("events_inserted", inserted))
	return nil
}
