package service

import (
	"context"
	"errors"
	"testing"

	"package-tracker/internal/features/packages/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	packages map[string]*domain.Package
	events   map[string][]domain.Event
	mergeErr error
}

func newMockRepository(numbers ...string) *mockRepository {
	m := &mockRepository{
		packages: make(map[string]*domain.Package),
		events:   make(map[string][]domain.Event),
	}
	for _, number := range numbers {
		m.packages[number] = &domain.Package{
			TrackingNumber: number,
			Status:         domain.StatusPending,
		}
	}
	return m
}

func (m *mockRepository) Create(ctx context.Context, pkg *domain.Package) error { return nil }

func (m *mockRepository) List(ctx context.Context, status domain.Status) ([]domain.Package, error) {
	return nil, nil
}

func (m *mockRepository) GetByTrackingNumber(ctx context.Context, number string) (*domain.Package, []domain.Event, error) {
	pkg, ok := m.packages[number]
	if !ok {
		return nil, nil, domain.ErrPackageNotFound
	}
	return pkg, m.events[number], nil
}

func (m *mockRepository) Delete(ctx context.Context, number string) error { return nil }

func (m *mockRepository) MergeUpdate(ctx context.Context, number string, update domain.TrackingUpdate) (int, error) {
	if m.mergeErr != nil {
		return 0, m.mergeErr
	}
	pkg, ok := m.packages[number]
	if !ok {
		return 0, domain.ErrPackageNotFound
	}
	pkg.Status = domain.NextStatus(pkg.Status, update.Status)
	for _, ev := range update.Events {
		m.events[number] = append(m.events[number], domain.Event{
			Timestamp:   ev.Timestamp,
			Location:    ev.Location,
			Description: ev.Description,
		})
	}
	return len(update.Events), nil
}

func (m *mockRepository) TrackingNumbers(ctx context.Context) ([]string, error) { return nil, nil }

// TestWebhookService_Ingest verifies a push for a tracked number flows
// through the merge path.
func TestWebhookService_Ingest(t *testing.T) {
	repo := newMockRepository("1Z999AA1")
	svc := NewWebhookService(repo)

	err := svc.Ingest(context.Background(), Payload{
		TrackingNumber: "1Z999AA1",
		Status:         "out_for_delivery",
		Events: []PayloadEvent{
			{Time: "2024-03-02T09:15:00Z", Location: "Local depot", Description: "Out for delivery"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusOutForDelivery, repo.packages["1Z999AA1"].Status)
	require.Len(t, repo.events["1Z999AA1"], 1)
	assert.Equal(t, "Out for delivery", repo.events["1Z999AA1"][0].Description)
}

// TestWebhookService_Ingest_EmptyNumber verifies the only rejected payload
// shape.
func TestWebhookService_Ingest_EmptyNumber(t *testing.T) {
	svc := NewWebhookService(newMockRepository())

	err := svc.Ingest(context.Background(), Payload{Status: "delivered"})
	assert.ErrorIs(t, err, domain.ErrInvalidRecord)

	err = svc.Ingest(context.Background(), Payload{TrackingNumber: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidRecord)
}

// TestWebhookService_Ingest_UntrackedNumber verifies pushes for unknown
// numbers are dropped without error.
func TestWebhookService_Ingest_UntrackedNumber(t *testing.T) {
	svc := NewWebhookService(newMockRepository())

	err := svc.Ingest(context.Background(), Payload{
		TrackingNumber: "NOPE",
		Status:         "delivered",
	})
	assert.NoError(t, err)
}

// TestWebhookService_Ingest_MergeFailureSwallowed verifies internal store
// failures do not surface to the carrier.
func TestWebhookService_Ingest_MergeFailureSwallowed(t *testing.T) {
	repo := newMockRepository("A")
	repo.mergeErr = errors.New("disk full")
	svc := NewWebhookService(repo)

	err := svc.Ingest(context.Background(), Payload{
		TrackingNumber: "A",
		Status:         "in_transit",
	})
	assert.NoError(t, err)
}
