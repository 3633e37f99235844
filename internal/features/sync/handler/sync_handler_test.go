package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"package-tracker/internal/features/packages/domain"
	packageports "package-tracker/internal/features/packages/ports"
	"package-tracker/internal/features/sync/ports"
	"package-tracker/internal/features/sync/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepository struct {
	packages map[string]*domain.Package
}

func (s *stubRepository) Create(ctx context.Context, pkg *domain.Package) error { return nil }

func (s *stubRepository) List(ctx context.Context, status domain.Status) ([]domain.Package, error) {
	return nil, nil
}

func (s *stubRepository) GetByTrackingNumber(ctx context.Context, number string) (*domain.Package, []domain.Event, error) {
	pkg, ok := s.packages[number]
	if !ok {
		return nil, nil, domain.ErrPackageNotFound
	}
	return pkg, nil, nil
}

func (s *stubRepository) Delete(ctx context.Context, number string) error { return nil }

func (s *stubRepository) MergeUpdate(ctx context.Context, number string, update domain.TrackingUpdate) (int, error) {
	if _, ok := s.packages[number]; !ok {
		return 0, domain.ErrPackageNotFound
	}
	s.packages[number].Status = domain.NextStatus(s.packages[number].Status, update.Status)
	return len(update.Events), nil
}

func (s *stubRepository) TrackingNumbers(ctx context.Context) ([]string, error) {
	numbers := make([]string, 0, len(s.packages))
	for number := range s.packages {
		numbers = append(numbers, number)
	}
	return numbers, nil
}

type stubCarrier struct {
	response map[string]ports.TrackingInfo
	err      error
}

func (s *stubCarrier) Query(ctx context.Context, numbers []string) (map[string]ports.TrackingInfo, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.response, nil
}

func (s *stubCarrier) HealthCheck(ctx context.Context) error { return nil }

func setupApp(repo packageports.PackageRepository, carrier ports.CarrierProvider) *fiber.App {
	app := fiber.New()
	app.Use(requestid.New())
	h := NewSyncHandler(service.NewSyncService(repo, carrier))
	app.Post("/sync", h.Sync)
	return app
}

func TestSyncHandler_Sync_All(t *testing.T) {
	repo := &stubRepository{packages: map[string]*domain.Package{
		"A": {TrackingNumber: "A", Status: domain.StatusPending},
	}}
	carrier := &stubCarrier{response: map[string]ports.TrackingInfo{
		"A": {Status: "delivered"},
	}}
	app := setupApp(repo, carrier)

	resp, err := app.Test(httptest.NewRequest("POST", "/sync", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result service.SyncResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, 1, result.Synced)
	assert.Empty(t, result.Errors)
}

func TestSyncHandler_Sync_NumberNotFound(t *testing.T) {
	repo := &stubRepository{packages: map[string]*domain.Package{}}
	app := setupApp(repo, &stubCarrier{})

	resp, err := app.Test(httptest.NewRequest("POST", "/sync?number=missing", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestSyncHandler_Sync_CarrierDown(t *testing.T) {
	repo := &stubRepository{packages: map[string]*domain.Package{
		"A": {TrackingNumber: "A", Status: domain.StatusPending},
	}}
	app := setupApp(repo, &stubCarrier{err: ports.ErrCarrierUnavailable})

	resp, err := app.Test(httptest.NewRequest("POST", "/sync", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
}
