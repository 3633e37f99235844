package handler

import (
	"errors"

	"package-tracker/internal/features/packages/domain"
	packagehandler "package-tracker/internal/features/packages/handler"
	"package-tracker/internal/features/sync/ports"
	"package-tracker/internal/features/sync/service"

	"github.com/gofiber/fiber/v2"
)

// SyncHandler handles HTTP requests triggering reconciliation.
type SyncHandler struct {
	syncService *service.SyncService
}

// NewSyncHandler creates a new SyncHandler.
func NewSyncHandler(syncService *service.SyncService) *SyncHandler {
	return &SyncHandler{
		syncService: syncService,
	}
}

func rayID(c *fiber.Ctx) string {
	id, _ := c.Locals("requestid").(string)
	return id
}

// Sync godoc
// @Summary Reconcile local state with the carrier
// @Description Syncs one package (number query param) or all tracked packages in a single batched carrier call
// @Tags sync
// @Produce json
// @Param number query string false "Tracking Number (omit to sync everything)"
// @Success 200 {object} service.SyncResult
// @Failure 404 {object} packagehandler.ErrorResponse
// @Failure 502 {object} packagehandler.ErrorResponse
// @Router /sync [post]
func (h *SyncHandler) Sync(c *fiber.Ctx) error {
	result, err := h.syncService.Sync(c.Context(), c.Query("number"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrPackageNotFound):
			return c.Status(fiber.StatusNotFound).JSON(packagehandler.ErrorResponse{
				Message: err.Error(),
				RayID:   rayID(c),
			})
		case errors.Is(err, ports.ErrCarrierUnavailable), errors.Is(err, ports.ErrMalformedResponse):
			return c.Status(fiber.StatusBadGateway).JSON(packagehandler.ErrorResponse{
				Message: err.Error(),
				RayID:   rayID(c),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(packagehandler.ErrorResponse{
			Message: err.Error(),
			RayID:   rayID(c),
		})
	}

	return c.JSON(result)
}
