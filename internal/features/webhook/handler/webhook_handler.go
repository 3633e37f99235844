package handler

import (
	"errors"

	"package-tracker/internal/features/packages/domain"
	packagehandler "package-tracker/internal/features/packages/handler"
	"package-tracker/internal/features/webhook/service"

	"github.com/gofiber/fiber/v2"
)

// WebhookHandler receives carrier push notifications.
type WebhookHandler struct {
	webhookService *service.WebhookService
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(webhookService *service.WebhookService) *WebhookHandler {
	return &WebhookHandler{
		webhookService: webhookService,
	}
}

func rayID(c *fiber.Ctx) string {
	id, _ := c.Locals("requestid").(string)
	return id
}

// Receive godoc
// @Summary Receive a carrier push notification
// @Description Merges a pushed tracking update; acknowledges pushes for untracked numbers so the carrier stops retrying
// @Tags webhook
// @Accept json
// @Produce json
// @Param payload body service.Payload true "Push notification"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} packagehandler.ErrorResponse
// @Router /webhook [post]
func (h *WebhookHandler) Receive(c *fiber.Ctx) error {
	var payload service.Payload
	if err := c.BodyParser(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(packagehandler.ErrorResponse{
			Message: "Invalid payload",
			RayID:   rayID(c),
		})
	}

	if err := h.webhookService.Ingest(c.Context(), payload); err != nil {
		if errors.Is(err, domain.ErrInvalidRecord) {
			return c.Status(fiber.StatusBadRequest).JSON(packagehandler.ErrorResponse{
				Message: err.Error(),
				RayID:   rayID(c),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(packagehandler.ErrorResponse{
			Message: err.Error(),
			RayID:   rayID(c),
		})
	}

	return c.JSON(fiber.Map{"success": true})
}
