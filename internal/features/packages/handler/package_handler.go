package handler

import (
	"errors"
	"strings"

	"package-tracker/internal/features/packages/domain"
	"package-tracker/internal/features/packages/service"

	"github.com/gofiber/fiber/v2"
)

// PackageHandler handles HTTP requests for package store operations.
type PackageHandler struct {
	packageService *service.PackageService
}

// NewPackageHandler creates a new PackageHandler.
func NewPackageHandler(packageService *service.PackageService) *PackageHandler {
	return &PackageHandler{
		packageService: packageService,
	}
}

// ErrorResponse represents an error response with Ray ID.
type ErrorResponse struct {
	// Message is the error description.
	Message string `json:"message"`
	// RayID is the unique request identifier for tracing.
	RayID string `json:"ray_id,omitempty"`
}

// AddPackageRequest is the body for registering a tracking number.
type AddPackageRequest struct {
	TrackingNumber string `json:"tracking_number"`
	Carrier        string `json:"carrier,omitempty"`
}

func rayID(c *fiber.Ctx) string {
	id, _ := c.Locals("requestid").(string)
	return id
}

// Add godoc
// @Summary Register a tracking number
// @Description Adds a package to the local store with status pending
// @Tags packages
// @Accept json
// @Produce json
// @Param package body AddPackageRequest true "Package to track"
// @Success 201 {object} domain.Package
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /packages [post]
func (h *PackageHandler) Add(c *fiber.Ctx) error {
	var req AddPackageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: "invalid request body",
			RayID:   rayID(c),
		})
	}

	pkg, err := h.packageService.Add(c.Context(), req.TrackingNumber, req.Carrier)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidRecord):
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
				Message: err.Error(),
				RayID:   rayID(c),
			})
		case errors.Is(err, domain.ErrDuplicateTrackingNumber):
			return c.Status(fiber.StatusConflict).JSON(ErrorResponse{
				Message: err.Error(),
				RayID:   rayID(c),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Message: err.Error(),
			RayID:   rayID(c),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(pkg)
}

// List godoc
// @Summary List tracked packages
// @Description Returns all packages, optionally filtered by exact status, newest first
// @Tags packages
// @Produce json
// @Param status query string false "Status filter (pending, in_transit, out_for_delivery, delivered, exception, unknown)"
// @Success 200 {array} domain.Package
// @Router /packages [get]
func (h *PackageHandler) List(c *fiber.Ctx) error {
	packages, err := h.packageService.List(c.Context(), c.Query("status"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Message: err.Error(),
			RayID:   rayID(c),
		})
	}

	return c.JSON(packages)
}

// Get godoc
// @Summary Get a package with its event ledger
// @Description Returns the package and its events ordered newest first
// @Tags packages
// @Produce json
// @Param number path string true "Tracking Number"
// @Success 200 {object} domain.PackageDetails
// @Failure 404 {object} ErrorResponse
// @Router /packages/{number} [get]
func (h *PackageHandler) Get(c *fiber.Ctx) error {
	details, err := h.packageService.Get(c.Context(), c.Params("number"))
	if err != nil {
		if errors.Is(err, domain.ErrPackageNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
				Message: err.Error(),
				RayID:   rayID(c),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Message: err.Error(),
			RayID:   rayID(c),
		})
	}

	return c.JSON(details)
}

// Delete godoc
// @Summary Stop tracking a package
// @Description Removes the package and all its events
// @Tags packages
// @Produce json
// @Param number path string true "Tracking Number"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /packages/{number} [delete]
func (h *PackageHandler) Delete(c *fiber.Ctx) error {
	if err := h.packageService.Delete(c.Context(), c.Params("number")); err != nil {
		if errors.Is(err, domain.ErrPackageNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
				Message: err.Error(),
				RayID:   rayID(c),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Message: err.Error(),
			RayID:   rayID(c),
		})
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// Import godoc
// @Summary Bulk import tracking numbers
// @Description Accepts a JSON array of {number, carrier} records or CSV with number/tracking_number and carrier columns
// @Tags packages
// @Accept json
// @Produce json
// @Success 200 {object} service.ImportResult
// @Failure 400 {object} ErrorResponse
// @Router /packages/import [post]
func (h *PackageHandler) Import(c *fiber.Ctx) error {
	var (
		records []service.ImportRecord
		err     error
	)

	body := strings.NewReader(string(c.Body()))
	if strings.Contains(c.Get(fiber.HeaderContentType), "csv") {
		records, err = service.ParseCSVRecords(body)
	} else {
		records, err = service.ParseJSONRecords(body)
	}
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Message: err.Error(),
			RayID:   rayID(c),
		})
	}

	return c.JSON(h.packageService.Import(c.Context(), records))
}

// Export godoc
// @Summary Export the full store
// @Description Returns every package with its event ledger
// @Tags packages
// @Produce json
// @Success 200 {array} domain.PackageDetails
// @Router /packages/export [get]
func (h *PackageHandler) Export(c *fiber.Ctx) error {
	snapshot, err := h.packageService.Export(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Message: err.Error(),
			RayID:   rayID(c),
		})
	}

	return c.JSON(snapshot)
}

// Health godoc
// @Summary Liveness check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *PackageHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
