package handlers

import (
	"github.com/gofiber/fiber/v2"

	"queueflow/internal/adapters/http/middleware"
	"queueflow/internal/core/services"
	"queueflow/internal/pkg/response"
	"queueflow/internal/pkg/validate"
)

// PreferenceHandler handles administrator display settings
type PreferenceHandler struct {
	preferenceService *services.PreferenceService
}

// NewPreferenceHandler creates a new preference handler
func NewPreferenceHandler(preferenceService *services.PreferenceService) *PreferenceHandler {
	return &PreferenceHandler{preferenceService: preferenceService}
}

// ============================================================
// GET /api/v1/admin/preferences — current settings (light theme by default)
// ============================================================
func (h *PreferenceHandler) Get(c *fiber.Ctx) error {
	adminID, ok := middleware.AdminID(c)
	if !ok {
		return response.Unauthorized(c, "Missing admin identity")
	}

	pref, err := h.preferenceService.Get(c.Context(), adminID)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Preferences retrieved", pref)
}

type updatePreferencesInput struct {
	Theme string `json:"theme" validate:"required"`
}

// ============================================================
// PUT /api/v1/admin/preferences — set an explicit theme
// ============================================================
func (h *PreferenceHandler) Update(c *fiber.Ctx) error {
	adminID, ok := middleware.AdminID(c)
	if !ok {
		return response.Unauthorized(c, "Missing admin identity")
	}

	var input updatePreferencesInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validate.Struct(input); err != nil {
		return response.BadRequest(c, validate.Message(err))
	}

	pref, err := h.preferenceService.SetTheme(c.Context(), adminID, input.Theme)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Preferences updated", pref)
}

// ============================================================
// POST /api/v1/admin/preferences/theme — flip light/dark
// ============================================================
func (h *PreferenceHandler) ToggleTheme(c *fiber.Ctx) error {
	adminID, ok := middleware.AdminID(c)
	if !ok {
		return response.Unauthorized(c, "Missing admin identity")
	}

	pref, err := h.preferenceService.ToggleTheme(c.Context(), adminID)
	if err != nil {
		return response.DomainError(c, err)
	}
	return response.Success(c, "Theme updated", pref)
}
