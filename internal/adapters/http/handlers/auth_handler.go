package handlers

import (
	"github.com/gofiber/fiber/v2"

	"queueflow/internal/config"
	"queueflow/internal/pkg/jwt"
	"queueflow/internal/pkg/response"
	"queueflow/internal/pkg/validate"
)

// AuthHandler mints development admin tokens. Sign-in against a real identity
// provider happens outside this service; in dev mode a token for any admin id
// can be minted directly so the board works without an upstream login flow.
type AuthHandler struct {
	cfg *config.Config
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(cfg *config.Config) *AuthHandler {
	return &AuthHandler{cfg: cfg}
}

type devTokenInput struct {
	AdminID string `json:"admin_id" validate:"required"`
	Email   string `json:"email" validate:"omitempty,email"`
}

// ============================================================
// POST /api/v1/auth/token — mint an admin token (dev mode only)
// ============================================================
func (h *AuthHandler) DevToken(c *fiber.Ctx) error {
	if !h.cfg.IsDev() {
		return response.NotFound(c, "Not available")
	}

	var input devTokenInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validate.Struct(input); err != nil {
		return response.BadRequest(c, validate.Message(err))
	}

	token, err := jwt.GenerateAccessToken(input.AdminID, input.Email, h.cfg.JWT.Secret, h.cfg.JWT.AccessTokenMins)
	if err != nil {
		return response.InternalServerError(c, "Could not mint token")
	}

	return response.Success(c, "Token minted", fiber.Map{
		"access_token": token,
		"token_type":   "Bearer",
		"expires_in":   h.cfg.JWT.AccessTokenMins * 60,
		"demo_admin":   config.DemoAdminID,
	})
}
