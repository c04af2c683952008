package middleware

import (
	"strings"

	"queueflow/internal/config"
	"queueflow/internal/pkg/jwt"
	"queueflow/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware validates the admin bearer token and puts the admin
// identity into the request context. Customers never authenticate; only the
// /admin surface is guarded.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var accessToken string

		authHeader := c.Get("Authorization")
		if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
			accessToken = strings.TrimPrefix(authHeader, "Bearer ")
		}

		// SSE via EventSource cannot set headers; allow token in query for
		// stream endpoints
		if accessToken == "" {
			accessToken = c.Query("access_token")
		}

		if accessToken == "" {
			return response.Unauthorized(c, "Access token required")
		}

		claims, err := jwt.ValidateAccessToken(accessToken, cfg.JWT.Secret)
		if err != nil {
			if err == jwt.ErrTokenExpired {
				return response.Unauthorized(c, "Access token expired")
			}
			return response.Unauthorized(c, "Invalid access token")
		}

		c.Locals("adminID", claims.AdminID)
		c.Locals("adminEmail", claims.Email)

		return c.Next()
	}
}

// AdminID returns the authenticated admin id from the request context
func AdminID(c *fiber.Ctx) (string, bool) {
	id, ok := c.Locals("adminID").(string)
	return id, ok && id != ""
}
