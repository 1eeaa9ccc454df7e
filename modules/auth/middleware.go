package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ClaimsKey is the Fiber locals key holding the caller's *Claims.
const ClaimsKey = "claims"

// Middleware rejects requests that do not carry a valid token. The token is
// read from the Authorization header, or from the token query parameter for
// clients such as browsers opening a WebSocket that cannot set headers.
func Middleware(manager *JWTManager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			return unauthorized(c, "authorization token is required")
		}

		claims, err := manager.ValidateToken(token)
		if err != nil {
			return unauthorized(c, "invalid or expired token")
		}

		c.Locals(ClaimsKey, claims)
		return c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error":   "unauthorized",
		"message": message,
	})
}
