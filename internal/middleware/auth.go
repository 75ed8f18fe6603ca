package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/example/invithe/internal/config"
	"github.com/example/invithe/internal/utils"
)

const adminEmailContextKey = "currentAdminEmail"

// AdminAuth validates admin JWT tokens and loads the operator's email into
// context for audit logging.
func AdminAuth(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid authorization header")
		}

		_, email, err := utils.ParseToken(cfg.JWTSecret, parts[1])
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		c.Locals(adminEmailContextKey, email)
		return c.Next()
	}
}

// GetCurrentAdminEmail extracts the authenticated admin's email from context.
func GetCurrentAdminEmail(c *fiber.Ctx) (string, bool) {
	value := c.Locals(adminEmailContextKey)
	if value == nil {
		return "", false
	}

	if email, ok := value.(string); ok {
		return email, true
	}

	return "", false
}
