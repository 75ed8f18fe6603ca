package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	cartCookieName      = "cart_session"
	cartSessionKey      = "cartSessionID"
	cartSessionLifetime = 7 * 24 * time.Hour
)

// CartSession guarantees every storefront request carries a cart session
// cookie, minting one on first contact. The session ID only keys the
// in-memory cart store; it carries no identity.
func CartSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := c.Cookies(cartCookieName)
		if _, err := uuid.Parse(sessionID); err != nil {
			sessionID = uuid.New().String()
			c.Cookie(&fiber.Cookie{
				Name:     cartCookieName,
				Value:    sessionID,
				Expires:  time.Now().Add(cartSessionLifetime),
				HTTPOnly: true,
				SameSite: fiber.CookieSameSiteLaxMode,
			})
		}

		c.Locals(cartSessionKey, sessionID)
		return c.Next()
	}
}

// GetCartSessionID extracts the cart session ID from context.
func GetCartSessionID(c *fiber.Ctx) string {
	if id, ok := c.Locals(cartSessionKey).(string); ok {
		return id
	}
	return ""
}
