package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/JaThHu/Notizen-App/internal/domain"
)

const identityKey = "identity"

// Middleware guards JWT-protected routes. The parsed identity lands in
// c.Locals for handlers to read via IdentityFromCtx.
func Middleware(tokens *Tokens) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := strings.TrimSpace(c.Get("Authorization"))
		if !strings.HasPrefix(header, "Bearer ") {
			return fiber.NewError(fiber.StatusUnauthorized, "missing auth token")
		}

		ident, err := tokens.Parse(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		c.Locals(identityKey, ident)
		return c.Next()
	}
}

// IdentityFromCtx reads the caller placed in Locals by Middleware.
func IdentityFromCtx(c *fiber.Ctx) (domain.Identity, bool) {
	ident, ok := c.Locals(identityKey).(domain.Identity)
	return ident, ok
}

// WithIdentity injects a fixed identity; used by tests in place of Middleware.
func WithIdentity(ident domain.Identity) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(identityKey, ident)
		return c.Next()
	}
}
