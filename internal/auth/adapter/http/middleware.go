package http

import (
	"context"
	"strings"

	"helfy-server/internal/auth/usecase"
	"helfy-server/internal/shared/contextkeys"
	apperrors "helfy-server/internal/shared/errors"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware provides token-gating middleware for Fiber
type AuthMiddleware struct {
	usecase usecase.AuthUsecaseInterface
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(uc usecase.AuthUsecaseInterface) *AuthMiddleware {
	return &AuthMiddleware{usecase: uc}
}

// Protect returns middleware that requires a valid token. The resolved
// user is stored in locals and the request context for handlers.
func (m *AuthMiddleware) Protect() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := ExtractToken(c)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}

		user, err := m.usecase.CurrentUser(c.Context(), token)
		if err != nil {
			// A store outage must not masquerade as session expiry.
			if apperrors.HTTPStatus(err) != fiber.StatusUnauthorized {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "Internal server error",
				})
			}
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid token",
			})
		}

		c.Locals("user", user)
		c.Locals("token", token)

		ctx := c.UserContext()
		ctx = context.WithValue(ctx, contextkeys.UserIDKey, user.ID)
		ctx = context.WithValue(ctx, contextkeys.UserEmailKey, user.Email)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// ExtractToken pulls the bearer token from the X-Auth-Token header or the
// Authorization header ("Bearer <token>").
func ExtractToken(c *fiber.Ctx) string {
	if token := c.Get("X-Auth-Token"); token != "" {
		return token
	}

	authHeader := c.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	return ""
}

// ClientIP returns the originating client address, honoring proxies.
// X-Forwarded-For may carry a comma-separated chain; the first entry is
// the client.
func ClientIP(c *fiber.Ctx) string {
	forwarded := c.Get("X-Forwarded-For")
	if forwarded == "" {
		return c.IP()
	}
	if i := strings.IndexByte(forwarded, ','); i >= 0 {
		forwarded = forwarded[:i]
	}
	return strings.TrimSpace(forwarded)
}
