package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mounirchebbi/beach-safety-app/internal/domain"
)

const principalKey = "principal"

// principalMiddleware builds the authenticated principal from the identity
// headers set by the upstream auth gateway. Session verification itself
// happens there; this service only consumes the result.
func principalMiddleware(c *fiber.Ctx) error {
	id := c.Get("X-User-ID")
	role := domain.Role(c.Get("X-User-Role"))
	if id == "" || role == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing identity"})
	}
	switch role {
	case domain.RoleSystemAdmin, domain.RoleCenterAdmin, domain.RoleLifeguard:
	default:
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unknown role"})
	}
	c.Locals(principalKey, domain.Principal{
		ID:       id,
		Role:     role,
		CenterID: c.Get("X-Center-ID"),
	})
	return c.Next()
}

func principal(c *fiber.Ctx) domain.Principal {
	p, _ := c.Locals(principalKey).(domain.Principal)
	return p
}

// requireRole gates a route to the listed roles.
func requireRole(roles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p := principal(c)
		for _, r := range roles {
			if p.Role == r {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "insufficient role"})
	}
}
