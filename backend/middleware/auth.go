package middleware

import (
	"coursemarket/backend/clients/identity"
	"coursemarket/backend/config"
	"coursemarket/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// LocalsUserID is the ctx key handlers read the caller id from.
const LocalsUserID = "userID"

// ProtectUser requires an authenticated identity. The resolved external user
// id is stored in ctx locals for the handler.
func ProtectUser(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := utils.ExtractUserIDFromToken(c, cfg)
		if err != nil {
			return utils.Unauthorized(c, "Not authenticated")
		}

		c.Locals(LocalsUserID, userID)
		return c.Next()
	}
}

// ProtectEducator requires an authenticated identity that carries the educator
// role. The role is looked up server-side at the identity provider, never
// taken from the token. Ownership of individual courses is checked in the
// handlers, not here.
func ProtectEducator(cfg *config.Config, idClient identity.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := utils.ExtractUserIDFromToken(c, cfg)
		if err != nil {
			return utils.Unauthorized(c, "Not authenticated")
		}

		role, err := idClient.GetUserRole(c.Context(), userID)
		if err != nil {
			return utils.InternalServerError(c, err.Error())
		}

		if role != identity.RoleEducator {
			return utils.Forbidden(c, "Unauthorized Access")
		}

		c.Locals(LocalsUserID, userID)
		return c.Next()
	}
}

// UserID returns the caller id placed in locals by ProtectUser/ProtectEducator.
func UserID(c *fiber.Ctx) string {
	if id, ok := c.Locals(LocalsUserID).(string); ok {
		return id
	}
	return ""
}
