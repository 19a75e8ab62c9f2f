package middleware

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"ihya/config"
	"ihya/models"
	"ihya/utils"
)

// AuthMiddleware verifies the bearer token and re-checks the account against
// the database: the token's role claim is informational only, the stored role
// and active flag win.
func AuthMiddleware(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _, err := utils.ExtractUserFromToken(c, cfg)
		if err != nil {
			return utils.Unauthorized(c, "Unauthorized")
		}

		var user models.User
		if err := db.Select("id", "role", "is_active").First(&user, userID).Error; err != nil {
			return utils.Unauthorized(c, "Unauthorized")
		}
		if !user.IsActive {
			return utils.Forbidden(c, "Account is deactivated")
		}

		c.Locals("user_id", user.ID)
		c.Locals("role", user.Role)
		return c.Next()
	}
}

// AdminMiddleware must run after AuthMiddleware.
func AdminMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals("role").(string)
		if role != models.RoleAdmin {
			return utils.Forbidden(c, "Admin access required")
		}
		return c.Next()
	}
}

// UserID returns the authenticated user's id set by AuthMiddleware.
func UserID(c *fiber.Ctx) uint {
	id, _ := c.Locals("user_id").(uint)
	return id
}
