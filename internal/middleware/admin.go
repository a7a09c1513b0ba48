package middleware

import (
	"crypto/subtle"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/ahmetcoskunkizilkaya/cabinet-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/cabinet-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/cabinet-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/cabinet-backend/internal/repository"
	"github.com/ahmetcoskunkizilkaya/cabinet-backend/internal/services"
)

// AdminRequired guards the raw store endpoints. It accepts, in order:
// 1. X-Admin-Token matching ADMIN_TOKEN
// 2. in secure mode, a bearer token whose user is listed in ADMIN_EMAILS
// 3. in secure mode, a bearer token whose user has the admin role
//
// Legacy tokens are unsigned and user ids are predictable, so in legacy mode
// only the admin token is accepted.
func AdminRequired(cfg *config.Config, tokens services.TokenIssuer, users *repository.Users) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cfg.AdminToken != "" {
			given := c.Get("X-Admin-Token")
			if subtle.ConstantTimeCompare([]byte(given), []byte(cfg.AdminToken)) == 1 {
				return c.Next()
			}
		}

		if cfg.AuthMode != config.AuthModeSecure {
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: "Admin access requires X-Admin-Token in legacy auth mode",
			})
		}

		sub, err := tokens.Subject(bearerToken(c))
		if err != nil {
			return unauthorized(c)
		}

		user, err := users.Get(sub)
		if err != nil {
			slog.Error("admin check failed", "user_id", sub, "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
				Error: true, Message: "Internal server error",
			})
		}
		if user != nil && (cfg.IsAdminEmail(user.Email) || user.Role == models.RoleAdmin) {
			c.Locals(userIDKey, sub)
			return c.Next()
		}

		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Admin access required",
		})
	}
}
