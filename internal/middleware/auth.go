package middleware

import (
	"strings"

	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/ahmetcoskunkizilkaya/cabinet-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/cabinet-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/cabinet-backend/internal/services"
)

const userIDKey = "user_id"

// SessionRequired rejects requests without a valid bearer token and stores
// the token subject under "user_id". Secure mode checks HS256 JWTs; legacy
// mode accepts any token the legacy issuer verifies.
func SessionRequired(cfg *config.Config, tokens services.TokenIssuer) fiber.Handler {
	if cfg.AuthMode == config.AuthModeSecure {
		return jwtware.New(jwtware.Config{
			SigningKey: jwtware.SigningKey{JWTAlg: jwtware.HS256, Key: []byte(cfg.JWTSecret)},
			SuccessHandler: func(c *fiber.Ctx) error {
				token, ok := c.Locals("user").(*jwt.Token)
				if !ok {
					return unauthorized(c)
				}
				sub, err := token.Claims.GetSubject()
				if err != nil || sub == "" {
					return unauthorized(c)
				}
				c.Locals(userIDKey, sub)
				return c.Next()
			},
			ErrorHandler: func(c *fiber.Ctx, err error) error {
				return unauthorized(c)
			},
		})
	}

	return func(c *fiber.Ctx) error {
		sub, err := tokens.Subject(bearerToken(c))
		if err != nil {
			return unauthorized(c)
		}
		c.Locals(userIDKey, sub)
		return c.Next()
	}
}

// UserID returns the subject stored by SessionRequired or AdminRequired.
func UserID(c *fiber.Ctx) string {
	if id, ok := c.Locals(userIDKey).(string); ok {
		return id
	}
	return ""
}

func bearerToken(c *fiber.Ctx) string {
	h := c.Get(fiber.HeaderAuthorization)
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error:   true,
		Message: "Unauthorized: invalid or missing token",
	})
}
