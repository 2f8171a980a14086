package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/viewearn/backend/internal/auth"
	"github.com/viewearn/backend/internal/config"
	"go.uber.org/zap"
)

const CtxUserID = "user_id"

func AuthMiddleware(cfg *config.Config, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return abort(c, fiber.StatusUnauthorized, "unauthorized", "missing authorization header")
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenStr == authHeader {
			return abort(c, fiber.StatusUnauthorized, "unauthorized", "invalid authorization format")
		}

		claims, err := auth.ParseJWT(cfg.JWTSecret, tokenStr, cfg.JWTExpiration)
		if err != nil {
			log.Debug("jwt parse error", zap.Error(err))
			return abort(c, fiber.StatusUnauthorized, "unauthorized", "invalid or expired token")
		}

		c.Locals(CtxUserID, claims.UserID)
		return c.Next()
	}
}

// GetUserID returns the authenticated caller, or uuid.Nil outside
// AuthMiddleware.
func GetUserID(c *fiber.Ctx) uuid.UUID {
	id, _ := c.Locals(CtxUserID).(uuid.UUID)
	return id
}

func abort(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": fiber.Map{"message": message, "code": code},
	})
}
