package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/viewearn/backend/internal/http/dto"
	"github.com/viewearn/backend/internal/middleware"
	"github.com/viewearn/backend/internal/services"
	"go.uber.org/zap"
)

func statusFor(kind services.ErrorKind) int {
	switch kind {
	case services.KindValidation, services.KindConflict, services.KindBudgetExhausted, services.KindTimingNotMet:
		return fiber.StatusBadRequest
	case services.KindUnauthorized:
		return fiber.StatusUnauthorized
	case services.KindNotFound:
		return fiber.StatusNotFound
	case services.KindRateLimited:
		return fiber.StatusTooManyRequests
	}
	return fiber.StatusInternalServerError
}

// writeError renders err in the common error envelope. Only internal errors
// are logged; their cause is never shown to the client.
func writeError(c *fiber.Ctx, log *zap.Logger, err error) error {
	kind := services.KindOf(err)
	body := dto.ErrorBody{Code: string(kind), Message: "internal error"}

	var se *services.Error
	if errors.As(err, &se) && kind != services.KindInternal {
		body.Message = se.Message
		if kind == services.KindTimingNotMet {
			remaining := se.RemainingSeconds
			body.RemainingSeconds = &remaining
		}
	}
	if kind == services.KindInternal {
		log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
	}

	reqID, _ := c.Locals(middleware.CtxRequestID).(string)
	return c.Status(statusFor(kind)).JSON(dto.ErrorResponse{Error: body, RequestID: reqID})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: dto.ErrorBody{Code: string(services.KindValidation), Message: message},
	})
}

// pagination reads limit/offset query params. Limit defaults to 20 and is
// capped at 100.
func pagination(c *fiber.Ctx) (limit, offset int) {
	limit, offset = 20, 0
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = min(n, 100)
		}
	}
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}
