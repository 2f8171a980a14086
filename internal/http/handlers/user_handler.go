package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/viewearn/backend/internal/http/dto"
	"github.com/viewearn/backend/internal/middleware"
	"github.com/viewearn/backend/internal/revenue"
	"github.com/viewearn/backend/internal/services"
	"go.uber.org/zap"
)

type UserHandler struct {
	userService *services.UserService
	log         *zap.Logger
}

func NewUserHandler(userService *services.UserService, log *zap.Logger) *UserHandler {
	return &UserHandler{userService: userService, log: log}
}

func (h *UserHandler) GetMe(c *fiber.Ctx) error {
	user, err := h.userService.GetMe(c.UserContext(), middleware.GetUserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: dto.MeResponse{
		ID:           user.ID.String(),
		Username:     user.Username,
		BalanceCents: user.BalanceCents,
		Balance:      revenue.ToDisplay(user.BalanceCents),
		CreatedAt:    user.CreatedAt,
	}})
}

func (h *UserHandler) ListEarnings(c *fiber.Ctx) error {
	limit, offset := pagination(c)
	earnings, err := h.userService.Earnings(c.UserContext(), middleware.GetUserID(c), limit, offset)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: dto.ListResponse{Items: earnings, Limit: limit, Offset: offset}})
}
