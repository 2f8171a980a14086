package handlers

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/viewearn/backend/internal/http/dto"
	"github.com/viewearn/backend/internal/middleware"
	"github.com/viewearn/backend/internal/models"
	"github.com/viewearn/backend/internal/revenue"
	"github.com/viewearn/backend/internal/services"
	"go.uber.org/zap"
)

// ViewService is the part of services.ViewService the handler drives.
type ViewService interface {
	Start(ctx context.Context, viewerID uuid.UUID, target models.Target) (*services.StartResult, error)
	Complete(ctx context.Context, viewerID, viewID uuid.UUID) (*services.SettlementResult, error)
}

type ViewHandler struct {
	views ViewService
	log   *zap.Logger
}

func NewViewHandler(views ViewService, log *zap.Logger) *ViewHandler {
	return &ViewHandler{views: views, log: log}
}

// HandleView serves POST /ads/view for both actions.
func (h *ViewHandler) HandleView(c *fiber.Ctx) error {
	viewerID := middleware.GetUserID(c)
	if viewerID == uuid.Nil {
		return writeError(c, h.log, services.ErrUnauthorized)
	}

	var req dto.ViewRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	switch req.Action {
	case dto.ViewActionStart:
		return h.start(c, viewerID, req)
	case dto.ViewActionComplete:
		return h.complete(c, viewerID, req)
	}
	return badRequest(c, `action must be "start" or "complete"`)
}

func (h *ViewHandler) start(c *fiber.Ctx, viewerID uuid.UUID, req dto.ViewRequest) error {
	target, err := parseTarget(req)
	if err != nil {
		return badRequest(c, err.Error())
	}

	res, err := h.views.Start(c.UserContext(), viewerID, target)
	if err != nil {
		return writeError(c, h.log, err)
	}

	return c.JSON(dto.ViewStartResponse{
		ViewID:           res.ViewID.String(),
		StartedAt:        res.StartedAt,
		DurationRequired: res.DurationRequired,
		EarnAmount:       revenue.ToDisplay(res.EarnCents),
		EarnAmountCents:  res.EarnCents,
	})
}

func (h *ViewHandler) complete(c *fiber.Ctx, viewerID uuid.UUID, req dto.ViewRequest) error {
	viewID, err := uuid.Parse(req.ViewID)
	if err != nil {
		return badRequest(c, "viewId must be a valid id")
	}

	res, err := h.views.Complete(c.UserContext(), viewerID, viewID)
	if err != nil {
		return writeError(c, h.log, err)
	}

	earned := revenue.ToDisplay(res.EarnedCents)
	return c.JSON(dto.ViewCompleteResponse{
		Earned:         earned,
		EarnedCents:    res.EarnedCents,
		ViewDuration:   res.DwellSeconds,
		BalanceCents:   res.BalanceCents,
		CampaignPaused: res.CampaignPaused,
		Message:        fmt.Sprintf("You earned %.2f for watching this ad", earned),
	})
}

// parseTarget accepts exactly one of postId or campaignId.
func parseTarget(req dto.ViewRequest) (models.Target, error) {
	switch {
	case req.PostID != "" && req.CampaignID != "":
		return models.Target{}, fmt.Errorf("send either postId or campaignId, not both")
	case req.PostID != "":
		id, err := uuid.Parse(req.PostID)
		if err != nil {
			return models.Target{}, fmt.Errorf("postId must be a valid id")
		}
		return models.PostTarget(id), nil
	case req.CampaignID != "":
		id, err := uuid.Parse(req.CampaignID)
		if err != nil {
			return models.Target{}, fmt.Errorf("campaignId must be a valid id")
		}
		return models.CampaignTarget(id), nil
	}
	return models.Target{}, fmt.Errorf("postId or campaignId is required")
}
