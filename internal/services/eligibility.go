package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/viewearn/backend/internal/models"
	"github.com/viewearn/backend/internal/ports"
)

// viewTarget is a resolved, earnable target: the funding campaign and, for
// post targets, the promoted post.
type viewTarget struct {
	target   models.Target
	campaign *models.Campaign
	post     *models.Post
}

// ownedBy reports whether userID owns the campaign or the post.
func (t *viewTarget) ownedBy(userID uuid.UUID) bool {
	if t.campaign.OwnerUserID == userID {
		return true
	}
	return t.post != nil && t.post.OwnerUserID == userID
}

var (
	errPostNotEarnable     = newError(KindNotFound, "post is not available for earning")
	errCampaignNotEarnable = newError(KindNotFound, "campaign is not available for earning")
	errSelfView            = newError(KindConflict, "you cannot earn from your own content")
	errAlreadyEarned       = newError(KindConflict, "you have already earned from this content")
)

// resolveTarget loads the target and checks it can fund views. Anything that
// is missing, not published or not active resolves to not found.
func resolveTarget(ctx context.Context, campaigns ports.CampaignRepository, target models.Target) (*viewTarget, error) {
	switch target.Kind {
	case models.TargetPost:
		return resolvePost(ctx, campaigns, target)
	case models.TargetCampaign:
		return resolveCampaign(ctx, campaigns, target)
	}
	return nil, newError(KindValidation, "unknown target kind %q", target.Kind)
}

func resolvePost(ctx context.Context, campaigns ports.CampaignRepository, target models.Target) (*viewTarget, error) {
	post, err := campaigns.GetPost(ctx, target.ID)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, errPostNotEarnable
	}
	if err != nil {
		return nil, internalError("load post", err)
	}
	if post.Status != models.PostStatusPublished || !post.IsPromoted || post.CampaignID == nil {
		return nil, errPostNotEarnable
	}

	c, err := campaigns.GetByID(ctx, *post.CampaignID)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, errPostNotEarnable
	}
	if err != nil {
		return nil, internalError("load campaign", err)
	}
	if c.Status != models.CampaignStatusActive {
		return nil, errPostNotEarnable
	}
	return &viewTarget{target: target, campaign: c, post: post}, nil
}

func resolveCampaign(ctx context.Context, campaigns ports.CampaignRepository, target models.Target) (*viewTarget, error) {
	c, err := campaigns.GetByID(ctx, target.ID)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, errCampaignNotEarnable
	}
	if err != nil {
		return nil, internalError("load campaign", err)
	}
	// Post-type campaigns are earned through their posts.
	if c.Status != models.CampaignStatusActive ||
		c.ApprovalStatus != models.ApprovalApproved ||
		c.AdType == models.AdTypePost {
		return nil, errCampaignNotEarnable
	}
	return &viewTarget{target: target, campaign: c}, nil
}
