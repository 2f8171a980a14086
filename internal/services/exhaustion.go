package services

import (
	"context"

	"github.com/viewearn/backend/internal/models"
	"github.com/viewearn/backend/internal/ports"
)

// pauseIfExhausted pauses c and unpromotes its posts when its remaining
// budget no longer covers one view. It must run inside the transaction that
// holds the campaign lock. c.Status is updated on success.
func pauseIfExhausted(ctx context.Context, tx ports.Store, c *models.Campaign) (bool, error) {
	if c.Status != models.CampaignStatusActive || c.CanCoverView() {
		return false, nil
	}

	paused, err := tx.Campaigns().Pause(ctx, c.ID)
	if err != nil {
		return false, internalError("pause campaign", err)
	}
	if !paused {
		return false, nil
	}
	unpromoted, err := tx.Campaigns().UnpromotePosts(ctx, c.ID)
	if err != nil {
		return false, internalError("unpromote posts", err)
	}
	c.Status = models.CampaignStatusPaused

	if err := tx.Audit().Log(ctx, models.AuditLog{
		ActorType:  models.ActorSystem,
		Action:     models.AuditCampaignAutoPaused,
		EntityType: "campaign",
		EntityID:   &c.ID,
		Meta: map[string]any{
			"remaining_cents":  c.RemainingCents(),
			"cpv_cents":        c.CPVCents,
			"unpromoted_posts": unpromoted,
		},
	}); err != nil {
		return false, internalError("audit auto pause", err)
	}
	return true, nil
}
