package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
	PostStatusArchived  = "archived"
)

// Post is a piece of owner content that can be promoted under a POST campaign.
type Post struct {
	ID          uuid.UUID  `json:"id"`
	OwnerUserID uuid.UUID  `json:"owner_user_id"`
	CampaignID  *uuid.UUID `json:"campaign_id,omitempty"`
	Status      string     `json:"status"`
	IsPromoted  bool       `json:"is_promoted"`
	CreatedAt   time.Time  `json:"created_at"`
}
