package models

import (
	"time"

	"github.com/google/uuid"
)

// Audit actor types
const (
	ActorUser   = "user"
	ActorSystem = "system"
)

// Audit actions
const (
	AuditCampaignCreated    = "campaign_created"
	AuditCampaignResumed    = "campaign_resumed"
	AuditCampaignAutoPaused = "campaign_auto_paused"
	AuditPendingViewsReaped = "pending_views_reaped"
)

type AuditLog struct {
	ID          uuid.UUID  `json:"id"`
	ActorUserID *uuid.UUID `json:"actor_user_id,omitempty"`
	ActorType   string     `json:"actor_type"`
	Action      string     `json:"action"`
	EntityType  string     `json:"entity_type"`
	EntityID    *uuid.UUID `json:"entity_id,omitempty"`
	Meta        any        `json:"meta,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
