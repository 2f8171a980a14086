package events

import (
	"context"

	"github.com/google/uuid"
)

// Streams
const (
	StreamEarnings = "events:earnings"
	StreamCampaign = "events:campaign"
)

// Event types
const (
	EventViewSettled    = "view_settled"
	EventCampaignPaused = "campaign_paused"
)

type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

// Recipient returns the user the event is addressed to.
func (e Event) Recipient() (uuid.UUID, bool) {
	raw, ok := e.Payload["user_id"].(string)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func ViewSettled(viewerID, sessionID, campaignID uuid.UUID, earnedCents, balanceCents int64) Event {
	return Event{
		Type: EventViewSettled,
		Payload: map[string]any{
			"user_id":       viewerID.String(),
			"view_id":       sessionID.String(),
			"campaign_id":   campaignID.String(),
			"earned_cents":  earnedCents,
			"balance_cents": balanceCents,
		},
	}
}

func CampaignPaused(ownerID, campaignID uuid.UUID, remainingCents int64) Event {
	return Event{
		Type: EventCampaignPaused,
		Payload: map[string]any{
			"user_id":         ownerID.String(),
			"campaign_id":     campaignID.String(),
			"remaining_cents": remainingCents,
			"reason":          "budget_exhausted",
		},
	}
}

type Publisher interface {
	Publish(ctx context.Context, stream string, event Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, stream string, handler func(Event)) error
}
