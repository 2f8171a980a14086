package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// View session statuses
const (
	ViewStatusPending = "pending"
	ViewStatusSettled = "settled"
)

// Valid view session transitions: from -> []to.
// pending -> pending is a restart of the dwell timer.
var ValidViewTransitions = map[string][]string{
	ViewStatusPending: {ViewStatusPending, ViewStatusSettled},
	ViewStatusSettled: {},
}

func IsValidViewTransition(from, to string) bool {
	allowed, ok := ValidViewTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// Target kinds
const (
	TargetPost     = "post"
	TargetCampaign = "campaign"
)

// Target is what a viewer is watching: a promoted post, or a non-post campaign.
type Target struct {
	Kind string
	ID   uuid.UUID
}

func PostTarget(id uuid.UUID) Target     { return Target{Kind: TargetPost, ID: id} }
func CampaignTarget(id uuid.UUID) Target { return Target{Kind: TargetCampaign, ID: id} }

func (t Target) String() string {
	return fmt.Sprintf("%s:%s", t.Kind, t.ID)
}

type ViewSession struct {
	ID           uuid.UUID  `json:"id"`
	TargetKind   string     `json:"target_kind"`
	PostID       *uuid.UUID `json:"post_id,omitempty"`
	CampaignID   uuid.UUID  `json:"campaign_id"`
	ViewerUserID uuid.UUID  `json:"viewer_user_id"`
	Status       string     `json:"status"`
	StartedAt    time.Time  `json:"started_at"`
	DwellSeconds int64      `json:"dwell_seconds"`
	EarnedCents  int64      `json:"earned_cents"`
	SettledAt    *time.Time `json:"settled_at,omitempty"`
}

// SubjectID is the id the at-most-once rule is keyed on: the post for POST
// ads, the campaign otherwise.
func (s *ViewSession) SubjectID() uuid.UUID {
	if s.TargetKind == TargetPost && s.PostID != nil {
		return *s.PostID
	}
	return s.CampaignID
}

func (s *ViewSession) Target() Target {
	return Target{Kind: s.TargetKind, ID: s.SubjectID()}
}

func (s *ViewSession) IsPending() bool {
	return s.Status == ViewStatusPending
}
