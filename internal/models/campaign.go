package models

import (
	"time"

	"github.com/google/uuid"
)

// Campaign statuses
const (
	CampaignStatusDraft     = "draft"
	CampaignStatusScheduled = "scheduled"
	CampaignStatusActive    = "active"
	CampaignStatusPaused    = "paused"
	CampaignStatusCompleted = "completed"
)

// Ad types
const (
	AdTypePost        = "post"
	AdTypeProductLink = "product_link"
	AdTypeLandingPage = "landing_page"
	AdTypeExternalURL = "external_url"
)

// Approval statuses
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

type Campaign struct {
	ID             uuid.UUID `json:"id"`
	OwnerUserID    uuid.UUID `json:"owner_user_id"`
	Title          string    `json:"title"`
	Status         string    `json:"status"`
	AdType         string    `json:"ad_type"`
	ApprovalStatus string    `json:"approval_status"`
	BudgetCents    int64     `json:"budget_cents"`
	SpentCents     int64     `json:"spent_cents"`
	CPVCents       int64     `json:"cpv_cents"`
	Impressions    int64     `json:"impressions"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// RemainingCents is the part of the budget not yet spent.
func (c *Campaign) RemainingCents() int64 {
	return c.BudgetCents - c.SpentCents
}

// CanCoverView reports whether one more completed view can be paid.
func (c *Campaign) CanCoverView() bool {
	return c.RemainingCents() >= c.CPVCents
}

func IsValidAdType(t string) bool {
	switch t {
	case AdTypePost, AdTypeProductLink, AdTypeLandingPage, AdTypeExternalURL:
		return true
	}
	return false
}
