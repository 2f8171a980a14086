package dto

// View actions
const (
	ViewActionStart    = "start"
	ViewActionComplete = "complete"
)

// ViewRequest is the body of POST /ads/view. Start takes exactly one of
// PostID or CampaignID; complete takes ViewID. The view endpoint and its
// responses use the camelCase keys the ad player already sends; every other
// body in this package is snake_case.
type ViewRequest struct {
	Action     string `json:"action"`
	PostID     string `json:"postId,omitempty"`
	CampaignID string `json:"campaignId,omitempty"`
	ViewID     string `json:"viewId,omitempty"`
}

type CreateCampaignRequest struct {
	Title       string `json:"title"`
	AdType      string `json:"ad_type"` // post / product_link / landing_page / external_url
	BudgetCents int64  `json:"budget_cents"`
	CPVCents    int64  `json:"cpv_cents"`
}
