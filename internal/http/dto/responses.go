package dto

import "time"

type ErrorBody struct {
	Message          string `json:"message"`
	Code             string `json:"code"`
	RemainingSeconds *int   `json:"remainingSeconds,omitempty"`
}

type ErrorResponse struct {
	Error     ErrorBody `json:"error"`
	RequestID string    `json:"request_id,omitempty"`
}

type SuccessResponse struct {
	OK   bool `json:"ok"`
	Data any  `json:"data,omitempty"`
}

type ViewStartResponse struct {
	ViewID           string    `json:"viewId"`
	StartedAt        time.Time `json:"startedAt"`
	DurationRequired int       `json:"durationRequired"`
	EarnAmount       float64   `json:"earnAmount"`
	EarnAmountCents  int64     `json:"earnAmountCents"`
}

type ViewCompleteResponse struct {
	Earned         float64 `json:"earned"`
	EarnedCents    int64   `json:"earnedCents"`
	ViewDuration   int64   `json:"viewDuration"`
	BalanceCents   int64   `json:"balanceCents"`
	CampaignPaused bool    `json:"campaignPaused,omitempty"`
	Message        string  `json:"message"`
}

type MeResponse struct {
	ID           string    `json:"id"`
	Username     *string   `json:"username,omitempty"`
	BalanceCents int64     `json:"balance_cents"`
	Balance      float64   `json:"balance"`
	CreatedAt    time.Time `json:"created_at"`
}

type ListResponse struct {
	Items  any `json:"items"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}
