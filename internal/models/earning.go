package models

import (
	"time"

	"github.com/google/uuid"
)

// Earning sources
const (
	EarningSourceAdView      = "ad_view"
	EarningSourcePlatformFee = "platform_fee"
)

// Earning is an append-only ledger row. PLATFORM_FEE rows are bookkeeping
// attributed to the campaign owner and never touch a spendable balance.
type Earning struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	AmountCents int64     `json:"amount_cents"`
	Source      string    `json:"source"`
	SourceID    uuid.UUID `json:"source_id"`
	CreatedAt   time.Time `json:"created_at"`
}
