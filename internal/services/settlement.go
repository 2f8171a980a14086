package services

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/viewearn/backend/internal/models"
	"github.com/viewearn/backend/internal/ports"
)

var errViewNotPending = newError(KindNotFound, "view not found or already completed")

// settle pays a verified view in one transaction: the session flips to
// settled, the campaign is debited one CPV, the viewer is credited their
// share and both shares are recorded as earnings. It returns the campaign if
// the debit exhausted it and it was paused.
func (s *ViewService) settle(ctx context.Context, session *models.ViewSession, elapsed time.Duration, now time.Time) (*SettlementResult, *models.Campaign, error) {
	var (
		res    *SettlementResult
		paused *models.Campaign
	)
	viewerID := session.ViewerUserID

	err := s.store.WithinTx(ctx, func(tx ports.Store) error {
		c, err := tx.Campaigns().GetByIDForUpdate(ctx, session.CampaignID)
		if errors.Is(err, ports.ErrNotFound) {
			return errCampaignNotEarnable
		}
		if err != nil {
			return internalError("lock campaign", err)
		}
		if c.Status != models.CampaignStatusActive {
			return newError(KindConflict, "campaign is no longer active")
		}
		if !c.CanCoverView() {
			return newError(KindBudgetExhausted, "campaign budget exhausted")
		}

		// Ownership may have changed since the view started.
		if c.OwnerUserID == viewerID {
			return errSelfView
		}
		if session.TargetKind == models.TargetPost && session.PostID != nil {
			post, err := tx.Campaigns().GetPost(ctx, *session.PostID)
			if err != nil && !errors.Is(err, ports.ErrNotFound) {
				return internalError("load post", err)
			}
			if post != nil && post.OwnerUserID == viewerID {
				return errSelfView
			}
		}

		viewerCents, platformCents, err := s.splitter.Split(c.CPVCents)
		if err != nil {
			return internalError("split cpv", err)
		}
		dwellSeconds := int64(math.Round(elapsed.Seconds()))

		err = tx.Sessions().MarkSettled(ctx, session.ID, viewerID, viewerCents, dwellSeconds, now)
		if errors.Is(err, ports.ErrNotFound) {
			return errViewNotPending
		}
		if err != nil {
			return internalError("settle view", err)
		}

		updated, err := tx.Campaigns().DebitView(ctx, c.ID, c.CPVCents)
		if errors.Is(err, ports.ErrInsufficientBudget) {
			return newError(KindBudgetExhausted, "campaign budget exhausted")
		}
		if err != nil {
			return internalError("debit campaign", err)
		}

		balance, err := tx.Ledger().CreditBalance(ctx, viewerID, viewerCents)
		if errors.Is(err, ports.ErrNotFound) {
			return newError(KindNotFound, "viewer account not found")
		}
		if err != nil {
			return internalError("credit viewer", err)
		}

		if err := tx.Ledger().InsertEarning(ctx, &models.Earning{
			UserID:      viewerID,
			AmountCents: viewerCents,
			Source:      models.EarningSourceAdView,
			SourceID:    session.ID,
			CreatedAt:   now,
		}); err != nil {
			return internalError("record viewer earning", err)
		}
		if platformCents > 0 {
			if err := tx.Ledger().InsertEarning(ctx, &models.Earning{
				UserID:      c.OwnerUserID,
				AmountCents: platformCents,
				Source:      models.EarningSourcePlatformFee,
				SourceID:    session.ID,
				CreatedAt:   now,
			}); err != nil {
				return internalError("record platform fee", err)
			}
		}

		didPause, err := pauseIfExhausted(ctx, tx, updated)
		if err != nil {
			return err
		}
		if didPause {
			paused = updated
		}

		res = &SettlementResult{
			ViewID:         session.ID,
			CampaignID:     c.ID,
			EarnedCents:    viewerCents,
			DwellSeconds:   dwellSeconds,
			BalanceCents:   balance,
			CampaignPaused: didPause,
		}
		return nil
	})
	if err != nil {
		return nil, nil, asServiceError("settle view", err)
	}
	return res, paused, nil
}
