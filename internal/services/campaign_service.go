package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/viewearn/backend/internal/events"
	"github.com/viewearn/backend/internal/models"
	"github.com/viewearn/backend/internal/ports"
	"go.uber.org/zap"
)

type CreateCampaignInput struct {
	Title       string
	AdType      string
	BudgetCents int64
	CPVCents    int64
}

type CampaignService struct {
	store     ports.Store
	publisher events.Publisher
	log       *zap.Logger
}

func NewCampaignService(store ports.Store, publisher events.Publisher, log *zap.Logger) *CampaignService {
	return &CampaignService{
		store:     store,
		publisher: publisher,
		log:       log,
	}
}

// Create stores a draft campaign awaiting approval.
func (s *CampaignService) Create(ctx context.Context, userID uuid.UUID, in CreateCampaignInput) (*models.Campaign, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, newError(KindValidation, "title is required")
	}
	if !models.IsValidAdType(in.AdType) {
		return nil, newError(KindValidation, "invalid ad type %q", in.AdType)
	}
	if in.CPVCents <= 0 {
		return nil, newError(KindValidation, "cpv must be positive")
	}
	if in.BudgetCents < in.CPVCents {
		return nil, newError(KindValidation, "budget must cover at least one view")
	}

	c := &models.Campaign{
		OwnerUserID:    userID,
		Title:          title,
		Status:         models.CampaignStatusDraft,
		AdType:         in.AdType,
		ApprovalStatus: models.ApprovalPending,
		BudgetCents:    in.BudgetCents,
		CPVCents:       in.CPVCents,
	}
	if err := s.store.Campaigns().Create(ctx, c); err != nil {
		return nil, internalError("create campaign", err)
	}

	_ = s.store.Audit().Log(ctx, models.AuditLog{
		ActorUserID: &userID,
		ActorType:   models.ActorUser,
		Action:      models.AuditCampaignCreated,
		EntityType:  "campaign",
		EntityID:    &c.ID,
	})

	return c, nil
}

// GetByID returns the campaign if userID owns it. Other owners' campaigns
// are reported as not found.
func (s *CampaignService) GetByID(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*models.Campaign, error) {
	c, err := s.store.Campaigns().GetByID(ctx, id)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, newError(KindNotFound, "campaign not found")
	}
	if err != nil {
		return nil, internalError("load campaign", err)
	}
	if c.OwnerUserID != userID {
		return nil, newError(KindNotFound, "campaign not found")
	}
	return c, nil
}

func (s *CampaignService) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Campaign, error) {
	list, err := s.store.Campaigns().ListByOwner(ctx, userID, limit, offset)
	if err != nil {
		return nil, internalError("list campaigns", err)
	}
	return list, nil
}

// Resume reactivates a paused campaign whose budget covers another view.
func (s *CampaignService) Resume(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*models.Campaign, error) {
	if _, err := s.GetByID(ctx, id, userID); err != nil {
		return nil, err
	}

	var resumed *models.Campaign
	err := s.store.WithinTx(ctx, func(tx ports.Store) error {
		ok, err := tx.Campaigns().Resume(ctx, id)
		if err != nil {
			return internalError("resume campaign", err)
		}
		if !ok {
			return newError(KindConflict, "campaign is not paused or its budget cannot cover a view")
		}
		c, err := tx.Campaigns().GetByID(ctx, id)
		if err != nil {
			return internalError("load campaign", err)
		}
		resumed = c
		return tx.Audit().Log(ctx, models.AuditLog{
			ActorUserID: &userID,
			ActorType:   models.ActorUser,
			Action:      models.AuditCampaignResumed,
			EntityType:  "campaign",
			EntityID:    &id,
		})
	})
	if err != nil {
		return nil, asServiceError("resume campaign", err)
	}
	return resumed, nil
}

func (s *CampaignService) Events(ctx context.Context, id uuid.UUID, userID uuid.UUID, limit, offset int) ([]models.AuditLog, error) {
	if _, err := s.GetByID(ctx, id, userID); err != nil {
		return nil, err
	}
	logs, err := s.store.Audit().GetByEntity(ctx, "campaign", id, limit, offset)
	if err != nil {
		return nil, internalError("load campaign events", err)
	}
	return logs, nil
}

// SweepExhausted pauses active campaigns that can no longer pay for a view,
// such as those whose CPV was raised above the remaining budget. It returns
// the number of campaigns paused.
func (s *CampaignService) SweepExhausted(ctx context.Context, batch int) (int, error) {
	candidates, err := s.store.Campaigns().ListExhausted(ctx, batch)
	if err != nil {
		return 0, internalError("list exhausted campaigns", err)
	}

	paused := 0
	for _, cand := range candidates {
		var c *models.Campaign
		err := s.store.WithinTx(ctx, func(tx ports.Store) error {
			locked, err := tx.Campaigns().GetByIDForUpdate(ctx, cand.ID)
			if err != nil {
				return err
			}
			ok, err := pauseIfExhausted(ctx, tx, locked)
			if err != nil || !ok {
				return err
			}
			c = locked
			return nil
		})
		if err != nil {
			s.log.Error("failed to pause exhausted campaign", zap.String("campaign_id", cand.ID.String()), zap.Error(err))
			continue
		}
		if c == nil {
			continue
		}
		paused++
		s.log.Info("campaign paused, budget exhausted",
			zap.String("campaign_id", c.ID.String()),
			zap.Int64("remaining_cents", c.RemainingCents()),
			zap.Int64("cpv_cents", c.CPVCents),
		)
		if s.publisher != nil {
			if err := s.publisher.Publish(ctx, events.StreamCampaign,
				events.CampaignPaused(c.OwnerUserID, c.ID, c.RemainingCents())); err != nil {
				s.log.Warn("failed to publish event", zap.String("type", events.EventCampaignPaused), zap.Error(err))
			}
		}
	}
	return paused, nil
}
