package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/viewearn/backend/internal/config"
	"github.com/viewearn/backend/internal/events"
	"github.com/viewearn/backend/internal/models"
	"github.com/viewearn/backend/internal/ports"
	"github.com/viewearn/backend/internal/revenue"
	"go.uber.org/zap"
)

// StartResult is returned when a view timer starts. EarnCents is what the
// viewer would earn at the current price.
type StartResult struct {
	ViewID           uuid.UUID
	StartedAt        time.Time
	DurationRequired int
	EarnCents        int64
}

// SettlementResult describes a paid view.
type SettlementResult struct {
	ViewID         uuid.UUID
	CampaignID     uuid.UUID
	EarnedCents    int64
	DwellSeconds   int64
	BalanceCents   int64
	CampaignPaused bool
}

// ViewService runs the two-phase view-to-earn flow: Start opens a timed
// session, Complete verifies dwell time and settles it.
type ViewService struct {
	store      ports.Store
	splitter   revenue.Splitter
	dwell      DwellPolicy
	rateLimit  RateLimitPolicy
	pendingTTL time.Duration
	publisher  events.Publisher
	log        *zap.Logger
	nowFn      func() time.Time
}

func NewViewService(
	store ports.Store,
	publisher events.Publisher,
	cfg *config.Config,
	log *zap.Logger,
) *ViewService {
	return &ViewService{
		store:      store,
		splitter:   revenue.NewSplitter(cfg.PlatformFeeBPS),
		dwell:      dwellPolicyFromConfig(cfg),
		rateLimit:  rateLimitFromConfig(cfg),
		pendingTTL: cfg.PendingSessionTTL,
		publisher:  publisher,
		log:        log,
		nowFn:      time.Now,
	}
}

func (s *ViewService) now() time.Time {
	return s.nowFn().UTC()
}

// Start opens or restarts the viewer's pending session on target.
func (s *ViewService) Start(ctx context.Context, viewerID uuid.UUID, target models.Target) (*StartResult, error) {
	if viewerID == uuid.Nil {
		return nil, ErrUnauthorized
	}
	if target.ID == uuid.Nil {
		return nil, newError(KindValidation, "target id is required")
	}

	vt, err := resolveTarget(ctx, s.store.Campaigns(), target)
	if err != nil {
		return nil, err
	}
	if vt.ownedBy(viewerID) {
		return nil, errSelfView
	}
	if !vt.campaign.CanCoverView() {
		return nil, newError(KindBudgetExhausted, "campaign budget exhausted")
	}

	settled, err := s.store.Sessions().HasSettled(ctx, target, viewerID)
	if err != nil {
		return nil, internalError("check settled view", err)
	}
	if settled {
		return nil, errAlreadyEarned
	}

	now := s.now()
	if err := s.rateLimit.Check(ctx, s.store.Sessions(), viewerID, now); err != nil {
		return nil, err
	}

	earn, _, err := s.splitter.Split(vt.campaign.CPVCents)
	if err != nil {
		return nil, internalError("split cpv", err)
	}

	session := &models.ViewSession{
		TargetKind:   target.Kind,
		CampaignID:   vt.campaign.ID,
		ViewerUserID: viewerID,
		Status:       models.ViewStatusPending,
		StartedAt:    now,
	}
	if target.Kind == models.TargetPost {
		postID := target.ID
		session.PostID = &postID
	}
	if err := s.store.Sessions().UpsertPending(ctx, session); err != nil {
		if errors.Is(err, ports.ErrAlreadySettled) {
			return nil, errAlreadyEarned
		}
		return nil, internalError("start view", err)
	}

	s.log.Debug("view started",
		zap.String("view_id", session.ID.String()),
		zap.String("target", target.String()),
		zap.String("viewer_id", viewerID.String()),
	)

	return &StartResult{
		ViewID:           session.ID,
		StartedAt:        session.StartedAt,
		DurationRequired: s.dwell.RequiredSeconds(),
		EarnCents:        earn,
	}, nil
}

// Complete verifies dwell time on the viewer's pending session and settles
// it. The session stays pending when the dwell check fails.
func (s *ViewService) Complete(ctx context.Context, viewerID, viewID uuid.UUID) (*SettlementResult, error) {
	if viewerID == uuid.Nil {
		return nil, ErrUnauthorized
	}
	if viewID == uuid.Nil {
		return nil, newError(KindValidation, "view id is required")
	}

	session, err := s.store.Sessions().GetPending(ctx, viewID, viewerID)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, errViewNotPending
	}
	if err != nil {
		return nil, internalError("load view", err)
	}

	now := s.now()
	elapsed := now.Sub(session.StartedAt)
	if err := s.dwell.Verify(elapsed); err != nil {
		return nil, err
	}

	res, paused, err := s.settle(ctx, session, elapsed, now)
	if err != nil {
		if KindOf(err) == KindInternal {
			s.log.Error("settlement failed", zap.String("view_id", viewID.String()), zap.Error(err))
		}
		return nil, err
	}

	s.log.Info("view settled",
		zap.String("view_id", res.ViewID.String()),
		zap.String("viewer_id", viewerID.String()),
		zap.String("campaign_id", res.CampaignID.String()),
		zap.Int64("earned_cents", res.EarnedCents),
	)

	s.publish(ctx, events.StreamEarnings,
		events.ViewSettled(viewerID, res.ViewID, res.CampaignID, res.EarnedCents, res.BalanceCents))
	if paused != nil {
		s.publish(ctx, events.StreamCampaign,
			events.CampaignPaused(paused.OwnerUserID, paused.ID, paused.RemainingCents()))
	}
	return res, nil
}

// PurgeStalePending deletes pending sessions older than the configured TTL.
func (s *ViewService) PurgeStalePending(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.pendingTTL)
	n, err := s.store.Sessions().DeleteStalePending(ctx, cutoff)
	if err != nil {
		return 0, internalError("purge pending views", err)
	}
	if n > 0 {
		_ = s.store.Audit().Log(ctx, models.AuditLog{
			ActorType:  models.ActorSystem,
			Action:     models.AuditPendingViewsReaped,
			EntityType: "view_session",
			Meta:       map[string]any{"deleted": n, "started_before": cutoff},
		})
	}
	return n, nil
}

func (s *ViewService) publish(ctx context.Context, stream string, ev events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, stream, ev); err != nil {
		s.log.Warn("failed to publish event", zap.String("type", ev.Type), zap.Error(err))
	}
}
