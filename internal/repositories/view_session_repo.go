package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/viewearn/backend/internal/models"
	"github.com/viewearn/backend/internal/ports"
)

type ViewSessionRepo struct {
	db DBTX
}

func NewViewSessionRepo(db DBTX) *ViewSessionRepo {
	return &ViewSessionRepo{db: db}
}

func (r *ViewSessionRepo) HasSettled(ctx context.Context, target models.Target, viewerID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM view_sessions
			WHERE target_kind = $1 AND subject_id = $2 AND viewer_user_id = $3 AND status = 'settled'
		)
	`, target.Kind, target.ID, viewerID).Scan(&exists)
	return exists, err
}

func (r *ViewSessionRepo) CountSettledSince(ctx context.Context, viewerID uuid.UUID, since time.Time) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `
		SELECT count(*) FROM view_sessions
		WHERE viewer_user_id = $1 AND status = 'settled' AND started_at >= $2
	`, viewerID, since).Scan(&n)
	return n, err
}

// UpsertPending relies on the unique (target_kind, subject_id, viewer_user_id)
// index: the conflict branch only fires for a pending row, so a settled row
// yields no RETURNING row.
func (r *ViewSessionRepo) UpsertPending(ctx context.Context, s *models.ViewSession) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO view_sessions (target_kind, post_id, campaign_id, viewer_user_id, status, started_at, dwell_seconds, earned_cents)
		VALUES ($1, $2, $3, $4, 'pending', $5, 0, 0)
		ON CONFLICT (target_kind, subject_id, viewer_user_id) DO UPDATE
		SET started_at = EXCLUDED.started_at, dwell_seconds = 0, campaign_id = EXCLUDED.campaign_id
		WHERE view_sessions.status = 'pending'
		RETURNING id, started_at
	`, s.TargetKind, s.PostID, s.CampaignID, s.ViewerUserID, s.StartedAt).Scan(&s.ID, &s.StartedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ports.ErrAlreadySettled
	}
	if err != nil {
		return err
	}
	s.Status = models.ViewStatusPending
	s.DwellSeconds = 0
	s.EarnedCents = 0
	return nil
}

func (r *ViewSessionRepo) GetPending(ctx context.Context, id, viewerID uuid.UUID) (*models.ViewSession, error) {
	var s models.ViewSession
	err := r.db.QueryRow(ctx, `
		SELECT id, target_kind, post_id, campaign_id, viewer_user_id, status,
		       started_at, dwell_seconds, earned_cents, settled_at
		FROM view_sessions
		WHERE id = $1 AND viewer_user_id = $2 AND status = 'pending'
	`, id, viewerID).Scan(&s.ID, &s.TargetKind, &s.PostID, &s.CampaignID, &s.ViewerUserID, &s.Status,
		&s.StartedAt, &s.DwellSeconds, &s.EarnedCents, &s.SettledAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

func (r *ViewSessionRepo) MarkSettled(ctx context.Context, id, viewerID uuid.UUID, earnedCents, dwellSeconds int64, settledAt time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE view_sessions
		SET status = 'settled', earned_cents = $3, dwell_seconds = $4, settled_at = $5
		WHERE id = $1 AND viewer_user_id = $2 AND status = 'pending'
	`, id, viewerID, earnedCents, dwellSeconds, settledAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r *ViewSessionRepo) DeleteStalePending(ctx context.Context, startedBefore time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM view_sessions WHERE status = 'pending' AND started_at < $1
	`, startedBefore)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
