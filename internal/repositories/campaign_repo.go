package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/viewearn/backend/internal/models"
	"github.com/viewearn/backend/internal/ports"
)

type CampaignRepo struct {
	db DBTX
}

func NewCampaignRepo(db DBTX) *CampaignRepo {
	return &CampaignRepo{db: db}
}

const campaignColumns = `id, owner_user_id, title, status, ad_type, approval_status,
	budget_cents, spent_cents, cpv_cents, impressions, created_at, updated_at`

func scanCampaign(row pgx.Row) (*models.Campaign, error) {
	var c models.Campaign
	err := row.Scan(&c.ID, &c.OwnerUserID, &c.Title, &c.Status, &c.AdType, &c.ApprovalStatus,
		&c.BudgetCents, &c.SpentCents, &c.CPVCents, &c.Impressions, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r *CampaignRepo) Create(ctx context.Context, c *models.Campaign) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO campaigns (owner_user_id, title, status, ad_type, approval_status, budget_cents, cpv_cents)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, spent_cents, impressions, created_at, updated_at
	`, c.OwnerUserID, c.Title, c.Status, c.AdType, c.ApprovalStatus, c.BudgetCents, c.CPVCents,
	).Scan(&c.ID, &c.SpentCents, &c.Impressions, &c.CreatedAt, &c.UpdatedAt)
}

func (r *CampaignRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	return scanCampaign(r.db.QueryRow(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id = $1`, id))
}

func (r *CampaignRepo) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	return scanCampaign(r.db.QueryRow(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id = $1 FOR UPDATE`, id))
}

func (r *CampaignRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]models.Campaign, error) {
	limit, offset = clampPage(limit, offset)
	rows, err := r.db.Query(ctx, `
		SELECT `+campaignColumns+`
		FROM campaigns WHERE owner_user_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	return collectCampaigns(rows)
}

func (r *CampaignRepo) ListExhausted(ctx context.Context, limit int) ([]models.Campaign, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.Query(ctx, `
		SELECT `+campaignColumns+`
		FROM campaigns
		WHERE status = 'active' AND budget_cents - spent_cents < cpv_cents
		ORDER BY updated_at LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	return collectCampaigns(rows)
}

func collectCampaigns(rows pgx.Rows) ([]models.Campaign, error) {
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Campaign, error) {
		c, err := scanCampaign(row)
		if err != nil {
			return models.Campaign{}, err
		}
		return *c, nil
	})
}

func (r *CampaignRepo) GetPost(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var p models.Post
	err := r.db.QueryRow(ctx, `
		SELECT id, owner_user_id, campaign_id, status, is_promoted, created_at
		FROM posts WHERE id = $1
	`, id).Scan(&p.ID, &p.OwnerUserID, &p.CampaignID, &p.Status, &p.IsPromoted, &p.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *CampaignRepo) DebitView(ctx context.Context, id uuid.UUID, cpvCents int64) (*models.Campaign, error) {
	c, err := scanCampaign(r.db.QueryRow(ctx, `
		UPDATE campaigns
		SET spent_cents = spent_cents + $2, impressions = impressions + 1, updated_at = now()
		WHERE id = $1 AND status = 'active' AND cpv_cents = $2 AND budget_cents - spent_cents >= $2
		RETURNING `+campaignColumns, id, cpvCents))
	if errors.Is(err, ports.ErrNotFound) {
		return nil, ports.ErrInsufficientBudget
	}
	return c, err
}

func (r *CampaignRepo) Pause(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE campaigns SET status = 'paused', updated_at = now()
		WHERE id = $1 AND status = 'active'
	`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *CampaignRepo) Resume(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE campaigns SET status = 'active', updated_at = now()
		WHERE id = $1 AND status = 'paused' AND budget_cents - spent_cents >= cpv_cents
	`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *CampaignRepo) UnpromotePosts(ctx context.Context, campaignID uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE posts SET is_promoted = false
		WHERE campaign_id = $1 AND is_promoted = true
	`, campaignID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
