package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/viewearn/backend/internal/models"
)

// LedgerRepo owns user balances and the earnings trail.
type LedgerRepo struct {
	db DBTX
}

func NewLedgerRepo(db DBTX) *LedgerRepo {
	return &LedgerRepo{db: db}
}

func (r *LedgerRepo) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	err := r.db.QueryRow(ctx, `
		SELECT id, username, balance_cents, created_at FROM users WHERE id = $1
	`, id).Scan(&u.ID, &u.Username, &u.BalanceCents, &u.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *LedgerRepo) CreditBalance(ctx context.Context, userID uuid.UUID, cents int64) (int64, error) {
	var balance int64
	err := r.db.QueryRow(ctx, `
		UPDATE users SET balance_cents = balance_cents + $2 WHERE id = $1
		RETURNING balance_cents
	`, userID, cents).Scan(&balance)
	if err != nil {
		return 0, notFound(err)
	}
	return balance, nil
}

func (r *LedgerRepo) InsertEarning(ctx context.Context, e *models.Earning) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO earnings (user_id, amount_cents, source, source_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, e.UserID, e.AmountCents, e.Source, e.SourceID).Scan(&e.ID, &e.CreatedAt)
}

func (r *LedgerRepo) ListEarnings(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Earning, error) {
	limit, offset = clampPage(limit, offset)
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, amount_cents, source, source_id, created_at
		FROM earnings WHERE user_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Earning, error) {
		var e models.Earning
		err := row.Scan(&e.ID, &e.UserID, &e.AmountCents, &e.Source, &e.SourceID, &e.CreatedAt)
		return e, err
	})
}
