// Package ports declares the persistence contracts the view-to-earn services
// depend on. The Postgres store and the in-memory store both implement them.
package ports

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/viewearn/backend/internal/models"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrAlreadySettled     = errors.New("view already settled")
	ErrInsufficientBudget = errors.New("insufficient budget")
)

// CampaignRepository covers campaigns and the posts promoted under them.
type CampaignRepository interface {
	Create(ctx context.Context, c *models.Campaign) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error)
	// GetByIDForUpdate locks the campaign row until the surrounding
	// transaction ends.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Campaign, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]models.Campaign, error)
	// ListExhausted returns active campaigns whose remaining budget is below
	// one CPV.
	ListExhausted(ctx context.Context, limit int) ([]models.Campaign, error)
	GetPost(ctx context.Context, id uuid.UUID) (*models.Post, error)

	// DebitView charges cpvCents and counts an impression only if the
	// campaign is active, still priced at cpvCents, and has at least
	// cpvCents remaining. Otherwise it returns ErrInsufficientBudget and
	// changes nothing.
	DebitView(ctx context.Context, id uuid.UUID, cpvCents int64) (*models.Campaign, error)
	// Pause moves an active campaign to paused; it reports false if the
	// campaign was not active.
	Pause(ctx context.Context, id uuid.UUID) (bool, error)
	// Resume moves a paused campaign back to active if it can pay one view.
	Resume(ctx context.Context, id uuid.UUID) (bool, error)
	UnpromotePosts(ctx context.Context, campaignID uuid.UUID) (int64, error)
}

// ViewSessionRepository stores pending and settled view sessions.
type ViewSessionRepository interface {
	HasSettled(ctx context.Context, target models.Target, viewerID uuid.UUID) (bool, error)
	CountSettledSince(ctx context.Context, viewerID uuid.UUID, since time.Time) (int, error)
	// UpsertPending inserts a pending session or restarts the timer of the
	// existing pending one for the same target and viewer. It returns
	// ErrAlreadySettled if that pair is already settled.
	UpsertPending(ctx context.Context, s *models.ViewSession) error
	// GetPending only matches a session that belongs to viewerID and is
	// still pending.
	GetPending(ctx context.Context, id, viewerID uuid.UUID) (*models.ViewSession, error)
	// MarkSettled flips a pending session to settled. It returns
	// ErrNotFound when the session is not pending for viewerID at write
	// time, so two racing settlements cannot both succeed.
	MarkSettled(ctx context.Context, id, viewerID uuid.UUID, earnedCents, dwellSeconds int64, settledAt time.Time) error
	DeleteStalePending(ctx context.Context, startedBefore time.Time) (int64, error)
}

// LedgerRepository covers user balances and earning rows.
type LedgerRepository interface {
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	// CreditBalance adds cents to the user's balance and returns the new
	// balance.
	CreditBalance(ctx context.Context, userID uuid.UUID, cents int64) (int64, error)
	InsertEarning(ctx context.Context, e *models.Earning) error
	ListEarnings(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Earning, error)
}

type AuditRepository interface {
	Log(ctx context.Context, entry models.AuditLog) error
	GetByEntity(ctx context.Context, entityType string, entityID uuid.UUID, limit, offset int) ([]models.AuditLog, error)
}

// Store hands out repositories bound to one connection or transaction.
type Store interface {
	Campaigns() CampaignRepository
	Sessions() ViewSessionRepository
	Ledger() LedgerRepository
	Audit() AuditRepository
	// WithinTx runs fn against repositories bound to a single transaction.
	// The transaction commits if fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}
