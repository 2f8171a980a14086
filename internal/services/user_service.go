package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/viewearn/backend/internal/models"
	"github.com/viewearn/backend/internal/ports"
)

type UserService struct {
	ledger ports.LedgerRepository
}

func NewUserService(ledger ports.LedgerRepository) *UserService {
	return &UserService{ledger: ledger}
}

func (s *UserService) GetMe(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	u, err := s.ledger.GetUser(ctx, userID)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, newError(KindNotFound, "user not found")
	}
	if err != nil {
		return nil, internalError("load user", err)
	}
	return u, nil
}

// Earnings lists the user's earning rows, newest first.
func (s *UserService) Earnings(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Earning, error) {
	list, err := s.ledger.ListEarnings(ctx, userID, limit, offset)
	if err != nil {
		return nil, internalError("list earnings", err)
	}
	return list, nil
}
