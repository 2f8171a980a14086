package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viewearn/backend/internal/models"
	"github.com/viewearn/backend/internal/ports"
)

func TestWithinTxRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := New()
	u := s.PutUser(models.User{BalanceCents: 10})

	boom := errors.New("boom")
	err := s.WithinTx(ctx, func(tx ports.Store) error {
		if _, err := tx.Ledger().CreditBalance(ctx, u.ID, 50); err != nil {
			return err
		}
		return boom
	})

	require.ErrorIs(t, err, boom)
	assert.Equal(t, int64(10), s.UserSnapshot(u.ID).BalanceCents)
}

func TestWithinTxCommits(t *testing.T) {
	ctx := context.Background()
	s := New()
	u := s.PutUser(models.User{})

	err := s.WithinTx(ctx, func(tx ports.Store) error {
		_, err := tx.Ledger().CreditBalance(ctx, u.ID, 70)
		return err
	})

	require.NoError(t, err)
	assert.Equal(t, int64(70), s.UserSnapshot(u.ID).BalanceCents)
}

func TestUpsertPendingRestartsAndStopsAtSettled(t *testing.T) {
	ctx := context.Background()
	s := New()
	viewer := uuid.New()
	campaignID := uuid.New()
	t0 := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	first := &models.ViewSession{TargetKind: models.TargetCampaign, CampaignID: campaignID, ViewerUserID: viewer, StartedAt: t0}
	require.NoError(t, s.Sessions().UpsertPending(ctx, first))

	again := &models.ViewSession{TargetKind: models.TargetCampaign, CampaignID: campaignID, ViewerUserID: viewer, StartedAt: t0.Add(time.Minute)}
	require.NoError(t, s.Sessions().UpsertPending(ctx, again))
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, t0.Add(time.Minute), again.StartedAt)

	require.NoError(t, s.Sessions().MarkSettled(ctx, first.ID, viewer, 70, 35, t0.Add(2*time.Minute)))
	err := s.Sessions().MarkSettled(ctx, first.ID, viewer, 70, 35, t0.Add(2*time.Minute))
	assert.ErrorIs(t, err, ports.ErrNotFound)

	err = s.Sessions().UpsertPending(ctx, &models.ViewSession{TargetKind: models.TargetCampaign, CampaignID: campaignID, ViewerUserID: viewer, StartedAt: t0})
	assert.ErrorIs(t, err, ports.ErrAlreadySettled)
	assert.Len(t, s.SessionsFor(models.CampaignTarget(campaignID), viewer), 1)
}

func TestDebitViewRefusesOverdraw(t *testing.T) {
	ctx := context.Background()
	s := New()
	c := s.PutCampaign(models.Campaign{Status: models.CampaignStatusActive, BudgetCents: 150, CPVCents: 100})

	updated, err := s.Campaigns().DebitView(ctx, c.ID, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(100), updated.SpentCents)
	assert.Equal(t, int64(1), updated.Impressions)

	_, err = s.Campaigns().DebitView(ctx, c.ID, 100)
	assert.ErrorIs(t, err, ports.ErrInsufficientBudget)
	assert.Equal(t, int64(100), s.CampaignSnapshot(c.ID).SpentCents)
}

func TestSessionWritesFollowViewTransitions(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		status      string
		wantRestart error
		wantSettle  error
	}{
		{"pending", models.ViewStatusPending, nil, nil},
		{"settled", models.ViewStatusSettled, ports.ErrAlreadySettled, ports.ErrNotFound},
		{"unknown status", "expired", ports.ErrAlreadySettled, ports.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name+" restart", func(t *testing.T) {
			s := New()
			viewer, campaignID := uuid.New(), uuid.New()
			s.PutSession(models.ViewSession{TargetKind: models.TargetCampaign, CampaignID: campaignID, ViewerUserID: viewer, Status: tt.status, StartedAt: t0})

			err := s.Sessions().UpsertPending(context.Background(), &models.ViewSession{
				TargetKind: models.TargetCampaign, CampaignID: campaignID, ViewerUserID: viewer, StartedAt: t0.Add(time.Minute),
			})
			if tt.wantRestart != nil {
				assert.ErrorIs(t, err, tt.wantRestart)
				return
			}
			assert.NoError(t, err)
		})
		t.Run(tt.name+" settle", func(t *testing.T) {
			s := New()
			viewer := uuid.New()
			v := s.PutSession(models.ViewSession{TargetKind: models.TargetCampaign, CampaignID: uuid.New(), ViewerUserID: viewer, Status: tt.status, StartedAt: t0})

			err := s.Sessions().MarkSettled(context.Background(), v.ID, viewer, 70, 35, t0.Add(time.Minute))
			if tt.wantSettle != nil {
				assert.ErrorIs(t, err, tt.wantSettle)
				snap, ok := s.SessionSnapshot(v.ID)
				require.True(t, ok)
				assert.Equal(t, tt.status, snap.Status)
				return
			}
			require.NoError(t, err)
			snap, _ := s.SessionSnapshot(v.ID)
			assert.Equal(t, models.ViewStatusSettled, snap.Status)
		})
	}
}
