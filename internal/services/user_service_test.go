package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viewearn/backend/internal/models"
)

func TestUserServiceAfterSettlement(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10000, 0, 100)
	users := NewUserService(f.store.Ledger())

	start, err := f.svc.Start(ctx, f.viewer.ID, models.PostTarget(f.post.ID))
	require.NoError(t, err)
	f.clock.Advance(35 * time.Second)
	_, err = f.svc.Complete(ctx, f.viewer.ID, start.ViewID)
	require.NoError(t, err)

	me, err := users.GetMe(ctx, f.viewer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(70), me.BalanceCents)

	list, err := users.Earnings(ctx, f.viewer.ID, 20, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, start.ViewID, list[0].SourceID)

	fees, err := users.Earnings(ctx, f.owner.ID, 20, 0)
	require.NoError(t, err)
	require.Len(t, fees, 1)
	assert.Equal(t, models.EarningSourcePlatformFee, fees[0].Source)
}

func TestUserServiceUnknownUser(t *testing.T) {
	f := newFixture(t, 10000, 0, 100)
	users := NewUserService(f.store.Ledger())

	_, err := users.GetMe(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}
