package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"aquascope/internal/metrics"
	"aquascope/internal/model"
	"aquascope/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestSweepExpiresConsumables(t *testing.T) {
	s, err := store.Open(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	ctx := context.Background()

	u := &model.User{Email: "a@example.com", Username: "tester", HashedPassword: "x"}
	require.NoError(t, s.CreateUser(ctx, u))
	tank := &model.Tank{UserID: u.ID, Name: "Reef", WaterType: model.WaterSaltwater}
	require.NoError(t, s.CreateTank(ctx, tank))

	past := model.DateOf(time.Now().AddDate(0, 0, -10))
	future := model.DateOf(time.Now().AddDate(0, 0, 30))
	old := &model.Consumable{
		TankID: tank.ID, UserID: u.ID, Name: "Old food",
		ConsumableType: "food", ExpirationDate: &past,
	}
	fresh := &model.Consumable{
		TankID: tank.ID, UserID: u.ID, Name: "Fresh food",
		ConsumableType: "food", ExpirationDate: &future,
	}
	require.NoError(t, s.CreateConsumable(ctx, old))
	require.NoError(t, s.CreateConsumable(ctx, fresh))

	sched, err := New(s, metrics.New(), zap.NewNop(), "0 3 * * *")
	require.NoError(t, err)
	require.NoError(t, sched.Sweep(ctx))

	gotOld, err := s.ConsumableForUser(ctx, u.ID, old.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ConsumableExpired, gotOld.Status)

	gotFresh, err := s.ConsumableForUser(ctx, u.ID, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ConsumableActive, gotFresh.Status)
}

func TestNewRejectsBadSpec(t *testing.T) {
	s, err := store.Open(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	_, err = New(s, nil, zap.NewNop(), "not a cron spec")
	assert.Error(t, err)
}
