package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exchange-form-service/internal/domain/model"
	"exchange-form-service/pkg/logger"
)

func newTestRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}

	prefix := "test:" + uuid.NewString() + ":"
	s := NewRedisStore(addr, os.Getenv("REDIS_PASSWORD"), 0, prefix, logger.NewNop())
	require.NoError(t, s.Ping(context.Background()))
	t.Cleanup(func() {
		ctx := context.Background()
		_ = s.client.Del(ctx, s.key(rateStateKey), s.key(balancesKey)).Err()
		_ = s.Close()
	})
	return s
}

func TestRedisStore_RateState(t *testing.T) {
	s := newTestRedisStore(t)
	ctx := context.Background()

	state, err := s.LoadRateState(ctx)
	require.NoError(t, err)
	assert.Nil(t, state.Table)

	saved := model.RateState{
		Table:     &model.RateTable{Base: "USD", Rates: map[model.Currency]float64{"EUR": 0.9}},
		UpdatedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Error:     "timeout",
	}
	require.NoError(t, s.SaveRateState(ctx, saved))

	state, err = s.LoadRateState(ctx)
	require.NoError(t, err)
	assert.Equal(t, saved.Table, state.Table)
	assert.True(t, saved.UpdatedAt.Equal(state.UpdatedAt))
	assert.Equal(t, "timeout", state.Error)
}

func TestRedisStore_Balances(t *testing.T) {
	s := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, s.Seed(ctx, model.Balances{"USD": 100}))
	require.NoError(t, s.Seed(ctx, model.Balances{"USD": 5, "EUR": 1}))

	balances, err := s.Balances(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.Balances{"USD": 100, "EUR": 1}, balances)

	require.NoError(t, s.ApplyDeltas(ctx, model.Balances{"USD": -10.5, "EUR": 9}))

	balances, err = s.Balances(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 89.5, balances.Of("USD"), 1e-9)
	assert.InDelta(t, 10.0, balances.Of("EUR"), 1e-9)
}
