package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lk2023060901/coinbot/app/economy/internal/config"
	"github.com/lk2023060901/coinbot/app/economy/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLeaderboardCache struct {
	list   []*model.LeaderboardEntry
	ok     bool
	getErr error
	sets   int
}

func (c *fakeLeaderboardCache) GetLeaderboard(context.Context) ([]*model.LeaderboardEntry, bool, error) {
	return c.list, c.ok, c.getErr
}

func (c *fakeLeaderboardCache) SetLeaderboard(_ context.Context, list []*model.LeaderboardEntry, _ time.Duration) error {
	c.list, c.ok = list, true
	c.sets++
	return nil
}

func seedBalances(t *testing.T, env *testEnv, balances map[uint64]int64) {
	t.Helper()
	for id, bal := range balances {
		_, err := env.ledger().SetBalance(context.Background(), admin, id, bal)
		require.NoError(t, err)
	}
}

func TestLeaderboard_Order(t *testing.T) {
	env := newTestEnv(t, func(c *config.EconomyConfig) { c.Leaderboard.Size = 3 })
	seedBalances(t, env, map[uint64]int64{10: 500, 11: 900, 12: 500, 13: 0, 14: 100})

	top, err := NewLeaderboardService(env.log, env.deps, nil).Top(context.Background())
	require.NoError(t, err)
	require.Len(t, top, 3)

	assert.Equal(t, uint64(11), top[0].UserID)
	assert.Equal(t, uint64(10), top[1].UserID)
	assert.Equal(t, uint64(12), top[2].UserID)
	for i, e := range top {
		assert.Equal(t, i+1, e.Rank)
	}
}

func TestLeaderboard_ExcludesEmptyAccounts(t *testing.T) {
	env := newTestEnv(t)
	seedBalances(t, env, map[uint64]int64{10: 0, 11: 0})

	top, err := NewLeaderboardService(env.log, env.deps, nil).Top(context.Background())
	require.NoError(t, err)
	assert.Empty(t, top)
}

func TestLeaderboard_Cache(t *testing.T) {
	env := newTestEnv(t)
	seedBalances(t, env, map[uint64]int64{10: 500})
	cache := &fakeLeaderboardCache{}
	svc := NewLeaderboardService(env.log, env.deps, cache)
	ctx := context.Background()

	_, err := svc.Top(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	// 缓存期间的余额变化不可见
	seedBalances(t, env, map[uint64]int64{11: 9000})
	top, err := svc.Top(ctx)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, uint64(10), top[0].UserID)
	assert.Equal(t, 1, cache.sets)
}

func TestLeaderboard_CacheFailureFallsBack(t *testing.T) {
	env := newTestEnv(t)
	seedBalances(t, env, map[uint64]int64{10: 500})
	cache := &fakeLeaderboardCache{getErr: errors.New("redis down")}

	top, err := NewLeaderboardService(env.log, env.deps, cache).Top(context.Background())
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, int64(500), top[0].Balance)
}
