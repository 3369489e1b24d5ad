package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/lk2023060901/coinbot/app/economy/internal/model"
	"github.com/lk2023060901/coinbot/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_LockAccountCreatesOnce(t *testing.T) {
	repo := NewMemoryRepository(logger.NewNoop())
	ctx := context.Background()

	err := repo.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		acc, created, err := tx.LockAccount(ctx, 7, 1000)
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, int64(1000), acc.Balance)
		return nil
	})
	require.NoError(t, err)

	err = repo.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		acc, created, err := tx.LockAccount(ctx, 7, 5)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, int64(1000), acc.Balance)
		return nil
	})
	require.NoError(t, err)
}

func TestMemoryRepository_RollbackOnError(t *testing.T) {
	repo := NewMemoryRepository(logger.NewNoop())
	ctx := context.Background()
	boom := errors.New("boom")

	err := repo.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		acc, _, err := tx.LockAccount(ctx, 1, 1000)
		require.NoError(t, err)
		acc.Balance = 1
		require.NoError(t, tx.SaveAccount(ctx, acc))
		require.NoError(t, tx.InsertItem(ctx, &model.ShopItem{Name: "cake", Price: 10, Stock: -1}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	items, err := repo.ListItems(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	top, err := repo.TopBalances(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, top)
}

func TestMemoryRepository_DuplicateReward(t *testing.T) {
	repo := NewMemoryRepository(logger.NewNoop())
	ctx := context.Background()

	err := repo.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		require.NoError(t, tx.InsertReward(ctx, &model.GachaReward{RoleRef: "r1", Weight: 10}))
		return tx.InsertReward(ctx, &model.GachaReward{RoleRef: "r1", Weight: 20})
	})
	require.ErrorIs(t, err, model.ErrDuplicateReward)
}

func TestMemoryRepository_TopBalances(t *testing.T) {
	repo := NewMemoryRepository(logger.NewNoop())
	ctx := context.Background()

	balances := map[uint64]int64{5: 300, 2: 300, 9: 0, 4: 1200, 1: 50}
	err := repo.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		for id, bal := range balances {
			acc, _, err := tx.LockAccount(ctx, id, 1000)
			if err != nil {
				return err
			}
			acc.Balance = bal
			if err := tx.SaveAccount(ctx, acc); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	top, err := repo.TopBalances(ctx, 3)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, []uint64{4, 2, 5}, []uint64{top[0].UserID, top[1].UserID, top[2].UserID})

	all, err := repo.TopBalances(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}
