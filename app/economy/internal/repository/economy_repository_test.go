package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/lk2023060901/coinbot/app/economy/internal/dao"
	"github.com/lk2023060901/coinbot/app/economy/internal/metrics"
	"github.com/lk2023060901/coinbot/app/economy/internal/migrate"
	"github.com/lk2023060901/coinbot/app/economy/internal/model"
	"github.com/lk2023060901/coinbot/pkg/database/postgres"
	"github.com/lk2023060901/coinbot/pkg/logger"
	"github.com/lk2023060901/coinbot/pkg/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testPostgres 需要设置 COINBOT_TEST_POSTGRES_HOST 才会连接真实数据库
func testPostgres(t *testing.T) EconomyRepository {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	host := os.Getenv("COINBOT_TEST_POSTGRES_HOST")
	if host == "" {
		t.Skip("COINBOT_TEST_POSTGRES_HOST not set")
	}

	cfg := postgres.DefaultConfig()
	cfg.Host = host
	if v := os.Getenv("COINBOT_TEST_POSTGRES_USER"); v != "" {
		cfg.User = v
	}
	cfg.Password = os.Getenv("COINBOT_TEST_POSTGRES_PASSWORD")
	if v := os.Getenv("COINBOT_TEST_POSTGRES_DB"); v != "" {
		cfg.DBName = v
	}

	db, err := postgres.New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	l := logger.NewNoop()
	_, err = migrate.Up(context.Background(), nil, db.Config().DSN(), l)
	if err != nil && !errors.Is(err, model.ErrMigrationSkipped) {
		require.NoError(t, err)
	}

	client, err := prometheus.New(&prometheus.Config{Namespace: "repo_test"})
	require.NoError(t, err)
	m, err := metrics.New(client)
	require.NoError(t, err)

	return NewEconomyRepository(db,
		dao.NewAccountDAO(db, l, m),
		dao.NewItemDAO(db, l, m),
		dao.NewRewardDAO(db, l, m),
		dao.NewLedgerDAO(db, l, m),
		l,
	)
}

// uniqueUser 避免与其他测试或历史数据冲突
func uniqueUser() uint64 {
	return uint64(time.Now().UnixNano())
}

func TestEconomyRepository_AccountRoundTrip(t *testing.T) {
	repo := testPostgres(t)
	ctx := context.Background()
	uid := uniqueUser()
	today := model.DateOf(time.Now())

	err := repo.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		acc, created, err := tx.LockAccount(ctx, uid, 1000)
		require.NoError(t, err)
		assert.True(t, created)
		acc.Balance = 1500
		acc.LastDailyClaim = &today
		acc.DailyStreak = 1
		return tx.SaveAccount(ctx, acc)
	})
	require.NoError(t, err)

	err = repo.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		acc, created, err := tx.LockAccount(ctx, uid, 1000)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, int64(1500), acc.Balance)
		require.NotNil(t, acc.LastDailyClaim)
		assert.Equal(t, today, *acc.LastDailyClaim)
		assert.Equal(t, 1, acc.DailyStreak)
		return nil
	})
	require.NoError(t, err)
}

func TestEconomyRepository_RollbackOnError(t *testing.T) {
	repo := testPostgres(t)
	ctx := context.Background()
	uid := uniqueUser()
	boom := errors.New("boom")

	err := repo.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		acc, _, err := tx.LockAccount(ctx, uid, 1000)
		require.NoError(t, err)
		acc.Balance = 1
		require.NoError(t, tx.SaveAccount(ctx, acc))
		return boom
	})
	require.ErrorIs(t, err, boom)

	err = repo.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		_, created, err := tx.LockAccount(ctx, uid, 1000)
		require.NoError(t, err)
		assert.True(t, created, "account insert must be rolled back")
		return nil
	})
	require.NoError(t, err)
}

func TestEconomyRepository_CatalogAndLogs(t *testing.T) {
	repo := testPostgres(t)
	ctx := context.Background()
	uid := uniqueUser()
	ref := "role-" + strconv.FormatUint(uid, 10)

	item := &model.ShopItem{Name: "cake", Emoji: "🍰", Price: 50, Stock: 2}
	reward := &model.GachaReward{RoleRef: ref, Name: "Golden", Rarity: model.RarityEpic, Weight: 12.5}

	err := repo.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		require.NoError(t, tx.InsertItem(ctx, item))
		require.NoError(t, tx.InsertReward(ctx, reward))
		return nil
	})
	require.NoError(t, err)
	require.NotZero(t, item.ID)
	require.NotZero(t, reward.ID)
	t.Cleanup(func() {
		_ = repo.RunInTx(context.Background(), func(ctx context.Context, tx Tx) error {
			_, _ = tx.DeleteItem(ctx, item.ID)
			_, _ = tx.DeleteReward(ctx, reward.ID)
			return nil
		})
	})

	err = repo.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		return tx.InsertReward(ctx, &model.GachaReward{RoleRef: ref, Name: "again", Weight: 1})
	})
	assert.ErrorIs(t, err, model.ErrDuplicateReward)

	err = repo.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		if _, _, err := tx.LockAccount(ctx, uid, 1000); err != nil {
			return err
		}
		locked, err := tx.LockItem(ctx, item.ID)
		require.NoError(t, err)
		require.NotNil(t, locked)
		require.NoError(t, tx.UpdateItemStock(ctx, item.ID, locked.Stock-1))
		for i := range 2 {
			require.NoError(t, tx.AppendInventory(ctx, &model.InventoryEntry{
				EntryID: int64(uid%1_000_000)*10 + int64(i),
				UserID:  uid,
				ItemID:  item.ID,
				Label:   fmt.Sprintf("%s %s", item.Emoji, item.Name),
			}))
		}
		return tx.AppendRewardGrant(ctx, &model.RewardGrant{
			EntryID:    int64(uid%1_000_000)*10 + 9,
			UserID:     uid,
			RewardID:   reward.ID,
			RoleRef:    ref,
			RewardName: reward.Name,
			Rarity:     reward.Rarity,
		})
	})
	require.NoError(t, err)

	inv, err := repo.ListInventory(ctx, uid)
	require.NoError(t, err)
	require.Len(t, inv, 2)
	assert.Equal(t, "🍰 cake", inv[0].Label)

	err = repo.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
		has, err := tx.HasRewardGrant(ctx, uid, ref)
		require.NoError(t, err)
		assert.True(t, has)
		locked, err := tx.LockItem(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), locked.Stock)
		return nil
	})
	require.NoError(t, err)

	missing, err := func() (*model.ShopItem, error) {
		var got *model.ShopItem
		err := repo.RunInTx(ctx, func(ctx context.Context, tx Tx) error {
			var err error
			got, err = tx.LockItem(ctx, -1)
			return err
		})
		return got, err
	}()
	require.NoError(t, err)
	assert.Nil(t, missing)
}
