package repository

import (
	"context"

	"github.com/lk2023060901/coinbot/app/economy/internal/dao"
	"github.com/lk2023060901/coinbot/app/economy/internal/model"
	"github.com/lk2023060901/coinbot/pkg/database/postgres"
	"github.com/lk2023060901/coinbot/pkg/logger"
)

// economyRepositoryImpl 基于 PostgreSQL 的仓储实现
type economyRepositoryImpl struct {
	db         *postgres.Client
	accountDAO *dao.AccountDAO
	itemDAO    *dao.ItemDAO
	rewardDAO  *dao.RewardDAO
	ledgerDAO  *dao.LedgerDAO
	logger     logger.Logger
}

// NewEconomyRepository 创建 PostgreSQL 仓储
func NewEconomyRepository(
	db *postgres.Client,
	accountDAO *dao.AccountDAO,
	itemDAO *dao.ItemDAO,
	rewardDAO *dao.RewardDAO,
	ledgerDAO *dao.LedgerDAO,
	l logger.Logger,
) EconomyRepository {
	return &economyRepositoryImpl{
		db:         db,
		accountDAO: accountDAO,
		itemDAO:    itemDAO,
		rewardDAO:  rewardDAO,
		ledgerDAO:  ledgerDAO,
		logger:     l.Named("repository.economy"),
	}
}

func (r *economyRepositoryImpl) RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	return r.db.WithTx(ctx, func(ctx context.Context, tx postgres.Tx) error {
		return fn(ctx, &pgTx{
			accounts: r.accountDAO.WithTx(tx),
			items:    r.itemDAO.WithTx(tx),
			rewards:  r.rewardDAO.WithTx(tx),
			ledger:   r.ledgerDAO.WithTx(tx),
		})
	})
}

func (r *economyRepositoryImpl) ListItems(ctx context.Context) ([]*model.ShopItem, error) {
	return r.itemDAO.List(ctx)
}

func (r *economyRepositoryImpl) ListRewards(ctx context.Context) ([]*model.GachaReward, error) {
	return r.rewardDAO.List(ctx)
}

func (r *economyRepositoryImpl) ListInventory(ctx context.Context, userID uint64) ([]*model.InventoryEntry, error) {
	return r.ledgerDAO.ListInventory(ctx, userID)
}

func (r *economyRepositoryImpl) ListRewardGrants(ctx context.Context, userID uint64) ([]*model.RewardGrant, error) {
	return r.ledgerDAO.ListRewardGrants(ctx, userID)
}

func (r *economyRepositoryImpl) TopBalances(ctx context.Context, limit int) ([]*model.LeaderboardEntry, error) {
	return r.accountDAO.Top(ctx, limit)
}

// pgTx 绑定到同一事务的 DAO 集合
type pgTx struct {
	accounts *dao.AccountDAO
	items    *dao.ItemDAO
	rewards  *dao.RewardDAO
	ledger   *dao.LedgerDAO
}

func (t *pgTx) LockAccount(ctx context.Context, userID uint64, starting int64) (*model.Account, bool, error) {
	return t.accounts.EnsureAndLock(ctx, userID, starting)
}

func (t *pgTx) SaveAccount(ctx context.Context, acc *model.Account) error {
	return t.accounts.Update(ctx, acc)
}

func (t *pgTx) LockItem(ctx context.Context, itemID int64) (*model.ShopItem, error) {
	return t.items.Lock(ctx, itemID)
}

func (t *pgTx) UpdateItemStock(ctx context.Context, itemID, stock int64) error {
	return t.items.UpdateStock(ctx, itemID, stock)
}

func (t *pgTx) InsertItem(ctx context.Context, item *model.ShopItem) error {
	return t.items.Insert(ctx, item)
}

func (t *pgTx) DeleteItem(ctx context.Context, itemID int64) (bool, error) {
	return t.items.Delete(ctx, itemID)
}

func (t *pgTx) ListRewards(ctx context.Context) ([]*model.GachaReward, error) {
	return t.rewards.List(ctx)
}

func (t *pgTx) InsertReward(ctx context.Context, reward *model.GachaReward) error {
	return t.rewards.Insert(ctx, reward)
}

func (t *pgTx) DeleteReward(ctx context.Context, rewardID int64) (bool, error) {
	return t.rewards.Delete(ctx, rewardID)
}

func (t *pgTx) AppendInventory(ctx context.Context, entry *model.InventoryEntry) error {
	return t.ledger.AppendInventory(ctx, entry)
}

func (t *pgTx) AppendRewardGrant(ctx context.Context, grant *model.RewardGrant) error {
	return t.ledger.AppendRewardGrant(ctx, grant)
}

func (t *pgTx) HasRewardGrant(ctx context.Context, userID uint64, roleRef string) (bool, error) {
	return t.ledger.HasRewardGrant(ctx, userID, roleRef)
}
