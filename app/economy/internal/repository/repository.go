package repository

import (
	"context"

	"github.com/lk2023060901/coinbot/app/economy/internal/model"
)

// EconomyRepository 经济数据仓储
//
// 所有修改都在 RunInTx 的事务内完成；账户行在事务内被锁定，
// 同一用户的并发操作在存储层串行化。
type EconomyRepository interface {
	// RunInTx 以单个事务执行 fn，fn 返回错误时整体回滚
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	// ===== 只读查询 =====
	ListItems(ctx context.Context) ([]*model.ShopItem, error)
	ListRewards(ctx context.Context) ([]*model.GachaReward, error)
	ListInventory(ctx context.Context, userID uint64) ([]*model.InventoryEntry, error)
	ListRewardGrants(ctx context.Context, userID uint64) ([]*model.RewardGrant, error)
	TopBalances(ctx context.Context, limit int) ([]*model.LeaderboardEntry, error)
}

// Tx 事务内可用的操作
type Tx interface {
	// ===== 账户 =====
	// LockAccount 锁定账户，不存在时以 starting 余额创建，created 表示本次新建
	LockAccount(ctx context.Context, userID uint64, starting int64) (acc *model.Account, created bool, err error)
	SaveAccount(ctx context.Context, acc *model.Account) error

	// ===== 商店 =====
	// LockItem 锁定商品，不存在时返回 nil
	LockItem(ctx context.Context, itemID int64) (*model.ShopItem, error)
	UpdateItemStock(ctx context.Context, itemID, stock int64) error
	// InsertItem 写入商品并回填 ID
	InsertItem(ctx context.Context, item *model.ShopItem) error
	DeleteItem(ctx context.Context, itemID int64) (bool, error)

	// ===== 奖池 =====
	ListRewards(ctx context.Context) ([]*model.GachaReward, error)
	// InsertReward 写入奖池条目并回填 ID，role_ref 冲突时返回 ErrDuplicateReward
	InsertReward(ctx context.Context, reward *model.GachaReward) error
	DeleteReward(ctx context.Context, rewardID int64) (bool, error)

	// ===== 日志 =====
	AppendInventory(ctx context.Context, entry *model.InventoryEntry) error
	AppendRewardGrant(ctx context.Context, grant *model.RewardGrant) error
	HasRewardGrant(ctx context.Context, userID uint64, roleRef string) (bool, error)
}
