package dao

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lk2023060901/coinbot/app/economy/internal/metrics"
	"github.com/lk2023060901/coinbot/app/economy/internal/model"
	"github.com/lk2023060901/coinbot/pkg/database/postgres"
	"github.com/lk2023060901/coinbot/pkg/logger"
)

// LedgerDAO 背包与奖励流水（仅追加）
type LedgerDAO struct {
	db      postgres.Querier
	logger  logger.Logger
	metrics *metrics.EconomyMetrics
}

// NewLedgerDAO 创建流水 DAO
func NewLedgerDAO(db *postgres.Client, l logger.Logger, m *metrics.EconomyMetrics) *LedgerDAO {
	return &LedgerDAO{
		db:      db,
		logger:  l.Named("dao.ledger"),
		metrics: m,
	}
}

// WithTx 返回绑定到事务的副本
func (d *LedgerDAO) WithTx(q postgres.Querier) *LedgerDAO {
	c := *d
	c.db = q
	return &c
}

// AppendInventory 追加背包条目
func (d *LedgerDAO) AppendInventory(ctx context.Context, e *model.InventoryEntry) (err error) {
	defer observe(d.metrics, "insert", time.Now(), &err)

	query, args, err := psql.
		Insert("account_inventory").
		Columns("entry_id", "user_id", "item_id", "label", "acquired_at").
		Values(e.EntryID, int64(e.UserID), e.ItemID, e.Label, e.AcquiredAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	if _, err := d.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to append inventory: %w", err)
	}
	return nil
}

// AppendRewardGrant 追加奖励记录
func (d *LedgerDAO) AppendRewardGrant(ctx context.Context, g *model.RewardGrant) (err error) {
	defer observe(d.metrics, "insert", time.Now(), &err)

	query, args, err := psql.
		Insert("account_reward_grants").
		Columns("entry_id", "user_id", "reward_id", "role_ref", "reward_name", "rarity", "granted_at").
		Values(g.EntryID, int64(g.UserID), g.RewardID, g.RoleRef, g.RewardName, string(g.Rarity), g.GrantedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}
	if _, err := d.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to append reward grant: %w", err)
	}
	return nil
}

// HasRewardGrant 账户是否已持有该外部角色
func (d *LedgerDAO) HasRewardGrant(ctx context.Context, userID uint64, roleRef string) (found bool, err error) {
	defer observe(d.metrics, "select", time.Now(), &err)

	query, args, err := psql.
		Select("1").
		Prefix("SELECT EXISTS(").
		From("account_reward_grants").
		Where(squirrel.Eq{"user_id": int64(userID), "role_ref": roleRef}).
		Suffix(")").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build query: %w", err)
	}
	return postgres.Exists(ctx, d.db, query, args...)
}

// ListInventory 按获得顺序列出背包
func (d *LedgerDAO) ListInventory(ctx context.Context, userID uint64) (list []*model.InventoryEntry, err error) {
	defer observe(d.metrics, "select", time.Now(), &err)

	query, args, err := psql.
		Select("entry_id", "user_id", "item_id", "label", "acquired_at").
		From("account_inventory").
		Where(squirrel.Eq{"user_id": int64(userID)}).
		OrderBy("entry_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	list, err = postgres.QueryAll[model.InventoryEntry](ctx, d.db, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	return list, nil
}

// ListRewardGrants 按获得顺序列出奖励
func (d *LedgerDAO) ListRewardGrants(ctx context.Context, userID uint64) (list []*model.RewardGrant, err error) {
	defer observe(d.metrics, "select", time.Now(), &err)

	query, args, err := psql.
		Select("entry_id", "user_id", "reward_id", "role_ref", "reward_name", "rarity", "granted_at").
		From("account_reward_grants").
		Where(squirrel.Eq{"user_id": int64(userID)}).
		OrderBy("entry_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	list, err = postgres.QueryAll[model.RewardGrant](ctx, d.db, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reward grants: %w", err)
	}
	return list, nil
}
