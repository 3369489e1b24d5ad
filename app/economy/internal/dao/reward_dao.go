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

// RewardDAO 抽卡奖池数据访问对象
type RewardDAO struct {
	db      postgres.Querier
	logger  logger.Logger
	metrics *metrics.EconomyMetrics
}

// NewRewardDAO 创建奖池 DAO
func NewRewardDAO(db *postgres.Client, l logger.Logger, m *metrics.EconomyMetrics) *RewardDAO {
	return &RewardDAO{
		db:      db,
		logger:  l.Named("dao.reward"),
		metrics: m,
	}
}

// WithTx 返回绑定到事务的副本
func (d *RewardDAO) WithTx(q postgres.Querier) *RewardDAO {
	c := *d
	c.db = q
	return &c
}

// List 按 id 顺序列出奖池，抽取时的累加遍历依赖这一顺序
func (d *RewardDAO) List(ctx context.Context) (list []*model.GachaReward, err error) {
	defer observe(d.metrics, "select", time.Now(), &err)

	query, args, err := psql.
		Select("id", "role_ref", "name", "rarity", "weight", "price", "description", "created_at").
		From("gacha_rewards").
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	list, err = postgres.QueryAll[model.GachaReward](ctx, d.db, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list gacha rewards: %w", err)
	}
	return list, nil
}

// Insert 写入奖池条目，role_ref 唯一约束冲突时返回 DuplicateReward
func (d *RewardDAO) Insert(ctx context.Context, r *model.GachaReward) (err error) {
	defer observe(d.metrics, "insert", time.Now(), &err)

	query, args, err := psql.
		Insert("gacha_rewards").
		Columns("role_ref", "name", "rarity", "weight", "price", "description").
		Values(r.RoleRef, r.Name, string(r.Rarity), r.Weight, r.Price, r.Description).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	if err := d.db.QueryRow(ctx, query, args...).Scan(&r.ID, &r.CreatedAt); err != nil {
		if postgres.IsUniqueViolation(err) {
			return model.DuplicateReward(r.RoleRef)
		}
		return fmt.Errorf("failed to insert gacha reward: %w", err)
	}
	return nil
}

// Delete 删除奖池条目，返回是否存在
func (d *RewardDAO) Delete(ctx context.Context, rewardID int64) (found bool, err error) {
	defer observe(d.metrics, "delete", time.Now(), &err)

	query, args, err := psql.Delete("gacha_rewards").Where(squirrel.Eq{"id": rewardID}).ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build query: %w", err)
	}

	n, err := d.db.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to delete gacha reward: %w", err)
	}
	return n > 0, nil
}
