package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lk2023060901/coinbot/app/economy/internal/metrics"
	"github.com/lk2023060901/coinbot/app/economy/internal/model"
	"github.com/lk2023060901/coinbot/pkg/database/postgres"
	"github.com/lk2023060901/coinbot/pkg/logger"
)

var itemColumns = []string{"id", "name", "emoji", "price", "description", "stock", "created_at"}

// ItemDAO 商店商品数据访问对象
type ItemDAO struct {
	db      postgres.Querier
	logger  logger.Logger
	metrics *metrics.EconomyMetrics
}

// NewItemDAO 创建商品 DAO
func NewItemDAO(db *postgres.Client, l logger.Logger, m *metrics.EconomyMetrics) *ItemDAO {
	return &ItemDAO{
		db:      db,
		logger:  l.Named("dao.item"),
		metrics: m,
	}
}

// WithTx 返回绑定到事务的副本
func (d *ItemDAO) WithTx(q postgres.Querier) *ItemDAO {
	c := *d
	c.db = q
	return &c
}

// List 按 id（即创建顺序）列出全部商品
func (d *ItemDAO) List(ctx context.Context) (list []*model.ShopItem, err error) {
	defer observe(d.metrics, "select", time.Now(), &err)

	query, args, err := psql.Select(itemColumns...).From("shop_items").OrderBy("id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}
	list, err = postgres.QueryAll[model.ShopItem](ctx, d.db, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list shop items: %w", err)
	}
	return list, nil
}

// Lock 以 FOR UPDATE 读取商品，不存在时返回 nil
func (d *ItemDAO) Lock(ctx context.Context, itemID int64) (item *model.ShopItem, err error) {
	defer observe(d.metrics, "select", time.Now(), &err)

	query, args, err := psql.
		Select(itemColumns...).
		From("shop_items").
		Where(squirrel.Eq{"id": itemID}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	item, err = postgres.QueryOne[model.ShopItem](ctx, d.db, query, args...)
	if errors.Is(err, postgres.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock shop item: %w", err)
	}
	return item, nil
}

// UpdateStock 更新库存
func (d *ItemDAO) UpdateStock(ctx context.Context, itemID, stock int64) (err error) {
	defer observe(d.metrics, "update", time.Now(), &err)

	query, args, err := psql.
		Update("shop_items").
		Set("stock", stock).
		Where(squirrel.Eq{"id": itemID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	n, err := d.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update stock: %w", err)
	}
	if n == 0 {
		return model.ItemNotFound(itemID)
	}
	return nil
}

// Insert 写入商品并回填 id 与创建时间
func (d *ItemDAO) Insert(ctx context.Context, item *model.ShopItem) (err error) {
	defer observe(d.metrics, "insert", time.Now(), &err)

	query, args, err := psql.
		Insert("shop_items").
		Columns("name", "emoji", "price", "description", "stock").
		Values(item.Name, item.Emoji, item.Price, item.Description, item.Stock).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	if err := d.db.QueryRow(ctx, query, args...).Scan(&item.ID, &item.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert shop item: %w", err)
	}
	return nil
}

// Delete 删除商品，返回是否存在
func (d *ItemDAO) Delete(ctx context.Context, itemID int64) (found bool, err error) {
	defer observe(d.metrics, "delete", time.Now(), &err)

	query, args, err := psql.Delete("shop_items").Where(squirrel.Eq{"id": itemID}).ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build query: %w", err)
	}

	n, err := d.db.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to delete shop item: %w", err)
	}
	return n > 0, nil
}
