package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/lk2023060901/coinbot/app/economy/internal/metrics"
	"github.com/lk2023060901/coinbot/app/economy/internal/model"
	"github.com/lk2023060901/coinbot/pkg/database/postgres"
	"github.com/lk2023060901/coinbot/pkg/logger"
)

var accountColumns = []string{"user_id", "balance", "last_daily_claim", "daily_streak", "created_at", "updated_at"}

// AccountDAO 账户数据访问对象
type AccountDAO struct {
	db      postgres.Querier
	logger  logger.Logger
	metrics *metrics.EconomyMetrics
}

// NewAccountDAO 创建账户 DAO
func NewAccountDAO(db *postgres.Client, l logger.Logger, m *metrics.EconomyMetrics) *AccountDAO {
	return &AccountDAO{
		db:      db,
		logger:  l.Named("dao.account"),
		metrics: m,
	}
}

// WithTx 返回绑定到事务的副本
func (d *AccountDAO) WithTx(q postgres.Querier) *AccountDAO {
	c := *d
	c.db = q
	return &c
}

// EnsureAndLock 不存在时以 starting 余额插入，然后以 FOR UPDATE 锁定
func (d *AccountDAO) EnsureAndLock(ctx context.Context, userID uint64, starting int64) (acc *model.Account, created bool, err error) {
	defer observe(d.metrics, "upsert", time.Now(), &err)

	now := time.Now()
	query, args, err := psql.
		Insert("accounts").
		Columns("user_id", "balance", "daily_streak", "created_at", "updated_at").
		Values(int64(userID), starting, 0, now, now).
		Suffix("ON CONFLICT (user_id) DO NOTHING").
		ToSql()
	if err != nil {
		return nil, false, fmt.Errorf("failed to build query: %w", err)
	}
	n, err := d.db.Exec(ctx, query, args...)
	if err != nil {
		return nil, false, fmt.Errorf("failed to ensure account: %w", err)
	}

	query, args, err = psql.
		Select(accountColumns...).
		From("accounts").
		Where(squirrel.Eq{"user_id": int64(userID)}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, false, fmt.Errorf("failed to build query: %w", err)
	}
	acc, err = scanAccount(d.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, false, fmt.Errorf("failed to lock account: %w", err)
	}
	return acc, n == 1, nil
}

func scanAccount(row pgx.Row) (*model.Account, error) {
	var (
		uid  int64
		last *time.Time
		acc  model.Account
	)
	if err := row.Scan(&uid, &acc.Balance, &last, &acc.DailyStreak, &acc.CreatedAt, &acc.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, postgres.ErrNoRows
		}
		return nil, err
	}
	acc.UserID = uint64(uid)
	if last != nil {
		d := model.DateOf(*last)
		acc.LastDailyClaim = &d
	}
	return &acc, nil
}

// Update 持久化余额与签到状态
func (d *AccountDAO) Update(ctx context.Context, acc *model.Account) (err error) {
	defer observe(d.metrics, "update", time.Now(), &err)

	var last any
	if acc.LastDailyClaim != nil {
		last = acc.LastDailyClaim.Time()
	}
	query, args, err := psql.
		Update("accounts").
		Set("balance", acc.Balance).
		Set("last_daily_claim", last).
		Set("daily_streak", acc.DailyStreak).
		Set("updated_at", time.Now()).
		Where(squirrel.Eq{"user_id": int64(acc.UserID)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	n, err := d.db.Exec(ctx, query, args...)
	if err != nil {
		if postgres.IsCheckViolation(err) {
			return model.InsufficientFunds(acc.Balance, 0)
		}
		return fmt.Errorf("failed to update account: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("account %d: %w", acc.UserID, postgres.ErrNoRows)
	}
	return nil
}

// Top 余额大于 0 的账户，余额降序、用户 ID 升序
func (d *AccountDAO) Top(ctx context.Context, limit int) (list []*model.LeaderboardEntry, err error) {
	defer observe(d.metrics, "select", time.Now(), &err)

	query, args, err := psql.
		Select("user_id", "balance").
		From("accounts").
		Where(squirrel.Gt{"balance": 0}).
		OrderBy("balance DESC", "user_id ASC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := d.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query top balances: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var uid int64
		e := &model.LeaderboardEntry{}
		if err := rows.Scan(&uid, &e.Balance); err != nil {
			return nil, fmt.Errorf("failed to scan top balance: %w", err)
		}
		e.UserID = uint64(uid)
		list = append(list, e)
	}
	return list, rows.Err()
}
