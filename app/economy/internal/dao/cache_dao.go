package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lk2023060901/coinbot/app/economy/internal/metrics"
	"github.com/lk2023060901/coinbot/app/economy/internal/model"
	"github.com/lk2023060901/coinbot/pkg/database/redis"
	"github.com/lk2023060901/coinbot/pkg/logger"
)

// CacheDAO Redis 缓存数据访问对象
type CacheDAO struct {
	redis   *redis.Client
	logger  logger.Logger
	metrics *metrics.EconomyMetrics
}

// NewCacheDAO 创建缓存 DAO
func NewCacheDAO(rdb *redis.Client, l logger.Logger, m *metrics.EconomyMetrics) *CacheDAO {
	return &CacheDAO{
		redis:   rdb,
		logger:  l.Named("dao.cache"),
		metrics: m,
	}
}

func (d *CacheDAO) leaderboardKey() string {
	return d.redis.Key("leaderboard", "top")
}

// GetLeaderboard 读取排行榜缓存，未命中返回 ok=false
func (d *CacheDAO) GetLeaderboard(ctx context.Context) ([]*model.LeaderboardEntry, bool, error) {
	list, err := redis.GetObject[[]*model.LeaderboardEntry](ctx, d.redis, d.leaderboardKey())
	if err != nil {
		if errors.Is(err, redis.ErrNil) {
			d.metrics.RecordCacheMiss("leaderboard")
			return nil, false, nil
		}
		d.logger.Error("failed to get leaderboard from cache", "error", err)
		return nil, false, fmt.Errorf("failed to get leaderboard from cache: %w", err)
	}

	d.metrics.RecordCacheHit("leaderboard")
	return *list, true, nil
}

// SetLeaderboard 写入排行榜缓存
func (d *CacheDAO) SetLeaderboard(ctx context.Context, list []*model.LeaderboardEntry, ttl time.Duration) error {
	if err := redis.SetObject(ctx, d.redis, d.leaderboardKey(), list, ttl); err != nil {
		d.logger.Error("failed to set leaderboard cache", "error", err)
		return fmt.Errorf("failed to set leaderboard cache: %w", err)
	}
	return nil
}

// InvalidateLeaderboard 删除排行榜缓存
func (d *CacheDAO) InvalidateLeaderboard(ctx context.Context) error {
	if _, err := d.redis.Del(ctx, d.leaderboardKey()); err != nil {
		return fmt.Errorf("failed to invalidate leaderboard cache: %w", err)
	}
	return nil
}
