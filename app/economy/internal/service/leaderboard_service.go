package service

import (
	"context"
	"time"

	"github.com/lk2023060901/coinbot/app/economy/internal/model"
	"github.com/lk2023060901/coinbot/pkg/logger"
	"golang.org/x/sync/singleflight"
)

// LeaderboardCache 排行榜缓存，*dao.CacheDAO 实现
type LeaderboardCache interface {
	GetLeaderboard(ctx context.Context) ([]*model.LeaderboardEntry, bool, error)
	SetLeaderboard(ctx context.Context, list []*model.LeaderboardEntry, ttl time.Duration) error
}

// LeaderboardService 余额排行榜，短时缓存，最终一致
type LeaderboardService struct {
	*Deps
	logger logger.Logger
	cache  LeaderboardCache
	group  singleflight.Group
}

// NewLeaderboardService cache 为 nil 时每次直接查询存储
func NewLeaderboardService(l logger.Logger, deps *Deps, cache LeaderboardCache) *LeaderboardService {
	return &LeaderboardService{Deps: deps, logger: l.Named("service.leaderboard"), cache: cache}
}

// Top 余额大于 0 的前 N 名，余额降序、用户 ID 升序
func (s *LeaderboardService) Top(ctx context.Context) ([]*model.LeaderboardEntry, error) {
	cfg := s.Config.Get().Leaderboard

	if s.cache != nil && cfg.CacheTTL > 0 {
		list, ok, err := s.cache.GetLeaderboard(ctx)
		if err != nil {
			s.logger.WarnContext(ctx, "leaderboard cache unavailable", "error", err)
		} else if ok {
			return list, nil
		}
	}

	v, err, _ := s.group.Do("top", func() (any, error) {
		list, err := s.Repo.TopBalances(ctx, cfg.Size)
		if err != nil {
			return nil, err
		}
		for i, e := range list {
			e.Rank = i + 1
		}
		if s.cache != nil && cfg.CacheTTL > 0 {
			if err := s.cache.SetLeaderboard(ctx, list, cfg.CacheTTL); err != nil {
				s.logger.WarnContext(ctx, "failed to refresh leaderboard cache", "error", err)
			}
		}
		return list, nil
	})
	if err != nil {
		return nil, s.finish(ctx, s.logger, "leaderboard", err)
	}
	return v.([]*model.LeaderboardEntry), nil
}
