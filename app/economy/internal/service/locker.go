package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/lk2023060901/coinbot/pkg/database/redis"
	"github.com/lk2023060901/coinbot/pkg/logger"
)

// UserLocker 同一用户的变更串行执行，不同用户之间互不阻塞
type UserLocker interface {
	WithLock(ctx context.Context, userID uint64, fn func(ctx context.Context) error) error
}

// LockConfig 用户锁配置
type LockConfig struct {
	// Backend local 或 redis
	Backend       string        `mapstructure:"backend" json:"backend"`
	TTL           time.Duration `mapstructure:"ttl" json:"ttl"`
	RetryInterval time.Duration `mapstructure:"retry_interval" json:"retry_interval"`
	MaxRetries    int           `mapstructure:"max_retries" json:"max_retries"`
}

// DefaultLockConfig 默认配置
func DefaultLockConfig() *LockConfig {
	return &LockConfig{
		Backend:       "local",
		TTL:           5 * time.Second,
		RetryInterval: 25 * time.Millisecond,
		MaxRetries:    200,
	}
}

// localLocker 进程内按用户加锁，引用计数归零后回收
type localLocker struct {
	mu    sync.Mutex
	slots map[uint64]*lockSlot
}

type lockSlot struct {
	ch   chan struct{}
	refs int
}

// NewLocalLocker 创建进程内用户锁
func NewLocalLocker() UserLocker {
	return &localLocker{slots: make(map[uint64]*lockSlot)}
}

func (l *localLocker) acquire(userID uint64) *lockSlot {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.slots[userID]
	if !ok {
		s = &lockSlot{ch: make(chan struct{}, 1)}
		l.slots[userID] = s
	}
	s.refs++
	return s
}

func (l *localLocker) release(userID uint64, s *lockSlot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(l.slots, userID)
	}
}

func (l *localLocker) WithLock(ctx context.Context, userID uint64, fn func(ctx context.Context) error) error {
	s := l.acquire(userID)
	defer l.release(userID, s)

	select {
	case s.ch <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-s.ch }()

	return fn(ctx)
}

// redisLocker 基于 Redis SET NX 的分布式用户锁，多实例部署使用
type redisLocker struct {
	client *redis.Client
	cfg    LockConfig
	logger logger.Logger
}

// NewRedisLocker 创建 Redis 用户锁
func NewRedisLocker(client *redis.Client, cfg *LockConfig, l logger.Logger) UserLocker {
	if cfg == nil {
		cfg = DefaultLockConfig()
	}
	return &redisLocker{client: client, cfg: *cfg, logger: l.Named("service.locker")}
}

func (l *redisLocker) WithLock(ctx context.Context, userID uint64, fn func(ctx context.Context) error) error {
	key := l.client.Key("lock", "account", strconv.FormatUint(userID, 10))
	return l.client.WithLockRetry(ctx, key, l.cfg.TTL, l.cfg.RetryInterval, l.cfg.MaxRetries,
		func() error { return fn(ctx) },
		func(err error) {
			l.logger.WarnContext(ctx, "failed to release account lock", "user_id", userID, "error", err)
		},
	)
}
