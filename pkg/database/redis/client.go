package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lk2023060901/coinbot/pkg/config"
	goredis "github.com/redis/go-redis/v9"
)

// Client Redis 客户端（隐藏 go-redis 类型，单机与集群共用 UniversalClient）
type Client struct {
	rdb goredis.UniversalClient
	cfg *Config
}

// NewClient 创建 Redis 客户端并检查连通性
func NewClient(cfg *Config) (*Client, error) {
	merged, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to merge config: %w", err)
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}

	opts := &goredis.UniversalOptions{
		Addrs:           merged.Addrs,
		Password:        merged.Password,
		DB:              merged.DB,
		MaxIdleConns:    merged.Pool.MaxIdleConns,
		MaxActiveConns:  merged.Pool.MaxOpenConns,
		ConnMaxLifetime: merged.Pool.ConnMaxLifetime,
		ConnMaxIdleTime: merged.Pool.ConnMaxIdleTime,
		DialTimeout:     merged.Pool.DialTimeout,
		ReadTimeout:     merged.Pool.ReadTimeout,
		WriteTimeout:    merged.Pool.WriteTimeout,
		PoolTimeout:     merged.Pool.PoolTimeout,
	}

	var rdb goredis.UniversalClient
	if merged.IsCluster() {
		rdb = goredis.NewClusterClient(opts.Cluster())
	} else {
		rdb = goredis.NewClient(opts.Simple())
	}

	ctx, cancel := context.WithTimeout(context.Background(), merged.Pool.DialTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &Client{rdb: rdb, cfg: merged}, nil
}

// Key 拼接业务前缀
func (c *Client) Key(parts ...string) string {
	key := c.cfg.KeyPrefix
	for i, p := range parts {
		if i > 0 {
			key += ":"
		}
		key += p
	}
	return key
}

// Ping 检查连接
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close 关闭客户端
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Get 获取字符串值，键不存在返回 ErrNil
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	val, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", ErrNil
		}
		return "", fmt.Errorf("get failed: %w", err)
	}
	return val, nil
}

// Set 设置值
func (c *Client) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	if err := c.rdb.Set(ctx, key, value, expiration).Err(); err != nil {
		return fmt.Errorf("set failed: %w", err)
	}
	return nil
}

// SetNX 键不存在时设置
func (c *Client) SetNX(ctx context.Context, key string, value any, expiration time.Duration) (bool, error) {
	ok, err := c.rdb.SetNX(ctx, key, value, expiration).Result()
	if err != nil {
		return false, fmt.Errorf("setnx failed: %w", err)
	}
	return ok, nil
}

// Del 删除键，返回删除数量
func (c *Client) Del(ctx context.Context, keys ...string) (int64, error) {
	n, err := c.rdb.Del(ctx, keys...).Result()
	if err != nil {
		return 0, fmt.Errorf("del failed: %w", err)
	}
	return n, nil
}

// Eval 执行 Lua 脚本
func (c *Client) Eval(ctx context.Context, script string, keys []string, args ...any) (any, error) {
	res, err := c.rdb.Eval(ctx, script, keys, args...).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, ErrNil
		}
		return nil, fmt.Errorf("eval failed: %w", err)
	}
	return res, nil
}
