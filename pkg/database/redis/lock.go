package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const defaultLockTTL = 10 * time.Second

// 只有锁持有者才能释放
const unlockScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`

// 只有锁持有者才能续期
const refreshScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("pexpire", KEYS[1], ARGV[2])
else
	return 0
end
`

// Lock 单节点分布式锁
type Lock struct {
	client *Client
	key    string
	value  string
	ttl    time.Duration
}

// NewLock 创建分布式锁，value 为随机 UUID 用于识别持有者
func NewLock(client *Client, key string, ttl time.Duration) *Lock {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &Lock{
		client: client,
		key:    key,
		value:  uuid.New().String(),
		ttl:    ttl,
	}
}

// Key 锁的键
func (l *Lock) Key() string {
	return l.key
}

// TryLock 尝试获取锁，立即返回
func (l *Lock) TryLock(ctx context.Context) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key, l.value, l.ttl)
	if err != nil {
		return false, fmt.Errorf("failed to try lock: %w", err)
	}
	return ok, nil
}

// LockWithRetry 获取锁，失败后按间隔重试
func (l *Lock) LockWithRetry(ctx context.Context, retryInterval time.Duration, maxRetries int) error {
	for i := 0; i <= maxRetries; i++ {
		ok, err := l.TryLock(ctx)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if i == maxRetries {
			break
		}

		timer := time.NewTimer(retryInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return ErrLockFailed
}

// Unlock 释放锁
func (l *Lock) Unlock(ctx context.Context) error {
	res, err := l.client.Eval(ctx, unlockScript, []string{l.key}, l.value)
	if err != nil {
		return fmt.Errorf("failed to unlock: %w", err)
	}
	if n, _ := res.(int64); n == 0 {
		return ErrLockNotHeld
	}
	return nil
}

// Refresh 延长锁的过期时间
func (l *Lock) Refresh(ctx context.Context) error {
	res, err := l.client.Eval(ctx, refreshScript, []string{l.key}, l.value, l.ttl.Milliseconds())
	if err != nil {
		return fmt.Errorf("failed to refresh lock: %w", err)
	}
	if n, _ := res.(int64); n == 0 {
		return ErrLockNotHeld
	}
	return nil
}

// WithLockRetry 在锁的保护下执行函数，unlockErr 回调用于记录释放失败
func (c *Client) WithLockRetry(ctx context.Context, key string, ttl, retryInterval time.Duration, maxRetries int, fn func() error, unlockErr func(error)) error {
	lock := NewLock(c, key, ttl)
	if err := lock.LockWithRetry(ctx, retryInterval, maxRetries); err != nil {
		return err
	}

	defer func() {
		if err := lock.Unlock(context.WithoutCancel(ctx)); err != nil && unlockErr != nil {
			unlockErr(err)
		}
	}()

	return fn()
}
