package redis

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	var nilCfg *Config
	assert.ErrorIs(t, nilCfg.Validate(), ErrNilConfig)

	assert.ErrorIs(t, (&Config{}).Validate(), ErrInvalidConfig)
	assert.ErrorIs(t, (&Config{Addrs: []string{""}}).Validate(), ErrInvalidConfig)

	cluster := &Config{Addrs: []string{"a:7000", "b:7001"}, DB: 2}
	assert.ErrorIs(t, cluster.Validate(), ErrInvalidConfig)
	cluster.DB = 0
	assert.NoError(t, cluster.Validate())
	assert.True(t, cluster.IsCluster())
}

func TestClient_Key(t *testing.T) {
	c := &Client{cfg: &Config{KeyPrefix: "coinbot:"}}
	assert.Equal(t, "coinbot:lock:user:42", c.Key("lock", "user", "42"))
	assert.Equal(t, "coinbot:leaderboard", c.Key("leaderboard"))
}

// testClient 需要设置 COINBOT_TEST_REDIS_ADDR 才会连接真实 Redis
func testClient(t *testing.T) *Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	addr := os.Getenv("COINBOT_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("COINBOT_TEST_REDIS_ADDR not set")
	}
	c, err := NewClient(&Config{Addrs: []string{addr}, KeyPrefix: "coinbot-test:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

type cachedBoard struct {
	Users []uint64 `json:"users"`
}

func TestClient_Object(t *testing.T) {
	c := testClient(t)
	ctx := context.Background()
	key := c.Key("object", time.Now().Format(time.RFC3339Nano))
	t.Cleanup(func() { _, _ = c.Del(context.Background(), key) })

	_, err := GetObject[cachedBoard](ctx, c, key)
	assert.ErrorIs(t, err, ErrNil)

	require.NoError(t, SetObject(ctx, c, key, cachedBoard{Users: []uint64{3, 1}}, time.Minute))
	got, err := GetObject[cachedBoard](ctx, c, key)
	require.NoError(t, err)
	assert.Equal(t, []uint64{3, 1}, got.Users)
}

func TestLock_MutualExclusion(t *testing.T) {
	c := testClient(t)
	ctx := context.Background()
	key := c.Key("lock", time.Now().Format(time.RFC3339Nano))

	var (
		inside  int32
		maxSeen int32
		wg      sync.WaitGroup
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := c.WithLockRetry(ctx, key, 5*time.Second, 5*time.Millisecond, 1000, func() error {
				n := atomic.AddInt32(&inside, 1)
				if n > atomic.LoadInt32(&maxSeen) {
					atomic.StoreInt32(&maxSeen, n)
				}
				time.Sleep(2 * time.Millisecond)
				atomic.AddInt32(&inside, -1)
				return nil
			}, nil)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), maxSeen)
}

func TestLock_UnlockNotHeld(t *testing.T) {
	c := testClient(t)
	ctx := context.Background()
	key := c.Key("lock", "foreign", time.Now().Format(time.RFC3339Nano))

	holder := NewLock(c, key, time.Second)
	ok, err := holder.TryLock(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	other := NewLock(c, key, time.Second)
	assert.ErrorIs(t, other.Unlock(ctx), ErrLockNotHeld)
	assert.ErrorIs(t, other.LockWithRetry(ctx, time.Millisecond, 2), ErrLockFailed)
	require.NoError(t, holder.Unlock(ctx))
}
