package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"default", func(c *Config) {}, false},
		{"empty host", func(c *Config) { c.Host = "" }, true},
		{"bad port", func(c *Config) { c.Port = 70000 }, true},
		{"empty user", func(c *Config) { c.User = "" }, true},
		{"empty db", func(c *Config) { c.DBName = "" }, true},
		{"zero max conns", func(c *Config) { c.Pool.MaxConns = 0 }, true},
		{"min > max", func(c *Config) { c.Pool.MinConns = 30 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	var nilCfg *Config
	assert.ErrorIs(t, nilCfg.Validate(), ErrNilConfig)
}

func TestConfig_DSN(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Password = "secret"
	cfg.ConnectTimeout = 3 * time.Second

	assert.Equal(t,
		"host=localhost port=5432 user=postgres dbname=coinbot sslmode=disable password=secret connect_timeout=3",
		cfg.DSN())
}

func TestMergeConfig_KeepsDefaults(t *testing.T) {
	merged, err := MergeConfig(DefaultConfig(), &Config{DBConfig: DBConfig{Host: "db.internal"}})
	require.NoError(t, err)
	assert.Equal(t, "db.internal", merged.Host)
	assert.Equal(t, 5432, merged.Port)
	assert.Equal(t, int32(25), merged.Pool.MaxConns)
}

// testClient 需要设置 COINBOT_TEST_POSTGRES_HOST 才会连接真实数据库
func testClient(t *testing.T) *Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	host := os.Getenv("COINBOT_TEST_POSTGRES_HOST")
	if host == "" {
		t.Skip("COINBOT_TEST_POSTGRES_HOST not set")
	}
	cfg := DefaultConfig()
	cfg.Host = host
	cfg.Password = os.Getenv("COINBOT_TEST_POSTGRES_PASSWORD")
	c, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

type sampleRow struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

func TestClient_QueryAndTx(t *testing.T) {
	c := testClient(t)
	ctx := context.Background()

	_, err := c.Exec(ctx, `DROP TABLE IF EXISTS coinbot_sample`)
	require.NoError(t, err)
	_, err = c.Exec(ctx, `CREATE TABLE coinbot_sample (id BIGINT PRIMARY KEY, name TEXT NOT NULL)`)
	require.NoError(t, err)
	t.Cleanup(func() { _, _ = c.Exec(context.Background(), `DROP TABLE IF EXISTS coinbot_sample`) })

	err = c.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		_, err := tx.Exec(ctx, `INSERT INTO coinbot_sample (id, name) VALUES ($1, $2)`, 1, "one")
		return err
	})
	require.NoError(t, err)

	row, err := QueryOne[sampleRow](ctx, c, `SELECT id, name FROM coinbot_sample WHERE id = $1`, 1)
	require.NoError(t, err)
	assert.Equal(t, "one", row.Name)

	_, err = QueryOne[sampleRow](ctx, c, `SELECT id, name FROM coinbot_sample WHERE id = $1`, 42)
	assert.ErrorIs(t, err, ErrNoRows)
}
