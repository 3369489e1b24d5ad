package redis

import (
	"fmt"
	"time"
)

// Config Redis 配置，Addrs 多于一个时使用集群模式
type Config struct {
	Addrs    []string `mapstructure:"addrs" json:"addrs"`
	Password string   `mapstructure:"password" json:"password"`
	DB       int      `mapstructure:"db" json:"db"`

	// KeyPrefix 所有业务 key 的前缀，例如 coinbot:
	KeyPrefix string `mapstructure:"key_prefix" json:"key_prefix"`

	Pool PoolConfig `mapstructure:"pool" json:"pool"`
}

// PoolConfig 连接池配置
type PoolConfig struct {
	MaxIdleConns    int           `mapstructure:"max_idle_conns" json:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" json:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" json:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time" json:"conn_max_idle_time"`
	DialTimeout     time.Duration `mapstructure:"dial_timeout" json:"dial_timeout"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" json:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" json:"write_timeout"`
	PoolTimeout     time.Duration `mapstructure:"pool_timeout" json:"pool_timeout"`
}

// DefaultConfig 返回默认配置（本机单节点）
func DefaultConfig() *Config {
	return &Config{
		Addrs:     []string{"localhost:6379"},
		KeyPrefix: "coinbot:",
		Pool: PoolConfig{
			MaxIdleConns:    10,
			MaxOpenConns:    50,
			ConnMaxLifetime: 30 * time.Minute,
			ConnMaxIdleTime: 5 * time.Minute,
			DialTimeout:     5 * time.Second,
			ReadTimeout:     3 * time.Second,
			WriteTimeout:    3 * time.Second,
			PoolTimeout:     4 * time.Second,
		},
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c == nil {
		return ErrNilConfig
	}
	if len(c.Addrs) == 0 {
		return fmt.Errorf("%w: addrs is empty", ErrInvalidConfig)
	}
	for _, addr := range c.Addrs {
		if addr == "" {
			return fmt.Errorf("%w: empty address", ErrInvalidConfig)
		}
	}
	if len(c.Addrs) > 1 && c.DB != 0 {
		return fmt.Errorf("%w: cluster mode only supports db 0", ErrInvalidConfig)
	}
	return nil
}

// IsCluster 是否为集群模式
func (c *Config) IsCluster() bool {
	return len(c.Addrs) > 1
}
