package nats

import (
	"fmt"
	"time"
)

// Config NATS 连接配置
type Config struct {
	// URL 逗号分隔的服务器地址，例如 nats://127.0.0.1:4222
	URL string `mapstructure:"url" json:"url"`

	// Name 连接名，显示在服务端监控中
	Name string `mapstructure:"name" json:"name"`

	// Token 可选的认证 token
	Token string `mapstructure:"token" json:"-"`

	ConnectTimeout time.Duration `mapstructure:"connect_timeout" json:"connect_timeout"`
	ReconnectWait  time.Duration `mapstructure:"reconnect_wait" json:"reconnect_wait"`
	MaxReconnects  int           `mapstructure:"max_reconnects" json:"max_reconnects"`

	// RequestTimeout 请求-应答的默认超时
	RequestTimeout time.Duration `mapstructure:"request_timeout" json:"request_timeout"`

	// SubjectPrefix 发布主题前缀，例如 coinbot
	SubjectPrefix string `mapstructure:"subject_prefix" json:"subject_prefix"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		URL:            "nats://127.0.0.1:4222",
		Name:           "coinbot",
		ConnectTimeout: 2 * time.Second,
		ReconnectWait:  2 * time.Second,
		MaxReconnects:  60,
		RequestTimeout: 3 * time.Second,
		SubjectPrefix:  "coinbot",
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("%w: url is required", ErrInvalidConfig)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%w: request_timeout must be positive", ErrInvalidConfig)
	}
	return nil
}
