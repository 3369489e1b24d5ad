package sentry

import (
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/lk2023060901/coinbot/pkg/logger"
	"go.uber.org/zap/zapcore"
)

// Client Sentry 客户端，使用独立 Hub
type Client struct {
	hub    *sentry.Hub
	config *Config
	closed atomic.Bool

	captured atomic.Uint64
}

// New 创建 Sentry 客户端
func New(cfg *Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return newWithTransport(cfg, nil)
}

func newWithTransport(cfg *Config, transport sentry.Transport) (*Client, error) {
	opts := cfg.toClientOptions()
	if transport != nil {
		opts.Transport = transport
	}
	client, err := sentry.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create sentry client: %w", err)
	}

	hub := sentry.NewHub(client, sentry.NewScope())
	hub.ConfigureScope(func(scope *sentry.Scope) {
		for key, value := range cfg.Tags {
			scope.SetTag(key, value)
		}
	})
	return &Client{hub: hub, config: cfg}, nil
}

// CaptureException 上报错误，tags 附加到本次事件
func (c *Client) CaptureException(err error, tags map[string]string) {
	if c.closed.Load() || err == nil {
		return
	}
	c.hub.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		if id := c.hub.CaptureException(err); id != nil {
			c.captured.Add(1)
		}
	})
}

// Captured 已提交的事件数量
func (c *Client) Captured() uint64 {
	return c.captured.Load()
}

// Flush 等待所有事件上报完成
func (c *Client) Flush(timeout time.Duration) bool {
	return c.hub.Flush(timeout)
}

// Close 刷新并关闭
func (c *Client) Close() error {
	if c.closed.Swap(true) {
		return ErrClientClosed
	}
	c.hub.Flush(c.config.ShutdownTimeout)
	return nil
}

// LoggerHook 返回日志钩子：error 及以上的日志转发到 Sentry
// 日志中的 error 字段作为异常，其余字符串字段作为 tag
func (c *Client) LoggerHook() logger.Hook {
	return logger.LevelHook(zapcore.ErrorLevel, func(entry zapcore.Entry, fields []zapcore.Field) {
		var cause error
		tags := map[string]string{"logger": entry.LoggerName}
		for _, f := range fields {
			switch f.Type {
			case zapcore.ErrorType:
				if e, ok := f.Interface.(error); ok && cause == nil {
					cause = e
				}
			case zapcore.StringType:
				tags[f.Key] = f.String
			}
		}
		if cause == nil {
			cause = errors.New(entry.Message)
		} else {
			cause = fmt.Errorf("%s: %w", entry.Message, cause)
		}
		c.CaptureException(cause, tags)
	})
}
