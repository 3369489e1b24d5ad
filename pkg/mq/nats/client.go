package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/lk2023060901/coinbot/pkg/config"
	"github.com/nats-io/nats.go"
)

// Client NATS 客户端，封装发布与请求-应答
type Client struct {
	config      *Config
	conn        *nats.Conn
	middlewares []PublishMiddleware
	closed      atomic.Bool
}

// Option 客户端选项
type Option func(*Client)

// WithPublishMiddleware 追加发布中间件，按添加顺序由外到内执行
func WithPublishMiddleware(mw ...PublishMiddleware) Option {
	return func(c *Client) {
		c.middlewares = append(c.middlewares, mw...)
	}
}

// New 连接 NATS
func New(cfg *Config, opts ...Option) (*Client, error) {
	merged, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to merge config: %w", err)
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}

	natsOpts := []nats.Option{
		nats.Name(merged.Name),
		nats.Timeout(merged.ConnectTimeout),
		nats.ReconnectWait(merged.ReconnectWait),
		nats.MaxReconnects(merged.MaxReconnects),
	}
	if merged.Token != "" {
		natsOpts = append(natsOpts, nats.Token(merged.Token))
	}

	conn, err := nats.Connect(merged.URL, natsOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect nats: %w", err)
	}

	c := &Client{config: merged, conn: conn}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Conn 底层连接
func (c *Client) Conn() *nats.Conn {
	return c.conn
}

// Subject 拼接主题前缀
func (c *Client) Subject(name string) string {
	if c.config.SubjectPrefix == "" {
		return name
	}
	return c.config.SubjectPrefix + "." + name
}

// Publish 经过中间件链发布消息
func (c *Client) Publish(ctx context.Context, msg *Message) error {
	if c.closed.Load() {
		return ErrClientClosed
	}
	if msg.Subject == "" {
		return ErrEmptySubject
	}

	publish := c.doPublish
	for i := len(c.middlewares) - 1; i >= 0; i-- {
		mw, next := c.middlewares[i], publish
		publish = func(ctx context.Context, msg *Message) error {
			return mw(ctx, msg, next)
		}
	}
	return publish(ctx, msg)
}

func (c *Client) doPublish(_ context.Context, msg *Message) error {
	m := nats.NewMsg(c.Subject(msg.Subject))
	m.Data = msg.Data
	for k, v := range msg.Headers {
		m.Header.Set(k, v)
	}
	if err := c.conn.PublishMsg(m); err != nil {
		return fmt.Errorf("failed to publish %s: %w", m.Subject, err)
	}
	return nil
}

// PublishJSON 序列化后发布
func (c *Client) PublishJSON(ctx context.Context, subject string, v any, headers map[string]string) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal message failed: %w", err)
	}
	return c.Publish(ctx, &Message{Subject: subject, Data: data, Headers: headers})
}

// RequestJSON 发送 JSON 请求并解析 JSON 应答，ctx 无截止时间时使用默认超时
func (c *Client) RequestJSON(ctx context.Context, subject string, req, resp any) error {
	if c.closed.Load() {
		return ErrClientClosed
	}
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal request failed: %w", err)
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.RequestTimeout)
		defer cancel()
	}

	reply, err := c.conn.RequestWithContext(ctx, c.Subject(subject), data)
	if err != nil {
		if errors.Is(err, nats.ErrNoResponders) {
			return fmt.Errorf("%w: %s", ErrNoResponders, subject)
		}
		return fmt.Errorf("request %s failed: %w", subject, err)
	}
	if err := json.Unmarshal(reply.Data, resp); err != nil {
		return fmt.Errorf("unmarshal reply failed: %w", err)
	}
	return nil
}

// Close 排空并关闭连接
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.conn.Drain()
}
