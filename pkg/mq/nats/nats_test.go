package nats

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/lk2023060901/coinbot/pkg/logger"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.URL = ""
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
}

func TestPublish_MiddlewareOrder(t *testing.T) {
	var order []string
	mw := func(name string) PublishMiddleware {
		return func(ctx context.Context, msg *Message, next PublishFunc) error {
			order = append(order, name)
			return next(ctx, msg)
		}
	}

	// 不连接服务端，只验证中间件链与请求 ID 透传
	c := &Client{config: DefaultConfig(), middlewares: []PublishMiddleware{mw("a"), mw("b"), RequestIDMiddleware()}}
	var got *Message
	c.middlewares = append(c.middlewares, func(ctx context.Context, msg *Message, next PublishFunc) error {
		got = msg
		return nil
	})

	ctx := logger.WithRequestID(context.Background(), "req-1")
	require.NoError(t, c.Publish(ctx, &Message{Subject: "audit.slot"}))
	assert.Equal(t, []string{"a", "b"}, order)
	require.NotNil(t, got)
	assert.Equal(t, "req-1", got.Headers["X-Request-ID"])
	assert.Equal(t, "coinbot.audit.slot", c.Subject(got.Subject))

	assert.ErrorIs(t, c.Publish(ctx, &Message{}), ErrEmptySubject)
}

func TestClient_RequestReply(t *testing.T) {
	url := os.Getenv("COINBOT_TEST_NATS_URL")
	if url == "" {
		t.Skip("COINBOT_TEST_NATS_URL not set")
	}

	c, err := New(&Config{URL: url, SubjectPrefix: "coinbot_test"})
	require.NoError(t, err)
	defer c.Close()

	sub, err := c.Conn().Subscribe(c.Subject("echo"), func(m *nats.Msg) {
		_ = m.Respond(m.Data)
	})
	require.NoError(t, err)
	defer sub.Unsubscribe()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	var resp map[string]int
	require.NoError(t, c.RequestJSON(ctx, "echo", map[string]int{"n": 7}, &resp))
	assert.Equal(t, 7, resp["n"])
}
