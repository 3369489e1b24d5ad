package nats

import (
	"context"
	"time"

	"github.com/lk2023060901/coinbot/pkg/logger"
)

// LoggingMiddleware 发布日志中间件
func LoggingMiddleware(log logger.Logger) PublishMiddleware {
	return func(ctx context.Context, msg *Message, next PublishFunc) error {
		start := time.Now()
		err := next(ctx, msg)
		if err != nil {
			log.ErrorContext(ctx, "message publish failed",
				"subject", msg.Subject,
				"duration", time.Since(start),
				"error", err,
			)
			return err
		}
		log.DebugContext(ctx, "message published",
			"subject", msg.Subject,
			"bytes", len(msg.Data),
		)
		return nil
	}
}

// RequestIDMiddleware 将 context 中的请求 ID 写入消息头
func RequestIDMiddleware() PublishMiddleware {
	return func(ctx context.Context, msg *Message, next PublishFunc) error {
		if id := logger.RequestIDFrom(ctx); id != "" {
			if msg.Headers == nil {
				msg.Headers = make(map[string]string, 1)
			}
			msg.Headers["X-Request-ID"] = id
		}
		return next(ctx, msg)
	}
}
