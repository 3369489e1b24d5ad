package nats

import "context"

// Message 消息结构
type Message struct {
	// Subject 主题（不含前缀）
	Subject string

	// Data 消息体
	Data []byte

	// Headers 消息头（如 request_id、event_type）
	Headers map[string]string
}

// PublishFunc 发布函数
type PublishFunc func(ctx context.Context, msg *Message) error

// PublishMiddleware 发布中间件
type PublishMiddleware func(ctx context.Context, msg *Message, next PublishFunc) error
