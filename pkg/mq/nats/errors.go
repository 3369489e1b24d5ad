package nats

import "errors"

var (
	// ErrInvalidConfig 配置无效
	ErrInvalidConfig = errors.New("nats: invalid config")

	// ErrEmptySubject 空主题
	ErrEmptySubject = errors.New("nats: empty subject")

	// ErrClientClosed 客户端已关闭
	ErrClientClosed = errors.New("nats: client is closed")

	// ErrNoResponders 请求无订阅方响应
	ErrNoResponders = errors.New("nats: no responders")
)
