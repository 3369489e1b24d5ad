package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	userIDKey
	guildIDKey
)

// ContextFieldExtractor 从 context 提取日志字段
type ContextFieldExtractor func(ctx context.Context) []zap.Field

// WithRequestID 在 context 中记录请求 ID
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// WithCaller 在 context 中记录发起命令的用户与服务器
func WithCaller(ctx context.Context, userID, guildID uint64) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, guildIDKey, guildID)
}

// RequestIDFrom 读取请求 ID
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// RequestFieldsExtractor 默认提取器：request_id、user_id、guild_id
func RequestFieldsExtractor(ctx context.Context) []zap.Field {
	if ctx == nil {
		return nil
	}
	fields := make([]zap.Field, 0, 3)
	if id, ok := ctx.Value(requestIDKey).(string); ok && id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if uid, ok := ctx.Value(userIDKey).(uint64); ok && uid != 0 {
		fields = append(fields, zap.Uint64("user_id", uid))
	}
	if gid, ok := ctx.Value(guildIDKey).(uint64); ok && gid != 0 {
		fields = append(fields, zap.Uint64("guild_id", gid))
	}
	return fields
}
