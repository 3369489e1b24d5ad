package security

import (
	"context"
	"fmt"
	"slices"

	"github.com/go-viper/mapstructure/v2"
)

// RoleAdmin 管理员角色声明
const RoleAdmin = "admin"

// Caller 命令发起者
// 网关把聊天平台的 snowflake id 以字符串形式放入 payload，解码时弱类型转换为 uint64
type Caller struct {
	UserID   uint64   `mapstructure:"uid"`
	GuildID  uint64   `mapstructure:"guild_id"`
	Username string   `mapstructure:"username"`
	Roles    []string `mapstructure:"roles"`
}

// HasRole 是否拥有指定角色
func (c Caller) HasRole(role string) bool {
	return slices.Contains(c.Roles, role)
}

// Payload 转换为 token payload
func (c Caller) Payload() map[string]any {
	return map[string]any{
		"uid":      fmt.Sprintf("%d", c.UserID),
		"guild_id": fmt.Sprintf("%d", c.GuildID),
		"username": c.Username,
		"roles":    c.Roles,
	}
}

// CallerFromClaims 从 Claims 解析发起者
func CallerFromClaims(claims *Claims) (Caller, error) {
	var caller Caller
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &caller,
	})
	if err != nil {
		return caller, err
	}
	if err := dec.Decode(claims.Payload); err != nil {
		return caller, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if caller.UserID == 0 {
		return caller, ErrCallerMissing
	}
	return caller, nil
}

type callerKey struct{}

// WithCaller 将发起者存入 context
func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

// CallerFrom 从 context 读取发起者
func CallerFrom(ctx context.Context) (Caller, bool) {
	c, ok := ctx.Value(callerKey{}).(Caller)
	return c, ok
}
