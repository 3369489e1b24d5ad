package grant

import (
	"context"
	"fmt"

	"github.com/lk2023060901/coinbot/pkg/logger"
	"github.com/lk2023060901/coinbot/pkg/mq/nats"
)

// Request 外部角色授予请求
type Request struct {
	UserID     uint64 `json:"user_id,string"`
	GuildID    uint64 `json:"guild_id,string"`
	RoleRef    string `json:"role_ref"`
	RewardID   int64  `json:"reward_id"`
	RewardName string `json:"reward_name"`
}

// Authority 在外部平台授予角色，尽力而为，失败不回滚账本
type Authority interface {
	Grant(ctx context.Context, req Request) error
}

// Backend 授予通道
type Backend string

const (
	BackendNoop    Backend = "noop"
	BackendNATS    Backend = "nats"
	BackendDiscord Backend = "discord"
)

// Config 授予配置
type Config struct {
	Backend Backend `mapstructure:"backend" json:"backend"`
	// NATS 请求主题（不含前缀）
	Subject string `mapstructure:"subject" json:"subject"`
	// Discord Bot token，Backend 为 discord 时必填
	DiscordToken string `mapstructure:"discord_token" json:"-"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendNoop,
		Subject: "roles.grant",
	}
}

// New 按配置创建授予通道；nc 仅在 nats 通道下使用
func New(cfg *Config, nc *nats.Client, l logger.Logger) (Authority, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	switch cfg.Backend {
	case BackendNoop, "":
		return NewNoop(l), nil
	case BackendNATS:
		if nc == nil {
			return nil, fmt.Errorf("grant backend nats requires a nats client")
		}
		subject := cfg.Subject
		if subject == "" {
			subject = DefaultConfig().Subject
		}
		return NewNATSAuthority(nc, subject, l), nil
	case BackendDiscord:
		return NewDiscordAuthority(cfg.DiscordToken, l)
	default:
		return nil, fmt.Errorf("unknown grant backend %q", cfg.Backend)
	}
}

// noopAuthority 只记录日志
type noopAuthority struct {
	logger logger.Logger
}

// NewNoop 不对接外部平台的授予通道
func NewNoop(l logger.Logger) Authority {
	return &noopAuthority{logger: l.Named("grant.noop")}
}

func (a *noopAuthority) Grant(ctx context.Context, req Request) error {
	a.logger.InfoContext(ctx, "role grant skipped", "role_ref", req.RoleRef, "reward_id", req.RewardID)
	return nil
}
