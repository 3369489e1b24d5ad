package grant

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"
	"github.com/lk2023060901/coinbot/pkg/logger"
)

// memberRoleAdder discordgo.Session 中授予角色所需的方法
type memberRoleAdder interface {
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
}

// DiscordAuthority 直接调用 Discord REST API 授予角色
type DiscordAuthority struct {
	session memberRoleAdder
	logger  logger.Logger
}

// NewDiscordAuthority 以 Bot token 创建会话，仅使用 REST 接口，不建立 websocket
func NewDiscordAuthority(token string, l logger.Logger) (*DiscordAuthority, error) {
	if token == "" {
		return nil, fmt.Errorf("discord token is required")
	}
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	return newDiscordAuthority(s, l), nil
}

func newDiscordAuthority(s memberRoleAdder, l logger.Logger) *DiscordAuthority {
	return &DiscordAuthority{session: s, logger: l.Named("grant.discord")}
}

func (a *DiscordAuthority) Grant(ctx context.Context, req Request) error {
	if req.GuildID == 0 {
		return fmt.Errorf("guild id is required to grant %s", req.RoleRef)
	}
	guild := strconv.FormatUint(req.GuildID, 10)
	user := strconv.FormatUint(req.UserID, 10)

	if err := a.session.GuildMemberRoleAdd(guild, user, req.RoleRef, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("discord role add failed: %w", err)
	}
	a.logger.InfoContext(ctx, "discord role granted", "guild_id", guild, "role_ref", req.RoleRef)
	return nil
}
