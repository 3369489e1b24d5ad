package service

import (
	"context"

	"github.com/lk2023060901/coinbot/app/economy/internal/config"
	"github.com/lk2023060901/coinbot/app/economy/internal/model"
	"github.com/lk2023060901/coinbot/pkg/logger"
	"github.com/lk2023060901/coinbot/pkg/security"
)

// 管理操作名称
const (
	ActionAddItem      = "add_item"
	ActionRemoveItem   = "remove_item"
	ActionRestockItem  = "restock_item"
	ActionAddReward    = "add_reward"
	ActionRemoveReward = "remove_reward"
	ActionAddMoney     = "add_money"
	ActionSetBalance   = "set_balance"
)

// Authorizer 判定调用方能否执行管理操作
type Authorizer interface {
	Authorize(ctx context.Context, caller security.Caller, action string) bool
}

// PolicyAuthorizer 用户 ID 在管理员列表中，或持有管理员角色声明
type PolicyAuthorizer struct {
	cfg    config.Provider
	logger logger.Logger
}

// NewPolicyAuthorizer 创建授权策略
func NewPolicyAuthorizer(cfg config.Provider, l logger.Logger) *PolicyAuthorizer {
	return &PolicyAuthorizer{cfg: cfg, logger: l.Named("service.authorizer")}
}

func (a *PolicyAuthorizer) Authorize(ctx context.Context, caller security.Caller, action string) bool {
	cfg := a.cfg.Get()
	if cfg.IsAdmin(caller.UserID) || (cfg.Admin.Role != "" && caller.HasRole(cfg.Admin.Role)) {
		return true
	}
	a.logger.WarnContext(ctx, "admin action denied", "caller", caller.UserID, "action", action)
	return false
}

// authorize 未授权时返回 Unauthorized 拒绝
func authorize(ctx context.Context, auth Authorizer, caller security.Caller, action string) error {
	if !auth.Authorize(ctx, caller, action) {
		return model.Reject(model.ErrUnauthorized)
	}
	return nil
}
