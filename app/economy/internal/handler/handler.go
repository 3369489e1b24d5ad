package handler

import (
	"context"
	stderrors "errors"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/coinbot/app/economy/internal/model"
	"github.com/lk2023060901/coinbot/app/economy/internal/service"
	"github.com/lk2023060901/coinbot/pkg/logger"
	"github.com/lk2023060901/coinbot/pkg/security"
	"github.com/lk2023060901/coinbot/pkg/web"
	"github.com/lk2023060901/coinbot/pkg/web/errors"
	"github.com/lk2023060901/coinbot/pkg/web/middleware"
)

// Services 处理器依赖的业务服务
type Services struct {
	Ledger      *service.LedgerService
	Daily       *service.DailyService
	Slot        *service.SlotService
	Shop        *service.ShopService
	Gacha       *service.GachaService
	Leaderboard *service.LeaderboardService
	Status      *service.StatusService
}

// EconomyHandler 网关命令的 HTTP 入口
type EconomyHandler struct {
	svc    Services
	logger logger.Logger
}

// NewEconomyHandler 创建处理器
func NewEconomyHandler(s Services, l logger.Logger) *EconomyHandler {
	return &EconomyHandler{svc: s, logger: l.Named("handler.economy")}
}

// Register 注册路由，auth 之后的中间件只作用于需要身份的接口
func (h *EconomyHandler) Register(r gin.IRouter, auth ...gin.HandlerFunc) {
	api := r.Group("/api/v1")
	api.GET("/status", h.Status)

	user := api.Group("", auth...)
	{
		user.GET("/balance", h.Balance)
		user.POST("/daily", h.Daily)
		user.POST("/slot", h.Slot)
		user.GET("/shop", h.ListItems)
		user.POST("/shop/buy", h.Buy)
		user.GET("/inventory", h.Inventory)
		user.POST("/gacha", h.Gacha)
		user.GET("/gacha/rewards", h.GachaList)
		user.GET("/gacha/mine", h.MyRewards)
		user.GET("/leaderboard", h.Leaderboard)
	}

	admin := user.Group("/admin")
	{
		admin.POST("/items", h.AddItem)
		admin.DELETE("/items/:id", h.RemoveItem)
		admin.PUT("/items/:id/stock", h.RestockItem)
		admin.POST("/rewards", h.AddReward)
		admin.DELETE("/rewards/:id", h.RemoveReward)
		admin.POST("/money", h.AddMoney)
		admin.PUT("/balance", h.SetBalance)
	}
}

// caller 读取认证中间件解析出的调用方，缺失时已写入响应
func (h *EconomyHandler) caller(c *gin.Context) (security.Caller, bool) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		web.Fail(c, errors.CodeUnAuthorized, "caller missing", nil)
	}
	return caller, ok
}

var rejectionCodes = map[error]int{
	model.ErrInsufficientFunds:   errors.CodeInsufficientFunds,
	model.ErrInvalidAmount:       errors.CodeInvalidAmount,
	model.ErrItemNotFound:        errors.CodeItemNotFound,
	model.ErrOutOfStock:          errors.CodeOutOfStock,
	model.ErrRewardNotFound:      errors.CodeRewardNotFound,
	model.ErrDuplicateReward:     errors.CodeDuplicateReward,
	model.ErrAlreadyClaimedToday: errors.CodeAlreadyClaimedToday,
	model.ErrEmptyPool:           errors.CodeEmptyPool,
	model.ErrUnauthorized:        errors.CodeForbidden,
}

// fail 业务拒绝带上纠正信息返回 4xx，存储故障统一返回 500
func (h *EconomyHandler) fail(c *gin.Context, err error) {
	if rej, ok := model.AsRejection(err); ok {
		code, known := rejectionCodes[rej.Kind()]
		if !known {
			code = errors.CodeInvalidParams
		}
		web.Fail(c, code, rej.Error(), rej)
		return
	}

	ctx := c.Request.Context()
	if stderrors.Is(err, context.Canceled) {
		h.logger.DebugContext(ctx, "request canceled", "path", c.FullPath())
		c.Abort()
		return
	}
	h.logger.ErrorContext(ctx, "request failed", "path", c.FullPath(), "error", err)
	web.Fail(c, errors.CodeInternalError, "please retry later", nil)
}
