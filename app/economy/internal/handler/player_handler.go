package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/coinbot/app/economy/internal/service"
	"github.com/lk2023060901/coinbot/pkg/web"
)

// BalanceResponse 余额
type BalanceResponse struct {
	UserID  uint64 `json:"user_id,string"`
	Balance int64  `json:"balance"`
}

// SlotRequest 老虎机下注
type SlotRequest struct {
	Bet int64 `json:"bet"`
}

// BuyRequest 购买请求
type BuyRequest struct {
	ItemID int64 `json:"item_id" binding:"required"`
}

// GachaRequest 抽卡请求，字段均可省略
type GachaRequest struct {
	Price *int64 `json:"price"`
	Mode  string `json:"mode" binding:"omitempty,oneof=weighted tier"`
}

// Balance 查询余额
// @Router /api/v1/balance [get]
func (h *EconomyHandler) Balance(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	bal, err := h.svc.Ledger.GetBalance(c.Request.Context(), caller.UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, BalanceResponse{UserID: caller.UserID, Balance: bal})
}

// Daily 每日签到
// @Router /api/v1/daily [post]
func (h *EconomyHandler) Daily(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	res, err := h.svc.Daily.ClaimToday(c.Request.Context(), caller.UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, res)
}

// Slot 老虎机
// @Router /api/v1/slot [post]
func (h *EconomyHandler) Slot(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	var req SlotRequest
	if !web.BindAndValidate(c, &req) {
		return
	}
	res, err := h.svc.Slot.Spin(c.Request.Context(), caller.UserID, req.Bet)
	if err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, res)
}

// ListItems 商品列表
// @Router /api/v1/shop [get]
func (h *EconomyHandler) ListItems(c *gin.Context) {
	items, err := h.svc.Shop.ListItems(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, items)
}

// Buy 购买商品
// @Router /api/v1/shop/buy [post]
func (h *EconomyHandler) Buy(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	var req BuyRequest
	if !web.BindAndValidate(c, &req) {
		return
	}
	res, err := h.svc.Shop.Purchase(c.Request.Context(), caller.UserID, req.ItemID)
	if err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, res)
}

// Inventory 我的库存
// @Router /api/v1/inventory [get]
func (h *EconomyHandler) Inventory(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	entries, err := h.svc.Shop.ListInventory(c.Request.Context(), caller.UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, entries)
}

// Gacha 抽卡
// @Router /api/v1/gacha [post]
func (h *EconomyHandler) Gacha(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	var req GachaRequest
	if !web.BindOptionalJSON(c, &req) {
		return
	}
	res, err := h.svc.Gacha.Draw(c.Request.Context(), service.DrawRequest{
		UserID:  caller.UserID,
		GuildID: caller.GuildID,
		Price:   req.Price,
		Mode:    service.DrawMode(req.Mode),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, res)
}

// GachaList 奖池列表
// @Router /api/v1/gacha/rewards [get]
func (h *EconomyHandler) GachaList(c *gin.Context) {
	pool, err := h.svc.Gacha.ListRewards(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, pool)
}

// MyRewards 我获得的奖励
// @Router /api/v1/gacha/mine [get]
func (h *EconomyHandler) MyRewards(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	grants, err := h.svc.Gacha.MyRewards(c.Request.Context(), caller.UserID)
	if err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, grants)
}

// Leaderboard 排行榜
// @Router /api/v1/leaderboard [get]
func (h *EconomyHandler) Leaderboard(c *gin.Context) {
	top, err := h.svc.Leaderboard.Top(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, top)
}

// Status 运行状态，无需认证
// @Router /api/v1/status [get]
func (h *EconomyHandler) Status(c *gin.Context) {
	web.Success(c, h.svc.Status.Status(c.Request.Context()))
}
