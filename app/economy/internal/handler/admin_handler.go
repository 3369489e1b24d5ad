package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/coinbot/app/economy/internal/service"
	"github.com/lk2023060901/coinbot/pkg/web"
)

// RestockRequest 设置库存，-1 表示不限量
type RestockRequest struct {
	Stock *int64 `json:"stock" binding:"required"`
}

// AddMoneyRequest 加款
type AddMoneyRequest struct {
	UserID uint64 `json:"user_id,string" binding:"required"`
	Amount int64  `json:"amount"`
}

// SetBalanceRequest 设置余额
type SetBalanceRequest struct {
	UserID  uint64 `json:"user_id,string" binding:"required"`
	Balance *int64 `json:"balance" binding:"required"`
}

// AddItem 上架商品
// @Router /api/v1/admin/items [post]
func (h *EconomyHandler) AddItem(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	var req service.AddItemInput
	if !web.BindAndValidate(c, &req) {
		return
	}
	item, err := h.svc.Shop.AddItem(c.Request.Context(), caller, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, item)
}

// RemoveItem 下架商品
// @Router /api/v1/admin/items/{id} [delete]
func (h *EconomyHandler) RemoveItem(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := web.ParamInt64(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Shop.RemoveItem(c.Request.Context(), caller, id); err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, gin.H{"item_id": id})
}

// RestockItem 补货
// @Router /api/v1/admin/items/{id}/stock [put]
func (h *EconomyHandler) RestockItem(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := web.ParamInt64(c, "id")
	if !ok {
		return
	}
	var req RestockRequest
	if !web.BindAndValidate(c, &req) {
		return
	}
	item, err := h.svc.Shop.RestockItem(c.Request.Context(), caller, id, *req.Stock)
	if err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, item)
}

// AddReward 添加奖池条目
// @Router /api/v1/admin/rewards [post]
func (h *EconomyHandler) AddReward(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	var req service.AddRewardInput
	if !web.BindAndValidate(c, &req) {
		return
	}
	reward, err := h.svc.Gacha.AddReward(c.Request.Context(), caller, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, reward)
}

// RemoveReward 移除奖池条目
// @Router /api/v1/admin/rewards/{id} [delete]
func (h *EconomyHandler) RemoveReward(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	id, ok := web.ParamInt64(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Gacha.RemoveReward(c.Request.Context(), caller, id); err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, gin.H{"reward_id": id})
}

// AddMoney 管理员加款
// @Router /api/v1/admin/money [post]
func (h *EconomyHandler) AddMoney(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	var req AddMoneyRequest
	if !web.BindAndValidate(c, &req) {
		return
	}
	bal, err := h.svc.Ledger.AddMoney(c.Request.Context(), caller, req.UserID, req.Amount)
	if err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, BalanceResponse{UserID: req.UserID, Balance: bal})
}

// SetBalance 管理员设置余额
// @Router /api/v1/admin/balance [put]
func (h *EconomyHandler) SetBalance(c *gin.Context) {
	caller, ok := h.caller(c)
	if !ok {
		return
	}
	var req SetBalanceRequest
	if !web.BindAndValidate(c, &req) {
		return
	}
	bal, err := h.svc.Ledger.SetBalance(c.Request.Context(), caller, req.UserID, *req.Balance)
	if err != nil {
		h.fail(c, err)
		return
	}
	web.Success(c, BalanceResponse{UserID: req.UserID, Balance: bal})
}
