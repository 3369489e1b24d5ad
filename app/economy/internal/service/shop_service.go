package service

import (
	"context"
	"strings"
	"time"

	"github.com/lk2023060901/coinbot/app/economy/internal/event"
	"github.com/lk2023060901/coinbot/app/economy/internal/model"
	"github.com/lk2023060901/coinbot/app/economy/internal/repository"
	"github.com/lk2023060901/coinbot/pkg/idgen"
	"github.com/lk2023060901/coinbot/pkg/logger"
	"github.com/lk2023060901/coinbot/pkg/security"
)

// PurchaseResult 购买结果
type PurchaseResult struct {
	Item       *model.ShopItem `json:"item"`
	NewBalance int64           `json:"new_balance"`
	// 购买后的剩余库存，不限量商品为 -1
	RemainingStock int64 `json:"remaining_stock"`
}

// AddItemInput 上架商品参数
type AddItemInput struct {
	Name        string `json:"name" binding:"required,max=100"`
	Emoji       string `json:"emoji" binding:"max=32"`
	Price       int64  `json:"price" binding:"required"`
	Description string `json:"description" binding:"max=500"`
	// Stock 为空时不限量
	Stock *int64 `json:"stock"`
}

// ShopService 商店与库存
type ShopService struct {
	*Deps
	logger logger.Logger
	ids    idgen.Generator
}

// NewShopService 创建商店服务
func NewShopService(l logger.Logger, deps *Deps, ids idgen.Generator) *ShopService {
	return &ShopService{Deps: deps, logger: l.Named("service.shop"), ids: ids}
}

// ListItems 按上架顺序列出商品
func (s *ShopService) ListItems(ctx context.Context) ([]*model.ShopItem, error) {
	items, err := s.Repo.ListItems(ctx)
	if err != nil {
		return nil, s.finish(ctx, s.logger, "shop", err)
	}
	return items, nil
}

// ListInventory 用户库存，保留重复购买的每一条记录
func (s *ShopService) ListInventory(ctx context.Context, userID uint64) ([]*model.InventoryEntry, error) {
	entries, err := s.Repo.ListInventory(ctx, userID)
	if err != nil {
		return nil, s.finish(ctx, s.logger, "inventory", err)
	}
	return entries, nil
}

// Purchase 购买商品
// 依次检查 商品不存在 -> 售罄 -> 余额不足；成功时扣款、扣库存、写库存日志在同一事务内完成
func (s *ShopService) Purchase(ctx context.Context, userID uint64, itemID int64) (*PurchaseResult, error) {
	var res *PurchaseResult
	err := s.inAccount(ctx, userID, func(ctx context.Context, tx repository.Tx) error {
		item, err := tx.LockItem(ctx, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return model.ItemNotFound(itemID)
		}
		if !item.InStock() {
			return model.OutOfStock(itemID, item.Stock)
		}

		acc, _, err := s.lockAccount(ctx, tx, userID)
		if err != nil {
			return err
		}
		if err := acc.Debit(item.Price); err != nil {
			return err
		}
		if !item.Unlimited() {
			item.Stock--
			if err := tx.UpdateItemStock(ctx, item.ID, item.Stock); err != nil {
				return err
			}
		}

		entryID, err := s.ids.NextID()
		if err != nil {
			return err
		}
		now := time.Now()
		if err := tx.AppendInventory(ctx, &model.InventoryEntry{
			EntryID:    entryID,
			UserID:     userID,
			ItemID:     item.ID,
			Label:      item.Label(),
			AcquiredAt: now,
		}); err != nil {
			return err
		}
		acc.UpdatedAt = now
		if err := tx.SaveAccount(ctx, acc); err != nil {
			return err
		}

		res = &PurchaseResult{Item: item, NewBalance: acc.Balance, RemainingStock: item.Stock}
		return nil
	})
	if err != nil {
		return nil, s.finish(ctx, s.logger, "buy", err)
	}

	s.logger.InfoContext(ctx, "item purchased",
		"user_id", userID,
		"item_id", itemID,
		"price", res.Item.Price,
		"balance", res.NewBalance,
	)
	ev := event.New(event.TypePurchased, userID)
	ev.Amount, ev.Balance = -res.Item.Price, res.NewBalance
	ev.Data = map[string]any{"item_id": itemID, "label": res.Item.Label(), "remaining_stock": res.RemainingStock}
	s.publish(ctx, s.logger, ev)
	return res, s.finish(ctx, s.logger, "buy", nil)
}

// AddItem 上架商品
func (s *ShopService) AddItem(ctx context.Context, caller security.Caller, in AddItemInput) (*model.ShopItem, error) {
	if err := authorize(ctx, s.Auth, caller, ActionAddItem); err != nil {
		return nil, s.finish(ctx, s.logger, ActionAddItem, err)
	}

	stock := int64(model.UnlimitedStock)
	if in.Stock != nil {
		stock = *in.Stock
	}
	if in.Price <= 0 || stock < model.UnlimitedStock || strings.TrimSpace(in.Name) == "" {
		return nil, s.finish(ctx, s.logger, ActionAddItem, model.Reject(model.ErrInvalidAmount))
	}

	item := &model.ShopItem{
		Name:        strings.TrimSpace(in.Name),
		Emoji:       strings.TrimSpace(in.Emoji),
		Price:       in.Price,
		Description: in.Description,
		Stock:       stock,
		CreatedAt:   time.Now(),
	}
	err := s.Repo.RunInTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		return tx.InsertItem(ctx, item)
	})
	if err != nil {
		return nil, s.finish(ctx, s.logger, ActionAddItem, err)
	}

	s.logger.InfoContext(ctx, "shop item added", "item_id", item.ID, "name", item.Name, "price", item.Price, "actor", caller.UserID)
	s.itemChanged(ctx, caller, item.ID, "added")
	return item, s.finish(ctx, s.logger, ActionAddItem, nil)
}

// RemoveItem 下架商品，已购库存记录保留
func (s *ShopService) RemoveItem(ctx context.Context, caller security.Caller, itemID int64) error {
	if err := authorize(ctx, s.Auth, caller, ActionRemoveItem); err != nil {
		return s.finish(ctx, s.logger, ActionRemoveItem, err)
	}
	err := s.Repo.RunInTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		ok, err := tx.DeleteItem(ctx, itemID)
		if err != nil {
			return err
		}
		if !ok {
			return model.ItemNotFound(itemID)
		}
		return nil
	})
	if err != nil {
		return s.finish(ctx, s.logger, ActionRemoveItem, err)
	}

	s.logger.InfoContext(ctx, "shop item removed", "item_id", itemID, "actor", caller.UserID)
	s.itemChanged(ctx, caller, itemID, "removed")
	return s.finish(ctx, s.logger, ActionRemoveItem, nil)
}

// RestockItem 设置商品库存，-1 表示不限量
func (s *ShopService) RestockItem(ctx context.Context, caller security.Caller, itemID, stock int64) (*model.ShopItem, error) {
	if err := authorize(ctx, s.Auth, caller, ActionRestockItem); err != nil {
		return nil, s.finish(ctx, s.logger, ActionRestockItem, err)
	}
	if stock < model.UnlimitedStock {
		return nil, s.finish(ctx, s.logger, ActionRestockItem, model.Reject(model.ErrInvalidAmount))
	}

	var item *model.ShopItem
	err := s.Repo.RunInTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		item, err = tx.LockItem(ctx, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return model.ItemNotFound(itemID)
		}
		item.Stock = stock
		return tx.UpdateItemStock(ctx, itemID, stock)
	})
	if err != nil {
		return nil, s.finish(ctx, s.logger, ActionRestockItem, err)
	}

	s.logger.InfoContext(ctx, "shop item restocked", "item_id", itemID, "stock", stock, "actor", caller.UserID)
	s.itemChanged(ctx, caller, itemID, "restocked")
	return item, s.finish(ctx, s.logger, ActionRestockItem, nil)
}

func (s *ShopService) itemChanged(ctx context.Context, caller security.Caller, itemID int64, change string) {
	ev := event.New(event.TypeItemChanged, 0)
	ev.ActorID = caller.UserID
	ev.Data = map[string]any{"item_id": itemID, "change": change}
	s.publish(ctx, s.logger, ev)
}
