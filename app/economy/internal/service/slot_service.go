package service

import (
	"context"

	"github.com/lk2023060901/coinbot/app/economy/internal/engine"
	"github.com/lk2023060901/coinbot/app/economy/internal/event"
	"github.com/lk2023060901/coinbot/app/economy/internal/model"
	"github.com/lk2023060901/coinbot/app/economy/internal/repository"
	"github.com/lk2023060901/coinbot/pkg/logger"
)

// SlotResult 转动结果与结算后余额
type SlotResult struct {
	engine.SpinResult
	NewBalance int64 `json:"new_balance"`
}

// SlotService 老虎机
type SlotService struct {
	*Deps
	logger  logger.Logger
	sources engine.SourceFactory
}

// NewSlotService 创建老虎机服务
func NewSlotService(l logger.Logger, deps *Deps, sources engine.SourceFactory) *SlotService {
	return &SlotService{Deps: deps, logger: l.Named("service.slot"), sources: sources}
}

// Spin 先扣下注再派彩，两步在同一事务内完成
func (s *SlotService) Spin(ctx context.Context, userID uint64, bet int64) (*SlotResult, error) {
	if bet <= 0 {
		return nil, s.finish(ctx, s.logger, "slot", model.Reject(model.ErrInvalidAmount))
	}

	machine, err := engine.NewSlotMachine(&s.Config.Get().Slot)
	if err != nil {
		return nil, s.finish(ctx, s.logger, "slot", err)
	}
	if bet > machine.MaxBet() {
		return nil, s.finish(ctx, s.logger, "slot", model.Reject(model.ErrInvalidAmount))
	}
	rng := s.sources.NewSource()

	var res *SlotResult
	err = s.inAccount(ctx, userID, func(ctx context.Context, tx repository.Tx) error {
		acc, _, err := s.lockAccount(ctx, tx, userID)
		if err != nil {
			return err
		}
		if err := acc.Debit(bet); err != nil {
			return err
		}

		spin := machine.Spin(bet, rng)
		if err := acc.Credit(spin.Payout); err != nil {
			return err
		}
		if err := tx.SaveAccount(ctx, acc); err != nil {
			return err
		}
		res = &SlotResult{SpinResult: spin, NewBalance: acc.Balance}
		return nil
	})
	if err != nil {
		return nil, s.finish(ctx, s.logger, "slot", err)
	}

	s.Metrics.RecordSlot(string(res.Match), bet, res.Payout)
	if res.Jackpot {
		s.logger.InfoContext(ctx, "slot jackpot", "user_id", userID, "bet", bet, "payout", res.Payout)
	}
	ev := event.New(event.TypeSlotSpun, userID)
	ev.Amount, ev.Balance = res.Net, res.NewBalance
	ev.Data = map[string]any{"bet": bet, "reels": res.Reels, "match": res.Match}
	s.publish(ctx, s.logger, ev)
	return res, s.finish(ctx, s.logger, "slot", nil)
}
