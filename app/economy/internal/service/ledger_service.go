package service

import (
	"context"

	"github.com/lk2023060901/coinbot/app/economy/internal/event"
	"github.com/lk2023060901/coinbot/app/economy/internal/model"
	"github.com/lk2023060901/coinbot/app/economy/internal/repository"
	"github.com/lk2023060901/coinbot/pkg/logger"
	"github.com/lk2023060901/coinbot/pkg/security"
)

// LedgerService 账户余额
type LedgerService struct {
	*Deps
	logger logger.Logger
}

// NewLedgerService 创建账本服务
func NewLedgerService(l logger.Logger, deps *Deps) *LedgerService {
	return &LedgerService{Deps: deps, logger: l.Named("service.ledger")}
}

// GetBalance 返回余额，账户不存在时以初始余额创建
func (s *LedgerService) GetBalance(ctx context.Context, userID uint64) (int64, error) {
	var balance int64
	err := s.Repo.RunInTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		acc, _, err := s.lockAccount(ctx, tx, userID)
		if err != nil {
			return err
		}
		balance = acc.Balance
		return nil
	})
	if err != nil {
		return 0, s.finish(ctx, s.logger, "balance", err)
	}
	return balance, nil
}

// Credit 增加余额
func (s *LedgerService) Credit(ctx context.Context, userID uint64, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, s.finish(ctx, s.logger, "credit", model.Reject(model.ErrInvalidAmount))
	}
	balance, err := s.mutate(ctx, userID, func(acc *model.Account) error {
		return acc.Credit(amount)
	})
	return balance, s.finish(ctx, s.logger, "credit", err)
}

// Debit 扣减余额，余额不足时拒绝且不修改
func (s *LedgerService) Debit(ctx context.Context, userID uint64, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, s.finish(ctx, s.logger, "debit", model.Reject(model.ErrInvalidAmount))
	}
	balance, err := s.mutate(ctx, userID, func(acc *model.Account) error {
		return acc.Debit(amount)
	})
	return balance, s.finish(ctx, s.logger, "debit", err)
}

// SetBalance 管理员直接设置余额
func (s *LedgerService) SetBalance(ctx context.Context, caller security.Caller, userID uint64, value int64) (int64, error) {
	if err := authorize(ctx, s.Auth, caller, ActionSetBalance); err != nil {
		return 0, s.finish(ctx, s.logger, ActionSetBalance, err)
	}
	if value < 0 {
		return 0, s.finish(ctx, s.logger, ActionSetBalance, model.Reject(model.ErrInvalidAmount))
	}

	var previous int64
	balance, err := s.mutate(ctx, userID, func(acc *model.Account) error {
		previous = acc.Balance
		acc.Balance = value
		return nil
	})
	if err != nil {
		return 0, s.finish(ctx, s.logger, ActionSetBalance, err)
	}

	s.logger.InfoContext(ctx, "balance overridden", "user_id", userID, "from", previous, "to", balance, "actor", caller.UserID)
	ev := event.New(event.TypeBalanceSet, userID)
	ev.ActorID, ev.Amount, ev.Balance = caller.UserID, balance-previous, balance
	s.publish(ctx, s.logger, ev)
	return balance, s.finish(ctx, s.logger, ActionSetBalance, nil)
}

// AddMoney 管理员为用户加款
func (s *LedgerService) AddMoney(ctx context.Context, caller security.Caller, userID uint64, amount int64) (int64, error) {
	if err := authorize(ctx, s.Auth, caller, ActionAddMoney); err != nil {
		return 0, s.finish(ctx, s.logger, ActionAddMoney, err)
	}
	balance, err := s.Credit(ctx, userID, amount)
	if err != nil {
		return 0, err
	}

	s.logger.InfoContext(ctx, "money added", "user_id", userID, "amount", amount, "actor", caller.UserID)
	ev := event.New(event.TypeBalanceAdded, userID)
	ev.ActorID, ev.Amount, ev.Balance = caller.UserID, amount, balance
	s.publish(ctx, s.logger, ev)
	return balance, nil
}

// mutate 在用户锁与事务内修改账户并持久化
func (s *LedgerService) mutate(ctx context.Context, userID uint64, fn func(acc *model.Account) error) (int64, error) {
	var balance int64
	err := s.inAccount(ctx, userID, func(ctx context.Context, tx repository.Tx) error {
		acc, _, err := s.lockAccount(ctx, tx, userID)
		if err != nil {
			return err
		}
		if err := fn(acc); err != nil {
			return err
		}
		if err := tx.SaveAccount(ctx, acc); err != nil {
			return err
		}
		balance = acc.Balance
		return nil
	})
	return balance, err
}
