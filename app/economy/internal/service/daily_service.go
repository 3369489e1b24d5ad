package service

import (
	"context"
	"time"

	"github.com/lk2023060901/coinbot/app/economy/internal/event"
	"github.com/lk2023060901/coinbot/app/economy/internal/model"
	"github.com/lk2023060901/coinbot/app/economy/internal/repository"
	"github.com/lk2023060901/coinbot/pkg/logger"
)

// DailyResult 签到结果
type DailyResult struct {
	Bonus       int64 `json:"bonus"`
	StreakBonus int64 `json:"streak_bonus"`
	// 新账户的初始余额，已计入 NewBalance，不重复发放
	WelcomeBonus int64      `json:"welcome_bonus,omitempty"`
	Credited     int64      `json:"credited"`
	NewBalance   int64      `json:"new_balance"`
	Streak       int        `json:"streak"`
	ClaimedOn    model.Date `json:"claimed_on"`
	NextEligible model.Date `json:"next_eligible"`
}

// DailyService 每日签到
type DailyService struct {
	*Deps
	logger logger.Logger
	now    func() time.Time
}

// NewDailyService 创建签到服务
func NewDailyService(l logger.Logger, deps *Deps) *DailyService {
	return &DailyService{Deps: deps, logger: l.Named("service.daily"), now: time.Now}
}

// Today 配置时区下的当前日期
func (s *DailyService) Today() model.Date {
	return model.DateOf(s.now().In(s.Config.Get().Location()))
}

// ClaimToday 以配置时区的今天签到
func (s *DailyService) ClaimToday(ctx context.Context, userID uint64) (*DailyResult, error) {
	return s.Claim(ctx, userID, s.Today())
}

// Claim 以调用方给定的日期签到；同一天（或更早）重复签到被拒绝
func (s *DailyService) Claim(ctx context.Context, userID uint64, today model.Date) (*DailyResult, error) {
	cfg := s.Config.Get()
	var res *DailyResult

	err := s.inAccount(ctx, userID, func(ctx context.Context, tx repository.Tx) error {
		acc, created, err := s.lockAccount(ctx, tx, userID)
		if err != nil {
			return err
		}

		last := acc.LastDailyClaim
		if last != nil && !last.Before(today) {
			return model.AlreadyClaimed(today.AddDays(1), acc.Balance)
		}

		r := &DailyResult{
			Bonus:        cfg.Daily.BaseBonus,
			ClaimedOn:    today,
			NextEligible: today.AddDays(1),
		}
		if created {
			r.WelcomeBonus = acc.Balance
		}
		if last != nil && today.DaysSince(*last) == 1 {
			r.StreakBonus = cfg.Daily.StreakBonus
			acc.DailyStreak++
		} else {
			acc.DailyStreak = 1
		}

		r.Credited = r.Bonus + r.StreakBonus
		if err := acc.Credit(r.Credited); err != nil {
			return err
		}
		acc.LastDailyClaim = &today
		if err := tx.SaveAccount(ctx, acc); err != nil {
			return err
		}

		r.NewBalance, r.Streak = acc.Balance, acc.DailyStreak
		res = r
		return nil
	})
	if err != nil {
		return nil, s.finish(ctx, s.logger, "daily", err)
	}

	s.logger.InfoContext(ctx, "daily bonus claimed",
		"user_id", userID,
		"credited", res.Credited,
		"streak", res.Streak,
		"balance", res.NewBalance,
	)
	ev := event.New(event.TypeDailyClaimed, userID)
	ev.Amount, ev.Balance = res.Credited, res.NewBalance
	ev.Data = map[string]any{"streak": res.Streak, "date": res.ClaimedOn.String()}
	s.publish(ctx, s.logger, ev)
	return res, s.finish(ctx, s.logger, "daily", nil)
}
