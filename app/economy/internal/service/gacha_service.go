package service

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"

	"github.com/lk2023060901/coinbot/app/economy/internal/engine"
	"github.com/lk2023060901/coinbot/app/economy/internal/event"
	"github.com/lk2023060901/coinbot/app/economy/internal/grant"
	"github.com/lk2023060901/coinbot/app/economy/internal/model"
	"github.com/lk2023060901/coinbot/app/economy/internal/repository"
	"github.com/lk2023060901/coinbot/pkg/idgen"
	"github.com/lk2023060901/coinbot/pkg/logger"
	"github.com/lk2023060901/coinbot/pkg/security"
)

// DrawMode 抽取方式
type DrawMode string

const (
	// ModeWeighted 按条目权重（百分比）抽取，未命中为 Miss
	ModeWeighted DrawMode = "weighted"
	// ModeTier 先按稀有度档位抽取，再在档内等概率抽取
	ModeTier DrawMode = "tier"
)

// DrawRequest 抽卡请求
type DrawRequest struct {
	UserID  uint64
	GuildID uint64
	// Price 为空时使用配置的默认花费，否则选择该价格的子奖池
	Price *int64
	// Mode 为空时使用配置的默认方式
	Mode DrawMode
}

// DrawResult 抽卡结果
type DrawResult struct {
	Outcome    model.DrawOutcome  `json:"outcome"`
	Reward     *model.GachaReward `json:"reward,omitempty"`
	Tier       model.Rarity       `json:"tier,omitempty"`
	Cost       int64              `json:"cost"`
	NewBalance int64              `json:"new_balance"`
	// Warning 外部角色授予失败时非空，账本已提交不回滚
	Warning string `json:"warning,omitempty"`
}

// GachaPool 奖池概览
type GachaPool struct {
	Rewards     []*model.GachaReward `json:"rewards"`
	TotalWeight float64              `json:"total_weight"`
	MissChance  float64              `json:"miss_chance"`
	Cost        int64                `json:"cost"`
}

// AddRewardInput 添加奖池条目参数
type AddRewardInput struct {
	RoleRef     string  `json:"role_ref" binding:"required,max=64"`
	Name        string  `json:"name" binding:"required,max=100"`
	Rarity      string  `json:"rarity"`
	Weight      float64 `json:"weight" binding:"required"`
	Price       int64   `json:"price"`
	Description string  `json:"description" binding:"max=500"`
}

// GachaService 抽卡
type GachaService struct {
	*Deps
	logger    logger.Logger
	ids       idgen.Generator
	authority grant.Authority
	sources   engine.SourceFactory
}

// NewGachaService 创建抽卡服务
func NewGachaService(
	l logger.Logger,
	deps *Deps,
	ids idgen.Generator,
	authority grant.Authority,
	sources engine.SourceFactory,
) *GachaService {
	return &GachaService{
		Deps:      deps,
		logger:    l.Named("service.gacha"),
		ids:       ids,
		authority: authority,
		sources:   sources,
	}
}

// ListRewards 奖池按权重降序、ID 升序排列，并给出未命中概率
func (s *GachaService) ListRewards(ctx context.Context) (*GachaPool, error) {
	rewards, err := s.Repo.ListRewards(ctx)
	if err != nil {
		return nil, s.finish(ctx, s.logger, "gachalist", err)
	}

	pool := &GachaPool{
		TotalWeight: engine.TotalWeight(rewards),
		MissChance:  engine.MissChance(rewards),
		Cost:        s.Config.Get().Gacha.Cost,
	}
	slices.SortStableFunc(rewards, func(a, b *model.GachaReward) int {
		if c := cmp.Compare(b.Weight, a.Weight); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	pool.Rewards = rewards
	return pool, nil
}

// MyRewards 用户获得过的奖励，包含重复抽中的记录
func (s *GachaService) MyRewards(ctx context.Context, userID uint64) ([]*model.RewardGrant, error) {
	grants, err := s.Repo.ListRewardGrants(ctx, userID)
	if err != nil {
		return nil, s.finish(ctx, s.logger, "my_rewards", err)
	}
	return grants, nil
}

// Draw 抽卡
// 指定价格时只在该价格的子奖池内抽取并按该价格扣费，Price 为 0 的奖励按配置花费计价。
// 奖池为空时在扣费前拒绝；其余情况先扣费，未命中也不退还。
// 档位模式抽中空档位时扣费照常提交，以 EmptyPool 拒绝返回并带上已扣金额。
func (s *GachaService) Draw(ctx context.Context, req DrawRequest) (*DrawResult, error) {
	cfg := s.Config.Get()
	cost := cfg.Gacha.Cost
	if req.Price != nil {
		cost = *req.Price
	}
	if cost <= 0 {
		return nil, s.finish(ctx, s.logger, "gacha", model.Reject(model.ErrInvalidAmount))
	}
	mode := req.Mode
	if mode == "" {
		mode = DrawMode(cfg.Gacha.DefaultMode)
	}
	if mode != ModeWeighted && mode != ModeTier {
		return nil, s.finish(ctx, s.logger, "gacha", model.Reject(model.ErrInvalidAmount))
	}

	rng := s.sources.NewSource()
	res := &DrawResult{Outcome: model.OutcomeMiss, Cost: cost}
	emptyTier := false

	err := s.inAccount(ctx, req.UserID, func(ctx context.Context, tx repository.Tx) error {
		pool, err := tx.ListRewards(ctx)
		if err != nil {
			return err
		}
		pool = engine.PricedPool(pool, cost, cfg.Gacha.Cost)
		if len(pool) == 0 {
			return model.Reject(model.ErrEmptyPool)
		}

		acc, _, err := s.lockAccount(ctx, tx, req.UserID)
		if err != nil {
			return err
		}
		if err := acc.Debit(cost); err != nil {
			return err
		}
		now := time.Now()
		acc.UpdatedAt = now
		if err := tx.SaveAccount(ctx, acc); err != nil {
			return err
		}
		res.NewBalance = acc.Balance

		var reward *model.GachaReward
		switch mode {
		case ModeTier:
			res.Tier, reward = engine.DrawTier(pool, cfg.Gacha.Tiers, rng)
			emptyTier = reward == nil
		default:
			reward = engine.DrawWeighted(pool, rng)
		}
		if reward == nil {
			return nil
		}

		owned, err := tx.HasRewardGrant(ctx, req.UserID, reward.RoleRef)
		if err != nil {
			return err
		}
		entryID, err := s.ids.NextID()
		if err != nil {
			return err
		}
		if err := tx.AppendRewardGrant(ctx, reward.Grant(req.UserID, entryID, now)); err != nil {
			return err
		}

		res.Reward = reward
		if owned {
			res.Outcome = model.OutcomeDuplicate
		} else {
			res.Outcome = model.OutcomeWon
		}
		return nil
	})
	if err != nil {
		return nil, s.finish(ctx, s.logger, "gacha", err)
	}

	s.Metrics.RecordGacha(string(mode), string(res.Outcome))
	ev := event.New(event.TypeGachaDrawn, req.UserID)
	ev.Amount, ev.Balance = -cost, res.NewBalance
	ev.Data = map[string]any{"mode": mode, "outcome": res.Outcome}
	if res.Tier != model.RarityNone {
		ev.Data["tier"] = res.Tier
	}
	if res.Reward != nil {
		ev.Data["reward_id"] = res.Reward.ID
	}

	if emptyTier {
		ev.Data["empty_tier"] = true
		s.publish(ctx, s.logger, ev)
		s.logger.WarnContext(ctx, "gacha tier has no rewards", "user_id", req.UserID, "tier", res.Tier, "charged", cost)
		return nil, s.finish(ctx, s.logger, "gacha", model.EmptyTier(res.Tier, cost, res.NewBalance))
	}

	if res.Outcome == model.OutcomeWon {
		err := s.authority.Grant(ctx, grant.Request{
			UserID:     req.UserID,
			GuildID:    req.GuildID,
			RoleRef:    res.Reward.RoleRef,
			RewardID:   res.Reward.ID,
			RewardName: res.Reward.Name,
		})
		s.Metrics.RecordGrant(err == nil)
		if err != nil {
			res.Warning = model.ErrExternalGrantFailed.Error()
			ev.Data["warning"] = res.Warning
			s.logger.WarnContext(ctx, "external role grant failed",
				"user_id", req.UserID,
				"role_ref", res.Reward.RoleRef,
				"error", err,
			)
		}
	}

	s.logger.InfoContext(ctx, "gacha drawn",
		"user_id", req.UserID,
		"mode", mode,
		"outcome", res.Outcome,
		"cost", cost,
		"balance", res.NewBalance,
	)
	s.publish(ctx, s.logger, ev)
	return res, s.finish(ctx, s.logger, "gacha", nil)
}

// AddReward 添加奖池条目，role_ref 不可重复
func (s *GachaService) AddReward(ctx context.Context, caller security.Caller, in AddRewardInput) (*model.GachaReward, error) {
	if err := authorize(ctx, s.Auth, caller, ActionAddReward); err != nil {
		return nil, s.finish(ctx, s.logger, ActionAddReward, err)
	}

	rarity := model.RarityNone
	if in.Rarity != "" {
		r, ok := model.ParseRarity(in.Rarity)
		if !ok {
			return nil, s.finish(ctx, s.logger, ActionAddReward, model.Reject(model.ErrInvalidAmount))
		}
		rarity = r
	}
	ref, name := strings.TrimSpace(in.RoleRef), strings.TrimSpace(in.Name)
	if in.Weight < model.MinRewardWeight || in.Weight > model.MaxRewardWeight ||
		in.Price < 0 || ref == "" || name == "" {
		return nil, s.finish(ctx, s.logger, ActionAddReward, model.Reject(model.ErrInvalidAmount))
	}

	reward := &model.GachaReward{
		RoleRef:     ref,
		Name:        name,
		Rarity:      rarity,
		Weight:      in.Weight,
		Price:       in.Price,
		Description: in.Description,
		CreatedAt:   time.Now(),
	}
	err := s.Repo.RunInTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		return tx.InsertReward(ctx, reward)
	})
	if err != nil {
		return nil, s.finish(ctx, s.logger, ActionAddReward, err)
	}

	s.logger.InfoContext(ctx, "gacha reward added",
		"reward_id", reward.ID,
		"role_ref", reward.RoleRef,
		"weight", reward.Weight,
		"actor", caller.UserID,
	)
	s.rewardChanged(ctx, caller, reward.ID, "added")
	return reward, s.finish(ctx, s.logger, ActionAddReward, nil)
}

// RemoveReward 移除奖池条目，已有的获得记录保留
func (s *GachaService) RemoveReward(ctx context.Context, caller security.Caller, rewardID int64) error {
	if err := authorize(ctx, s.Auth, caller, ActionRemoveReward); err != nil {
		return s.finish(ctx, s.logger, ActionRemoveReward, err)
	}
	err := s.Repo.RunInTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		ok, err := tx.DeleteReward(ctx, rewardID)
		if err != nil {
			return err
		}
		if !ok {
			return model.RewardNotFound(rewardID)
		}
		return nil
	})
	if err != nil {
		return s.finish(ctx, s.logger, ActionRemoveReward, err)
	}

	s.logger.InfoContext(ctx, "gacha reward removed", "reward_id", rewardID, "actor", caller.UserID)
	s.rewardChanged(ctx, caller, rewardID, "removed")
	return s.finish(ctx, s.logger, ActionRemoveReward, nil)
}

func (s *GachaService) rewardChanged(ctx context.Context, caller security.Caller, rewardID int64, change string) {
	ev := event.New(event.TypeRewardChange, 0)
	ev.ActorID = caller.UserID
	ev.Data = map[string]any{"reward_id": rewardID, "change": change}
	s.publish(ctx, s.logger, ev)
}
