package engine

import (
	"fmt"
	"math"
)

// SlotConfig 老虎机配置
type SlotConfig struct {
	// 符号表，至少 3 个且互不相同
	Symbols []string `mapstructure:"symbols" json:"symbols" validate:"min=3,unique,dive,required"`
	// 三连时的特殊倍率
	Jackpots map[string]int64 `mapstructure:"jackpots" json:"jackpots"`
	// 普通三连倍率
	TripleMultiplier int64 `mapstructure:"triple_multiplier" json:"triple_multiplier" validate:"gt=0"`
	// 两个相同倍率
	PairMultiplier int64 `mapstructure:"pair_multiplier" json:"pair_multiplier" validate:"gte=0"`
	// payout >= bet*BannerFactor 时标记 jackpot
	BannerFactor int64 `mapstructure:"banner_factor" json:"banner_factor" validate:"gt=0"`
}

// DefaultSlotConfig 默认符号表与倍率
func DefaultSlotConfig() *SlotConfig {
	return &SlotConfig{
		Symbols:          []string{"🍒", "🍋", "🍊", "🍇", "🍎", "💎", "⭐", "7️⃣"},
		Jackpots:         map[string]int64{"💎": 10, "7️⃣": 15, "⭐": 8},
		TripleMultiplier: 5,
		PairMultiplier:   2,
		BannerFactor:     10,
	}
}

// Validate 校验符号表与倍率
func (c *SlotConfig) Validate() error {
	if len(c.Symbols) < 3 {
		return fmt.Errorf("slot needs at least 3 symbols, got %d", len(c.Symbols))
	}
	seen := make(map[string]struct{}, len(c.Symbols))
	for _, s := range c.Symbols {
		if s == "" {
			return fmt.Errorf("slot symbol must not be empty")
		}
		if _, ok := seen[s]; ok {
			return fmt.Errorf("duplicate slot symbol %q", s)
		}
		seen[s] = struct{}{}
	}
	for s, m := range c.Jackpots {
		if _, ok := seen[s]; !ok {
			return fmt.Errorf("jackpot symbol %q not in symbol table", s)
		}
		if m <= 0 {
			return fmt.Errorf("jackpot multiplier for %q must be positive", s)
		}
	}
	if c.TripleMultiplier <= 0 || c.PairMultiplier < 0 || c.BannerFactor <= 0 {
		return fmt.Errorf("invalid slot multipliers")
	}
	return nil
}

// MaxMultiplier 所有结果中最大的派彩倍率
func (c *SlotConfig) MaxMultiplier() int64 {
	best := max(c.TripleMultiplier, c.PairMultiplier)
	for _, m := range c.Jackpots {
		best = max(best, m)
	}
	return best
}

// MatchKind 中奖类型
type MatchKind string

const (
	MatchJackpot MatchKind = "jackpot"
	MatchTriple  MatchKind = "triple"
	MatchPair    MatchKind = "pair"
	MatchNone    MatchKind = "none"
)

// SpinResult 一次转动的结果，不涉及账户
type SpinResult struct {
	Reels      [3]string `json:"reels"`
	Match      MatchKind `json:"match"`
	Multiplier int64     `json:"multiplier"`
	Bet        int64     `json:"bet"`
	Payout     int64     `json:"payout"`
	Net        int64     `json:"net"`
	Jackpot    bool      `json:"jackpot"`
}

// SlotMachine 纯计算的老虎机
type SlotMachine struct {
	cfg SlotConfig
}

// NewSlotMachine 校验并复制配置
func NewSlotMachine(cfg *SlotConfig) (*SlotMachine, error) {
	if cfg == nil {
		cfg = DefaultSlotConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := *cfg
	c.Symbols = append([]string(nil), cfg.Symbols...)
	c.Jackpots = make(map[string]int64, len(cfg.Jackpots))
	for k, v := range cfg.Jackpots {
		c.Jackpots[k] = v
	}
	return &SlotMachine{cfg: c}, nil
}

// MaxBet 任意结果的派彩都不会溢出 int64 的最大下注额
func (m *SlotMachine) MaxBet() int64 {
	return math.MaxInt64 / max(m.cfg.MaxMultiplier(), 1)
}

// Symbols 符号表副本
func (m *SlotMachine) Symbols() []string {
	return append([]string(nil), m.cfg.Symbols...)
}

// Spin 独立、有放回地抽取 3 个符号并结算
func (m *SlotMachine) Spin(bet int64, rng RandomSource) SpinResult {
	var reels [3]string
	for i := range reels {
		reels[i] = m.cfg.Symbols[rng.IntN(len(m.cfg.Symbols))]
	}
	return m.Evaluate(bet, reels)
}

// Evaluate 按 jackpot 三连 > 普通三连 > 两个相同 > 未中 的顺序结算，bet 不得超过 MaxBet
func (m *SlotMachine) Evaluate(bet int64, reels [3]string) SpinResult {
	res := SpinResult{Reels: reels, Bet: bet, Match: MatchNone}

	a, b, c := reels[0], reels[1], reels[2]
	switch {
	case a == b && b == c:
		if mult, ok := m.cfg.Jackpots[a]; ok {
			res.Match, res.Multiplier = MatchJackpot, mult
		} else {
			res.Match, res.Multiplier = MatchTriple, m.cfg.TripleMultiplier
		}
	case a == b || b == c || a == c:
		res.Match, res.Multiplier = MatchPair, m.cfg.PairMultiplier
	}

	res.Payout = bet * res.Multiplier
	res.Net = res.Payout - bet
	// payout >= bet*banner 等价于 multiplier >= banner，避免再做一次乘法
	res.Jackpot = res.Payout > 0 && res.Multiplier >= m.cfg.BannerFactor
	return res
}
