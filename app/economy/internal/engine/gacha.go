package engine

import (
	"fmt"
	"math"

	"github.com/lk2023060901/coinbot/app/economy/internal/model"
)

// 概率以百分比表示，r 取自 [0, 100)
const percentScale = 100.0

// walk 按给定顺序累加权重，返回第一个 r < cumulative 的下标，未命中返回 -1
func walk(weights []float64, r float64) int {
	var cumulative float64
	for i, w := range weights {
		cumulative += w
		if r < cumulative {
			return i
		}
	}
	return -1
}

// TotalWeight 奖池总权重
func TotalWeight(pool []*model.GachaReward) float64 {
	var total float64
	for _, r := range pool {
		total += r.Weight
	}
	return total
}

// MissChance 未中概率（百分比）max(0, 100 - total)
func MissChance(pool []*model.GachaReward) float64 {
	return math.Max(0, percentScale-TotalWeight(pool))
}

// PickWeighted 按奖池顺序对 r 做累加遍历，nil 表示未中
func PickWeighted(pool []*model.GachaReward, r float64) *model.GachaReward {
	weights := make([]float64, len(pool))
	for i, entry := range pool {
		weights[i] = entry.Weight
	}
	if i := walk(weights, r); i >= 0 {
		return pool[i]
	}
	return nil
}

// DrawWeighted 每条独立概率的抽取，pool 顺序必须稳定（按 id）
func DrawWeighted(pool []*model.GachaReward, rng RandomSource) *model.GachaReward {
	return PickWeighted(pool, rng.Float64()*percentScale)
}

// PricedPool 单抽价格为 price 的子奖池，保持原顺序。
// Price 为 0 的奖励属于共享奖池，按 shared 计价。
func PricedPool(pool []*model.GachaReward, price, shared int64) []*model.GachaReward {
	out := make([]*model.GachaReward, 0, len(pool))
	for _, r := range pool {
		p := r.Price
		if p <= 0 {
			p = shared
		}
		if p == price {
			out = append(out, r)
		}
	}
	return out
}

// TierWeight 档位权重
type TierWeight struct {
	Rarity model.Rarity `mapstructure:"rarity" json:"rarity" validate:"required"`
	Weight float64      `mapstructure:"weight" json:"weight" validate:"gt=0"`
}

// TierTable 档位表，权重之和必须为 100
type TierTable []TierWeight

// DefaultTierTable Common 60 / Rare 25 / Epic 12 / Legendary 3
func DefaultTierTable() TierTable {
	return TierTable{
		{Rarity: model.RarityCommon, Weight: 60},
		{Rarity: model.RarityRare, Weight: 25},
		{Rarity: model.RarityEpic, Weight: 12},
		{Rarity: model.RarityLegendary, Weight: 3},
	}
}

// Validate 档位合法且总和为 100
func (t TierTable) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("tier table is empty")
	}
	var sum float64
	seen := make(map[model.Rarity]struct{}, len(t))
	for _, tw := range t {
		if r, ok := model.ParseRarity(string(tw.Rarity)); !ok || r == model.RarityNone {
			return fmt.Errorf("unknown rarity %q", tw.Rarity)
		}
		if _, ok := seen[tw.Rarity]; ok {
			return fmt.Errorf("duplicate rarity %q", tw.Rarity)
		}
		seen[tw.Rarity] = struct{}{}
		if tw.Weight <= 0 {
			return fmt.Errorf("tier %q weight must be positive", tw.Rarity)
		}
		sum += tw.Weight
	}
	if math.Abs(sum-percentScale) > 1e-9 {
		return fmt.Errorf("tier weights must sum to 100, got %v", sum)
	}
	return nil
}

// Pick 对档位表做累加遍历；浮点误差导致越界时落在最后一档
func (t TierTable) Pick(r float64) model.Rarity {
	weights := make([]float64, len(t))
	for i, tw := range t {
		weights[i] = tw.Weight
	}
	if i := walk(weights, r); i >= 0 {
		return t[i].Rarity
	}
	return t[len(t)-1].Rarity
}

// DrawTier 先抽档位，再在该档位内均匀抽取；档位为空时返回 nil
func DrawTier(pool []*model.GachaReward, table TierTable, rng RandomSource) (model.Rarity, *model.GachaReward) {
	tier := table.Pick(rng.Float64() * percentScale)

	var candidates []*model.GachaReward
	for _, r := range pool {
		if r.Rarity == tier {
			candidates = append(candidates, r)
		}
	}
	if len(candidates) == 0 {
		return tier, nil
	}
	return tier, candidates[rng.IntN(len(candidates))]
}
