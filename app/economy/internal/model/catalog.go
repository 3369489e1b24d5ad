package model

import (
	"strings"
	"time"
)

// UnlimitedStock 库存无限的哨兵值
const UnlimitedStock int64 = -1

// ShopItem 商店商品
type ShopItem struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Emoji       string    `json:"emoji" db:"emoji"`
	Price       int64     `json:"price" db:"price"`
	Description string    `json:"description" db:"description"`
	Stock       int64     `json:"stock" db:"stock"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

func (i *ShopItem) Unlimited() bool { return i.Stock == UnlimitedStock }

// InStock 无限库存或剩余大于 0
func (i *ShopItem) InStock() bool {
	return i.Unlimited() || i.Stock > 0
}

// Label 写入背包的展示名
func (i *ShopItem) Label() string {
	if i.Emoji == "" {
		return i.Name
	}
	return i.Emoji + " " + i.Name
}

// Rarity 稀有度档位
type Rarity string

const (
	RarityNone      Rarity = ""
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// Rarities 档位的固定顺序，档位抽取时按此顺序累加
var Rarities = []Rarity{RarityCommon, RarityRare, RarityEpic, RarityLegendary}

// ParseRarity 大小写不敏感，空串表示不分档
func ParseRarity(s string) (Rarity, bool) {
	r := Rarity(strings.ToLower(strings.TrimSpace(s)))
	if r == RarityNone {
		return RarityNone, true
	}
	for _, known := range Rarities {
		if r == known {
			return r, true
		}
	}
	return RarityNone, false
}

// Weight 概率的合法区间（百分比）
const (
	MinRewardWeight = 0.1
	MaxRewardWeight = 100.0
)

// GachaReward 抽卡奖池条目
type GachaReward struct {
	ID          int64     `json:"id" db:"id"`
	RoleRef     string    `json:"role_ref" db:"role_ref"`
	Name        string    `json:"name" db:"name"`
	Rarity      Rarity    `json:"rarity,omitempty" db:"rarity"`
	Weight      float64   `json:"weight" db:"weight"`
	Price       int64     `json:"price" db:"price"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Grant 生成一条获得记录
func (r *GachaReward) Grant(userID uint64, entryID int64, at time.Time) *RewardGrant {
	return &RewardGrant{
		EntryID:    entryID,
		UserID:     userID,
		RewardID:   r.ID,
		RoleRef:    r.RoleRef,
		RewardName: r.Name,
		Rarity:     r.Rarity,
		GrantedAt:  at,
	}
}

// DrawOutcome 抽卡结果类型
type DrawOutcome string

const (
	OutcomeMiss      DrawOutcome = "miss"
	OutcomeWon       DrawOutcome = "won"
	OutcomeDuplicate DrawOutcome = "duplicate"
)
