package model

import (
	"math"
	"time"
)

// DefaultStartingBalance 新账户初始余额
const DefaultStartingBalance int64 = 1000

// Account 用户账户，首次引用时惰性创建
type Account struct {
	UserID         uint64    `json:"user_id,string" db:"user_id"`
	Balance        int64     `json:"balance" db:"balance"`
	LastDailyClaim *Date     `json:"last_daily_claim,omitempty" db:"-"`
	DailyStreak    int       `json:"daily_streak" db:"daily_streak"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// NewAccount 以初始余额创建账户
func NewAccount(userID uint64, starting int64, now time.Time) *Account {
	return &Account{
		UserID:    userID,
		Balance:   starting,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone 深拷贝
func (a *Account) Clone() *Account {
	c := *a
	if a.LastDailyClaim != nil {
		d := *a.LastDailyClaim
		c.LastDailyClaim = &d
	}
	return &c
}

// CanAfford 余额是否足够
func (a *Account) CanAfford(amount int64) bool {
	return a.Balance >= amount
}

// Credit 增加余额，金额为负或结果超出 int64 时以 InvalidAmount 拒绝且不修改
func (a *Account) Credit(amount int64) error {
	if amount < 0 || a.Balance > math.MaxInt64-amount {
		return Reject(ErrInvalidAmount)
	}
	a.Balance += amount
	return nil
}

// Debit 扣减余额，不足时返回带余额信息的拒绝
func (a *Account) Debit(amount int64) error {
	if !a.CanAfford(amount) {
		return InsufficientFunds(a.Balance, amount)
	}
	a.Balance -= amount
	return nil
}

// InventoryEntry 背包日志条目，label 为购买时的展示名快照
type InventoryEntry struct {
	EntryID    int64     `json:"entry_id" db:"entry_id"`
	UserID     uint64    `json:"user_id" db:"user_id"`
	ItemID     int64     `json:"item_id" db:"item_id"`
	Label      string    `json:"label" db:"label"`
	AcquiredAt time.Time `json:"acquired_at" db:"acquired_at"`
}

// RewardGrant 抽卡获得记录
type RewardGrant struct {
	EntryID    int64     `json:"entry_id" db:"entry_id"`
	UserID     uint64    `json:"user_id" db:"user_id"`
	RewardID   int64     `json:"reward_id" db:"reward_id"`
	RoleRef    string    `json:"role_ref" db:"role_ref"`
	RewardName string    `json:"reward_name" db:"reward_name"`
	Rarity     Rarity    `json:"rarity,omitempty" db:"rarity"`
	GrantedAt  time.Time `json:"granted_at" db:"granted_at"`
}

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	Rank    int    `json:"rank"`
	UserID  uint64 `json:"user_id,string" db:"user_id"`
	Balance int64  `json:"balance" db:"balance"`
}
