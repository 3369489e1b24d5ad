package model

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// 业务拒绝类型，均为可恢复结果，使用 errors.Is 判断
var (
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrItemNotFound        = errors.New("item not found")
	ErrOutOfStock          = errors.New("out of stock")
	ErrRewardNotFound      = errors.New("reward not found")
	ErrDuplicateReward     = errors.New("duplicate reward")
	ErrAlreadyClaimedToday = errors.New("already claimed today")
	ErrEmptyPool           = errors.New("empty pool")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrExternalGrantFailed = errors.New("external grant failed")
	ErrMigrationSkipped    = errors.New("migration skipped")
)

// Rejection 携带用户自行纠正所需状态的业务拒绝
type Rejection struct {
	kind error

	Balance      *int64 `json:"balance,omitempty"`
	Required     int64  `json:"required,omitempty"`
	Stock        *int64 `json:"stock,omitempty"`
	NextEligible *Date  `json:"next_eligible,omitempty"`
	Tier         Rarity `json:"tier,omitempty"`
	Charged      int64  `json:"charged,omitempty"`
	ItemID       int64  `json:"item_id,omitempty"`
	RewardID     int64  `json:"reward_id,omitempty"`
	RoleRef      string `json:"role_ref,omitempty"`
}

// Reject 不带附加状态的拒绝
func Reject(kind error) *Rejection {
	return &Rejection{kind: kind}
}

func InsufficientFunds(balance, required int64) *Rejection {
	return &Rejection{kind: ErrInsufficientFunds, Balance: &balance, Required: required}
}

func ItemNotFound(itemID int64) *Rejection {
	return &Rejection{kind: ErrItemNotFound, ItemID: itemID}
}

func OutOfStock(itemID, stock int64) *Rejection {
	return &Rejection{kind: ErrOutOfStock, ItemID: itemID, Stock: &stock}
}

func RewardNotFound(rewardID int64) *Rejection {
	return &Rejection{kind: ErrRewardNotFound, RewardID: rewardID}
}

func DuplicateReward(roleRef string) *Rejection {
	return &Rejection{kind: ErrDuplicateReward, RoleRef: roleRef}
}

func AlreadyClaimed(next Date, balance int64) *Rejection {
	return &Rejection{kind: ErrAlreadyClaimedToday, NextEligible: &next, Balance: &balance}
}

// EmptyTier 档位为空，charged 为已扣除的抽取费用
func EmptyTier(tier Rarity, charged, balance int64) *Rejection {
	return &Rejection{kind: ErrEmptyPool, Tier: tier, Charged: charged, Balance: &balance}
}

// Kind 返回拒绝类型哨兵
func (r *Rejection) Kind() error { return r.kind }

func (r *Rejection) Unwrap() error { return r.kind }

func (r *Rejection) Error() string {
	switch {
	case r.Balance != nil && r.Required > 0:
		return fmt.Sprintf("%s: balance %d, required %d", r.kind, *r.Balance, r.Required)
	case r.Stock != nil:
		return fmt.Sprintf("%s: item %d, stock %d", r.kind, r.ItemID, *r.Stock)
	case r.NextEligible != nil:
		return fmt.Sprintf("%s: next eligible %s", r.kind, r.NextEligible)
	case r.Tier != RarityNone:
		return fmt.Sprintf("%s: tier %s", r.kind, r.Tier)
	case r.ItemID != 0:
		return fmt.Sprintf("%s: item %d", r.kind, r.ItemID)
	case r.RewardID != 0:
		return fmt.Sprintf("%s: reward %d", r.kind, r.RewardID)
	case r.RoleRef != "":
		return fmt.Sprintf("%s: %s", r.kind, r.RoleRef)
	}
	return r.kind.Error()
}

// IsRejection 判断是否为可恢复的业务拒绝（非存储故障）
func IsRejection(err error) bool {
	var rej *Rejection
	return errors.As(err, &rej)
}

// AsRejection 取出拒绝详情
func AsRejection(err error) (*Rejection, bool) {
	var rej *Rejection
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}
