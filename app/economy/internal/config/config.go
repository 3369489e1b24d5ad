package config

import (
	"fmt"
	"slices"
	"time"
	_ "time/tzdata"

	"github.com/lk2023060901/coinbot/app/economy/internal/engine"
	"github.com/lk2023060901/coinbot/app/economy/internal/model"
	pkgconfig "github.com/lk2023060901/coinbot/pkg/config"
)

// Key 经济参数在配置文件中的路径
const Key = "economy"

// DailyConfig 每日签到参数
type DailyConfig struct {
	BaseBonus   int64 `mapstructure:"base_bonus" json:"base_bonus" validate:"gt=0"`
	StreakBonus int64 `mapstructure:"streak_bonus" json:"streak_bonus" validate:"gte=0"`
	// 计算"今天"所用的时区，例如 Asia/Shanghai
	Timezone string `mapstructure:"timezone" json:"timezone" validate:"required"`
}

// GachaConfig 抽卡参数
type GachaConfig struct {
	// 未指定价格时的单抽费用
	Cost int64 `mapstructure:"cost" json:"cost" validate:"gt=0"`
	// 未指定模式时使用 weighted 或 tier
	DefaultMode string           `mapstructure:"default_mode" json:"default_mode" validate:"oneof=weighted tier"`
	Tiers       engine.TierTable `mapstructure:"tiers" json:"tiers" validate:"dive"`
}

// LeaderboardConfig 排行榜参数
type LeaderboardConfig struct {
	Size     int           `mapstructure:"size" json:"size" validate:"gt=0,lte=100"`
	CacheTTL time.Duration `mapstructure:"cache_ttl" json:"cache_ttl" validate:"gte=0"`
}

// AdminConfig 管理员判定
type AdminConfig struct {
	// 允许执行管理操作的用户 ID
	UserIDs []uint64 `mapstructure:"user_ids" json:"user_ids"`
	// 持有该角色声明的调用方也视为管理员
	Role string `mapstructure:"role" json:"role"`
}

// EconomyConfig 可热更新的经济参数
type EconomyConfig struct {
	StartingBalance int64             `mapstructure:"starting_balance" json:"starting_balance" validate:"gte=0"`
	Daily           DailyConfig       `mapstructure:"daily" json:"daily"`
	Slot            engine.SlotConfig `mapstructure:"slot" json:"slot"`
	Gacha           GachaConfig       `mapstructure:"gacha" json:"gacha"`
	Leaderboard     LeaderboardConfig `mapstructure:"leaderboard" json:"leaderboard"`
	Admin           AdminConfig       `mapstructure:"admin" json:"admin"`
}

// Defaults 标量默认值；符号表、倍率表、档位表为空，由 Prepare 补齐，
// 避免文件中的短列表与默认长列表逐项合并
func Defaults() *EconomyConfig {
	return &EconomyConfig{
		StartingBalance: model.DefaultStartingBalance,
		Daily: DailyConfig{
			BaseBonus:   500,
			StreakBonus: 100,
			Timezone:    "UTC",
		},
		Slot: engine.SlotConfig{
			TripleMultiplier: 5,
			PairMultiplier:   2,
			BannerFactor:     10,
		},
		Gacha: GachaConfig{
			Cost:        100,
			DefaultMode: "weighted",
		},
		Leaderboard: LeaderboardConfig{
			Size:     10,
			CacheTTL: 30 * time.Second,
		},
		Admin: AdminConfig{
			Role: "admin",
		},
	}
}

// Default 完整的默认配置
func Default() *EconomyConfig {
	c := Defaults()
	c.fillTables()
	return c
}

func (c *EconomyConfig) fillTables() {
	def := engine.DefaultSlotConfig()
	if len(c.Slot.Symbols) == 0 {
		c.Slot.Symbols = def.Symbols
	}
	if c.Slot.Jackpots == nil {
		c.Slot.Jackpots = def.Jackpots
	}
	if len(c.Gacha.Tiers) == 0 {
		c.Gacha.Tiers = engine.DefaultTierTable()
	}
}

var validator = pkgconfig.NewValidator()

// Prepare 补齐列表默认值后校验，作为 Watcher 的校验函数
func Prepare(c *EconomyConfig) error {
	c.fillTables()
	return c.Validate()
}

// Validate 校验字段约束与跨字段规则
func (c *EconomyConfig) Validate() error {
	if err := validator.Validate(c); err != nil {
		return err
	}
	if _, err := time.LoadLocation(c.Daily.Timezone); err != nil {
		return fmt.Errorf("invalid daily timezone %q: %w", c.Daily.Timezone, err)
	}
	if err := c.Slot.Validate(); err != nil {
		return err
	}
	return c.Gacha.Tiers.Validate()
}

// Location 签到使用的时区
func (c *EconomyConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Daily.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsAdmin 用户 ID 是否在管理员列表中
func (c *EconomyConfig) IsAdmin(userID uint64) bool {
	return slices.Contains(c.Admin.UserIDs, userID)
}

// Provider 提供当前生效的经济参数
type Provider interface {
	Get() *EconomyConfig
}

// Static 固定参数，测试与不需要热更新的场景使用
type Static struct {
	cfg *EconomyConfig
}

// NewStatic 校验后返回固定参数
func NewStatic(cfg *EconomyConfig) (*Static, error) {
	if cfg == nil {
		cfg = Default()
	}
	if err := Prepare(cfg); err != nil {
		return nil, err
	}
	return &Static{cfg: cfg}, nil
}

func (s *Static) Get() *EconomyConfig { return s.cfg }

// NewWatcher 从配置管理器加载并支持热更新
func NewWatcher(mgr pkgconfig.Manager) (*pkgconfig.Watcher[EconomyConfig], error) {
	return pkgconfig.NewWatcher(mgr, Key, Defaults, Prepare)
}
