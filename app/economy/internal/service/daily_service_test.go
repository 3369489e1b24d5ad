package service

import (
	"context"
	"testing"
	"time"

	"github.com/lk2023060901/coinbot/app/economy/internal/config"
	"github.com/lk2023060901/coinbot/app/economy/internal/event"
	"github.com/lk2023060901/coinbot/app/economy/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) model.Date {
	d, err := model.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestDaily_WelcomePath(t *testing.T) {
	env := newTestEnv(t)
	svc := NewDailyService(env.log, env.deps)

	res, err := svc.Claim(context.Background(), 42, day("2024-03-10"))
	require.NoError(t, err)
	assert.Equal(t, int64(500), res.Bonus)
	assert.Equal(t, int64(0), res.StreakBonus)
	assert.Equal(t, int64(1000), res.WelcomeBonus)
	assert.Equal(t, int64(500), res.Credited)
	assert.Equal(t, int64(1500), res.NewBalance)
	assert.Equal(t, 1, res.Streak)
	assert.Equal(t, day("2024-03-11"), res.NextEligible)
	assert.Equal(t, []event.Type{event.TypeDailyClaimed}, env.events.Types())
}

func TestDaily_ExistingAccountHasNoWelcome(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.ledger().GetBalance(ctx, 42)
	require.NoError(t, err)

	res, err := NewDailyService(env.log, env.deps).Claim(ctx, 42, day("2024-03-10"))
	require.NoError(t, err)
	assert.Zero(t, res.WelcomeBonus)
	assert.Equal(t, int64(1500), res.NewBalance)
}

func TestDaily_Sequence(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := NewDailyService(env.log, env.deps)

	_, err := svc.Claim(ctx, 42, day("2024-03-10"))
	require.NoError(t, err)

	// 同一天再次签到
	_, err = svc.Claim(ctx, 42, day("2024-03-10"))
	rej := requireRejection(t, err, model.ErrAlreadyClaimedToday)
	require.NotNil(t, rej.NextEligible)
	assert.Equal(t, day("2024-03-11"), *rej.NextEligible)
	require.NotNil(t, rej.Balance)
	assert.Equal(t, int64(1500), *rej.Balance)

	// 时钟回拨同样拒绝
	_, err = svc.Claim(ctx, 42, day("2024-03-09"))
	requireRejection(t, err, model.ErrAlreadyClaimedToday)

	// 连续签到，跨月
	res, err := svc.Claim(ctx, 42, day("2024-03-11"))
	require.NoError(t, err)
	assert.Equal(t, int64(100), res.StreakBonus)
	assert.Equal(t, int64(600), res.Credited)
	assert.Equal(t, int64(2100), res.NewBalance)
	assert.Equal(t, 2, res.Streak)

	// 间隔两天，只发基础奖励并重置连续天数
	res, err = svc.Claim(ctx, 42, day("2024-03-13"))
	require.NoError(t, err)
	assert.Zero(t, res.StreakBonus)
	assert.Equal(t, int64(2600), res.NewBalance)
	assert.Equal(t, 1, res.Streak)
}

func TestDaily_StreakAcrossYearBoundary(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := NewDailyService(env.log, env.deps)

	_, err := svc.Claim(ctx, 42, day("2023-12-31"))
	require.NoError(t, err)
	res, err := svc.Claim(ctx, 42, day("2024-01-01"))
	require.NoError(t, err)
	assert.Equal(t, int64(100), res.StreakBonus)
}

func TestDaily_TodayUsesConfiguredZone(t *testing.T) {
	env := newTestEnv(t, func(c *config.EconomyConfig) { c.Daily.Timezone = "Asia/Tokyo" })
	svc := NewDailyService(env.log, env.deps)
	// UTC 15:30 在东京已是次日
	svc.now = func() time.Time { return time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC) }

	assert.Equal(t, day("2024-03-11"), svc.Today())

	res, err := svc.ClaimToday(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, day("2024-03-11"), res.ClaimedOn)
}
