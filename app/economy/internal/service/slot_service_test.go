package service

import (
	"context"
	"math"
	"slices"
	"testing"

	"github.com/lk2023060901/coinbot/app/economy/internal/engine"
	"github.com/lk2023060901/coinbot/app/economy/internal/event"
	"github.com/lk2023060901/coinbot/app/economy/internal/model"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func forcedReels(symbols ...string) engine.SourceFactory {
	table := engine.DefaultSlotConfig().Symbols
	ints := make([]int, len(symbols))
	for i, s := range symbols {
		ints[i] = slices.Index(table, s)
	}
	return engine.FixedFactory(&engine.FixedSource{Ints: ints})
}

func TestSlot_DiamondJackpot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := NewSlotService(env.log, env.deps, forcedReels("💎", "💎", "💎"))

	res, err := svc.Spin(ctx, 42, 450)
	require.NoError(t, err)
	assert.Equal(t, engine.MatchJackpot, res.Match)
	assert.Equal(t, int64(4500), res.Payout)
	assert.Equal(t, int64(4050), res.Net)
	assert.True(t, res.Jackpot)
	assert.Equal(t, int64(5050), res.NewBalance)

	bal, err := env.ledger().GetBalance(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(5050), bal)
	assert.Equal(t, 4500.0, testutil.ToFloat64(env.deps.Metrics.SlotPayoutTotal.WithLabelValues("jackpot")))
}

func TestSlot_LossAndPair(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	res, err := NewSlotService(env.log, env.deps, forcedReels("🍒", "🍋", "🍊")).Spin(ctx, 42, 100)
	require.NoError(t, err)
	assert.Equal(t, engine.MatchNone, res.Match)
	assert.Equal(t, int64(900), res.NewBalance)

	res, err = NewSlotService(env.log, env.deps, forcedReels("🍋", "🍇", "🍋")).Spin(ctx, 42, 100)
	require.NoError(t, err)
	assert.Equal(t, engine.MatchPair, res.Match)
	assert.Equal(t, int64(1000), res.NewBalance)
}

func TestSlot_Rejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := NewSlotService(env.log, env.deps, forcedReels("💎", "💎", "💎"))

	_, err := svc.Spin(ctx, 42, 0)
	requireRejection(t, err, model.ErrInvalidAmount)

	_, err = svc.Spin(ctx, 42, 1001)
	rej := requireRejection(t, err, model.ErrInsufficientFunds)
	assert.Equal(t, int64(1000), *rej.Balance)
	assert.Equal(t, int64(1001), rej.Required)

	// 被拒绝的下注不影响余额
	bal, err := env.ledger().GetBalance(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), bal)
	assert.Empty(t, env.events.Events())
}

func TestSlot_PayoutOverflow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := NewSlotService(env.log, env.deps, forcedReels("7️⃣", "7️⃣", "7️⃣"))

	_, err := env.ledger().SetBalance(ctx, admin, 8, math.MaxInt64)
	require.NoError(t, err)

	// 下注超过最大可派彩额，扣款前就拒绝
	require.NotPanics(t, func() {
		_, err = svc.Spin(ctx, 8, math.MaxInt64/4)
	})
	requireRejection(t, err, model.ErrInvalidAmount)

	// 下注合法但派彩后余额超出 int64，整笔回滚
	_, err = svc.Spin(ctx, 8, 100)
	requireRejection(t, err, model.ErrInvalidAmount)

	bal, err := env.ledger().GetBalance(ctx, 8)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), bal)
	assert.Equal(t, []event.Type{event.TypeBalanceSet}, env.events.Types())
}
