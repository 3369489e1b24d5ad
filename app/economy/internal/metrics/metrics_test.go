package metrics

import (
	"testing"

	"github.com/lk2023060901/coinbot/pkg/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEconomyMetrics_Record(t *testing.T) {
	client, err := prometheus.New(&prometheus.Config{Namespace: "test"})
	require.NoError(t, err)

	m, err := New(client)
	require.NoError(t, err)

	m.RecordOperation("slot", "success")
	m.RecordOperation("slot", "success")
	m.RecordSlot("jackpot", 450, 4500)
	m.RecordGacha("weighted", "miss")
	m.RecordDBQuery("select", true, 0.002)
	m.RecordCacheMiss("leaderboard")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.OperationsTotal.WithLabelValues("slot", "success")))
	assert.Equal(t, 4500.0, testutil.ToFloat64(m.SlotPayoutTotal.WithLabelValues("jackpot")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GachaOutcomes.WithLabelValues("weighted", "miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheMissTotal.WithLabelValues("leaderboard")))

	// 同一 client 重复注册会失败
	_, err = New(client)
	assert.Error(t, err)
}
