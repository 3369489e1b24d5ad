package metrics

import (
	"fmt"

	"github.com/lk2023060901/coinbot/pkg/prometheus"
	prom "github.com/prometheus/client_golang/prometheus"
)

const subsystem = "economy"

// EconomyMetrics 经济服务指标
type EconomyMetrics struct {
	// 业务操作（按操作、结果）
	OperationsTotal *prom.CounterVec
	// 老虎机下注与派彩总额
	SlotWageredTotal *prom.CounterVec
	SlotPayoutTotal  *prom.CounterVec
	// 抽卡结果（按模式、结果）
	GachaOutcomes *prom.CounterVec
	// 外部授予（按结果）
	GrantsTotal *prom.CounterVec

	// 数据库指标
	DBQueryTotal    *prom.CounterVec
	DBQueryDuration *prom.HistogramVec

	// 缓存指标
	CacheHitTotal  *prom.CounterVec
	CacheMissTotal *prom.CounterVec
}

// New 创建并注册经济服务指标
func New(client *prometheus.Client) (*EconomyMetrics, error) {
	m := &EconomyMetrics{}
	var err error

	counters := []struct {
		dst    **prom.CounterVec
		name   string
		help   string
		labels []string
	}{
		{&m.OperationsTotal, "operations_total", "经济操作总数", []string{"operation", "result"}},
		{&m.SlotWageredTotal, "slot_wagered_total", "老虎机下注总额", []string{"match"}},
		{&m.SlotPayoutTotal, "slot_payout_total", "老虎机派彩总额", []string{"match"}},
		{&m.GachaOutcomes, "gacha_outcomes_total", "抽卡结果总数", []string{"mode", "outcome"}},
		{&m.GrantsTotal, "external_grants_total", "外部角色授予总数", []string{"result"}},
		{&m.DBQueryTotal, "db_queries_total", "数据库查询总数", []string{"operation", "result"}},
		{&m.CacheHitTotal, "cache_hits_total", "缓存命中总数", []string{"cache"}},
		{&m.CacheMissTotal, "cache_misses_total", "缓存未命中总数", []string{"cache"}},
	}
	for _, c := range counters {
		if *c.dst, err = client.NewCounter(subsystem, c.name, c.help, c.labels); err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", c.name, err)
		}
	}

	m.DBQueryDuration, err = client.NewHistogram(subsystem, "db_query_duration_seconds", "数据库查询延迟（秒）",
		[]string{"operation"}, []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1})
	if err != nil {
		return nil, fmt.Errorf("failed to create db_query_duration_seconds: %w", err)
	}
	return m, nil
}

func result(success bool) string {
	if success {
		return "success"
	}
	return "failed"
}

// RecordDBQuery 记录数据库查询
func (m *EconomyMetrics) RecordDBQuery(operation string, success bool, duration float64) {
	m.DBQueryTotal.WithLabelValues(operation, result(success)).Inc()
	m.DBQueryDuration.WithLabelValues(operation).Observe(duration)
}

// RecordOperation 记录业务操作，outcome 为 success 或拒绝类型
func (m *EconomyMetrics) RecordOperation(operation, outcome string) {
	m.OperationsTotal.WithLabelValues(operation, outcome).Inc()
}

// RecordSlot 记录一次转动
func (m *EconomyMetrics) RecordSlot(match string, bet, payout int64) {
	m.SlotWageredTotal.WithLabelValues(match).Add(float64(bet))
	m.SlotPayoutTotal.WithLabelValues(match).Add(float64(payout))
}

// RecordGacha 记录抽卡结果
func (m *EconomyMetrics) RecordGacha(mode, outcome string) {
	m.GachaOutcomes.WithLabelValues(mode, outcome).Inc()
}

// RecordGrant 记录外部授予
func (m *EconomyMetrics) RecordGrant(success bool) {
	m.GrantsTotal.WithLabelValues(result(success)).Inc()
}

// RecordCacheHit 记录缓存命中
func (m *EconomyMetrics) RecordCacheHit(cache string) {
	m.CacheHitTotal.WithLabelValues(cache).Inc()
}

// RecordCacheMiss 记录缓存未命中
func (m *EconomyMetrics) RecordCacheMiss(cache string) {
	m.CacheMissTotal.WithLabelValues(cache).Inc()
}
