package dao

import (
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lk2023060901/coinbot/app/economy/internal/metrics"
)

// psql 使用 $n 占位符的语句构造器
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// observe 记录一次查询耗时与结果，用法：defer observe(m, "select", time.Now(), &err)
func observe(m *metrics.EconomyMetrics, operation string, start time.Time, err *error) {
	m.RecordDBQuery(operation, *err == nil, time.Since(start).Seconds())
}
