package prometheus

import "errors"

var (
	// ErrInvalidConfig 配置无效
	ErrInvalidConfig = errors.New("prometheus: invalid config")

	// ErrMetricExists 指标已存在
	ErrMetricExists = errors.New("prometheus: metric already exists")
)
