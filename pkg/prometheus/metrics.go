package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
)

// NewCounter 创建并注册 Counter
func (c *Client) NewCounter(subsystem, name, help string, labels []string) (*prometheus.CounterVec, error) {
	full := prometheus.BuildFQName(c.config.Namespace, subsystem, name)
	if err := c.reserve(full); err != nil {
		return nil, err
	}

	vec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: c.config.Namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	}, labels)
	if err := c.registry.Register(vec); err != nil {
		c.release(full)
		return nil, err
	}
	return vec, nil
}

// NewGauge 创建并注册 Gauge
func (c *Client) NewGauge(subsystem, name, help string, labels []string) (*prometheus.GaugeVec, error) {
	full := prometheus.BuildFQName(c.config.Namespace, subsystem, name)
	if err := c.reserve(full); err != nil {
		return nil, err
	}

	vec := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: c.config.Namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
	}, labels)
	if err := c.registry.Register(vec); err != nil {
		c.release(full)
		return nil, err
	}
	return vec, nil
}

// NewHistogram 创建并注册 Histogram，buckets 为空时使用默认桶
func (c *Client) NewHistogram(subsystem, name, help string, labels []string, buckets []float64) (*prometheus.HistogramVec, error) {
	full := prometheus.BuildFQName(c.config.Namespace, subsystem, name)
	if err := c.reserve(full); err != nil {
		return nil, err
	}
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	vec := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: c.config.Namespace,
		Subsystem: subsystem,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	}, labels)
	if err := c.registry.Register(vec); err != nil {
		c.release(full)
		return nil, err
	}
	return vec, nil
}

// MustNewCounter 创建 Counter，失败则 panic
func (c *Client) MustNewCounter(subsystem, name, help string, labels []string) *prometheus.CounterVec {
	vec, err := c.NewCounter(subsystem, name, help, labels)
	if err != nil {
		panic(err)
	}
	return vec
}

// MustNewGauge 创建 Gauge，失败则 panic
func (c *Client) MustNewGauge(subsystem, name, help string, labels []string) *prometheus.GaugeVec {
	vec, err := c.NewGauge(subsystem, name, help, labels)
	if err != nil {
		panic(err)
	}
	return vec
}

// MustNewHistogram 创建 Histogram，失败则 panic
func (c *Client) MustNewHistogram(subsystem, name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	vec, err := c.NewHistogram(subsystem, name, help, labels, buckets)
	if err != nil {
		panic(err)
	}
	return vec
}
