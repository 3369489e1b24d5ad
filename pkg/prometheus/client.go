package prometheus

import (
	"net/http"
	"sync"

	"github.com/lk2023060901/coinbot/pkg/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Client Prometheus 客户端，持有独立的 Registry
type Client struct {
	config   *Config
	registry *prometheus.Registry

	mu    sync.Mutex
	names map[string]struct{}
}

// New 创建 Prometheus 客户端
func New(cfg *Config) (*Client, error) {
	merged, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, err
	}
	if err := merged.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		config:   merged,
		registry: prometheus.NewRegistry(),
		names:    make(map[string]struct{}),
	}
	if merged.EnableGoCollector {
		c.registry.MustRegister(collectors.NewGoCollector())
	}
	if merged.EnableProcessCollector {
		c.registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	return c, nil
}

// Registry 获取底层 Registry
func (c *Client) Registry() *prometheus.Registry {
	return c.registry
}

// Namespace 指标命名空间
func (c *Client) Namespace() string {
	return c.config.Namespace
}

// Path 指标路径
func (c *Client) Path() string {
	return c.config.Path
}

// Handler 返回 HTTP Handler（用于挂载到 Web 服务）
func (c *Client) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

func (c *Client) reserve(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.names[name]; ok {
		return ErrMetricExists
	}
	c.names[name] = struct{}{}
	return nil
}

func (c *Client) release(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.names, name)
}
