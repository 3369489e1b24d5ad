package prometheus

// Config Prometheus 配置
type Config struct {
	// 命名空间（应用名称），所有指标名的前缀
	Namespace string `mapstructure:"namespace"`

	// 指标路径，挂载在 Web 服务上
	Path string `mapstructure:"path"`

	EnableGoCollector      bool `mapstructure:"enable_go_collector"`
	EnableProcessCollector bool `mapstructure:"enable_process_collector"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		Namespace:              "coinbot",
		Path:                   "/metrics",
		EnableGoCollector:      true,
		EnableProcessCollector: true,
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.Namespace == "" || c.Path == "" {
		return ErrInvalidConfig
	}
	return nil
}
