package idgen

// Generator 生成按时间递增的唯一 ID，用于库存与奖励流水的条目排序
type Generator interface {
	NextID() (int64, error)
}

// Config 生成器配置
type Config struct {
	// MachineID 0-65535，多实例部署时必须互不相同
	MachineID uint16 `mapstructure:"machine_id"`
}
