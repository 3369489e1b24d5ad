package app

import (
	"time"

	"github.com/google/uuid"
	"github.com/lk2023060901/coinbot/pkg/logger"
)

// Options BaseApp 的构造参数
type Options struct {
	// ID 实例 ID，状态接口与日志中用于区分多副本
	ID   string
	Name string
	// StopTimeout 收到信号后等待各服务退出的上限
	StopTimeout time.Duration
	Logger      logger.Logger
}

type Option func(*Options)

// DefaultOptions 随机实例 ID，30 秒停止超时
func DefaultOptions() Options {
	return Options{
		ID:          uuid.NewString(),
		Name:        AppName,
		StopTimeout: 30 * time.Second,
		Logger:      logger.Default(),
	}
}

func WithLogger(l logger.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}

func WithID(id string) Option {
	return func(o *Options) {
		if id != "" {
			o.ID = id
		}
	}
}

func WithName(name string) Option {
	return func(o *Options) {
		if name != "" {
			o.Name = name
		}
	}
}

// WithStopTimeout 非正数保持默认值
func WithStopTimeout(t time.Duration) Option {
	return func(o *Options) {
		if t > 0 {
			o.StopTimeout = t
		}
	}
}
