package main

import (
	"github.com/lk2023060901/coinbot/app/economy/internal/grant"
	"github.com/lk2023060901/coinbot/app/economy/internal/migrate"
	"github.com/lk2023060901/coinbot/app/economy/internal/service"
	"github.com/lk2023060901/coinbot/pkg/app"
	"github.com/lk2023060901/coinbot/pkg/database/postgres"
	"github.com/lk2023060901/coinbot/pkg/database/redis"
	"github.com/lk2023060901/coinbot/pkg/idgen"
	"github.com/lk2023060901/coinbot/pkg/logger"
	"github.com/lk2023060901/coinbot/pkg/mq/nats"
	"github.com/lk2023060901/coinbot/pkg/prometheus"
	"github.com/lk2023060901/coinbot/pkg/security"
	"github.com/lk2023060901/coinbot/pkg/sentry"
	"github.com/lk2023060901/coinbot/pkg/web"
	"github.com/lk2023060901/coinbot/pkg/web/middleware"
)

// NATSConfig 消息总线配置，关闭时审计事件只写日志
type NATSConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	nats.Config `mapstructure:",squash"`
}

// Config 定义 Economy 服务的完整配置结构
// 经济参数位于 economy 段，由 config.Watcher 单独加载并支持热更新
type Config struct {
	Log logger.Config `mapstructure:"log"`

	// HTTP 网关接口
	Web       web.Config                 `mapstructure:"web"`
	RateLimit middleware.RateLimitConfig `mapstructure:"rate_limit"`
	JWT       security.JWTConfig         `mapstructure:"jwt"`

	// 存储
	Database postgres.Config `mapstructure:"database"`
	Migrate  migrate.Config  `mapstructure:"migrate"`
	Redis    redis.Config    `mapstructure:"redis"`

	// 用户锁
	Lock service.LockConfig `mapstructure:"lock"`

	// 库存与奖励记录的条目 ID
	IDGen idgen.Config `mapstructure:"idgen"`

	// 外部角色授予与审计事件
	NATS  NATSConfig   `mapstructure:"nats"`
	Grant grant.Config `mapstructure:"grant"`

	Prometheus prometheus.Config `mapstructure:"prometheus"`
	Sentry     sentry.Config     `mapstructure:"sentry"`
}

func main() {
	var cfg Config

	// 1. 加载配置
	mgr, err := app.LoadConfig(&cfg)
	if err != nil {
		panic(err)
	}

	// 2. 错误上报，DSN 为空时不启用
	var opts []logger.Option
	var reporter *sentry.Client
	if cfg.Sentry.Enabled() {
		reporter, err = sentry.New(&cfg.Sentry)
		if err != nil {
			panic(err)
		}
		opts = append(opts, logger.WithHooks(reporter.LoggerHook()))
	}

	// 3. 初始化主日志
	l, err := logger.New(&cfg.Log, opts...)
	if err != nil {
		panic(err)
	}
	defer func() { _ = l.Sync() }()
	if reporter != nil {
		defer func() { _ = reporter.Close() }()
	}

	// 4. 通过 Wire 初始化应用
	application, cleanup, err := InitApp(&cfg, mgr, l)
	if err != nil {
		l.Error("failed to initialize application", "error", err)
		return
	}
	defer cleanup()

	// 5. 运行服务
	if err := application.Run(); err != nil {
		l.Error("application exited with error", "error", err)
	}
}
