package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/coinbot/app/economy/internal/config"
	"github.com/lk2023060901/coinbot/app/economy/internal/dao"
	"github.com/lk2023060901/coinbot/app/economy/internal/engine"
	"github.com/lk2023060901/coinbot/app/economy/internal/event"
	"github.com/lk2023060901/coinbot/app/economy/internal/grant"
	"github.com/lk2023060901/coinbot/app/economy/internal/handler"
	"github.com/lk2023060901/coinbot/app/economy/internal/migrate"
	"github.com/lk2023060901/coinbot/app/economy/internal/model"
	"github.com/lk2023060901/coinbot/app/economy/internal/service"
	"github.com/lk2023060901/coinbot/pkg/app"
	pkgconfig "github.com/lk2023060901/coinbot/pkg/config"
	"github.com/lk2023060901/coinbot/pkg/database/postgres"
	"github.com/lk2023060901/coinbot/pkg/database/redis"
	"github.com/lk2023060901/coinbot/pkg/idgen"
	"github.com/lk2023060901/coinbot/pkg/logger"
	"github.com/lk2023060901/coinbot/pkg/metrics/system"
	"github.com/lk2023060901/coinbot/pkg/mq/nats"
	"github.com/lk2023060901/coinbot/pkg/prometheus"
	"github.com/lk2023060901/coinbot/pkg/security"
	"github.com/lk2023060901/coinbot/pkg/web"
	webmetrics "github.com/lk2023060901/coinbot/pkg/web/metrics"
	"github.com/lk2023060901/coinbot/pkg/web/middleware"
)

// provideBaseApp 创建应用骨架
func provideBaseApp(l logger.Logger) *app.BaseApp {
	return app.NewBaseApp(
		app.WithName("economy"),
		app.WithLogger(l),
	)
}

// providePrometheus 提供 Prometheus 客户端
func providePrometheus(cfg *Config) (*prometheus.Client, error) {
	return prometheus.New(&cfg.Prometheus)
}

// providePostgres 连接数据库并执行迁移
func providePostgres(cfg *Config, l logger.Logger) (*postgres.Client, func(), error) {
	db, err := postgres.New(&cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { _ = db.Close() }

	log := l.Named("migrate")
	res, err := migrate.Up(context.Background(), &cfg.Migrate, db.Config().DSN(), l)
	switch {
	case errors.Is(err, model.ErrMigrationSkipped):
		log.Info("migration skipped", "reason", err.Error())
	case err != nil:
		cleanup()
		return nil, nil, err
	default:
		log.Info("migration applied", "from", res.From, "to", res.To, "applied", res.Applied)
	}
	return db, cleanup, nil
}

// provideRedis 提供 Redis 客户端
func provideRedis(cfg *Config) (*redis.Client, func(), error) {
	rdb, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	return rdb, func() { _ = rdb.Close() }, nil
}

// provideNATS 未启用时返回 nil
func provideNATS(cfg *Config, l logger.Logger) (*nats.Client, func(), error) {
	if !cfg.NATS.Enabled {
		return nil, func() {}, nil
	}
	nc, err := nats.New(&cfg.NATS.Config,
		nats.WithPublishMiddleware(nats.RequestIDMiddleware(), nats.LoggingMiddleware(l.Named("nats"))),
	)
	if err != nil {
		return nil, nil, err
	}
	return nc, func() { _ = nc.Close() }, nil
}

// provideEconomyConfig 加载 economy 段并监听文件变更，校验失败的修改不生效
func provideEconomyConfig(mgr pkgconfig.Manager, l logger.Logger) (config.Provider, error) {
	w, err := config.NewWatcher(mgr)
	if err != nil {
		return nil, err
	}

	log := l.Named("config.economy")
	w.OnChange(func(c *config.EconomyConfig) {
		log.Info("economy config reloaded",
			"starting_balance", c.StartingBalance,
			"daily_base", c.Daily.BaseBonus,
			"gacha_cost", c.Gacha.Cost,
		)
	})
	w.OnError(func(err error) {
		log.Error("economy config rejected, keeping previous values", "error", err)
	})
	if err := w.Start(); err != nil {
		return nil, err
	}
	return w, nil
}

// provideLocker 按配置选择用户锁实现
func provideLocker(cfg *Config, rdb *redis.Client, l logger.Logger) service.UserLocker {
	if cfg.Lock.Backend == "redis" {
		return service.NewRedisLocker(rdb, &cfg.Lock, l)
	}
	return service.NewLocalLocker()
}

// provideEventPublisher NATS 可用时发布审计事件，否则写日志
func provideEventPublisher(nc *nats.Client, l logger.Logger) event.Publisher {
	if nc == nil {
		return event.NewLogPublisher(l)
	}
	return event.NewNATSPublisher(nc)
}

func provideIDGenerator(cfg *Config) (idgen.Generator, error) {
	return idgen.NewSonyflake(cfg.IDGen)
}

func provideSourceFactory() engine.SourceFactory {
	return engine.CryptoSourceFactory()
}

func provideGrantAuthority(cfg *Config, nc *nats.Client, l logger.Logger) (grant.Authority, error) {
	return grant.New(&cfg.Grant, nc, l)
}

func provideLeaderboardCache(c *dao.CacheDAO) service.LeaderboardCache {
	return c
}

// provideStatsCollector 采集器创建失败时状态接口不返回进程资源
func provideStatsCollector(l logger.Logger) service.StatsCollector {
	c, err := system.New()
	if err != nil {
		l.Warn("process stats unavailable", "error", err)
		return nil
	}
	return c
}

func provideJWTManager(cfg *Config) (*security.JWTManager, error) {
	return security.NewJWTManager(&cfg.JWT)
}

func provideRateLimiter(cfg *Config, l logger.Logger) (*middleware.RateLimiter, error) {
	return middleware.NewRateLimiter(l.Named("web.ratelimit"), &cfg.RateLimit)
}

// provideWebServer 创建 HTTP 服务并挂载路由
func provideWebServer(
	cfg *Config,
	l logger.Logger,
	h *handler.EconomyHandler,
	jm *security.JWTManager,
	rl *middleware.RateLimiter,
	prom *prometheus.Client,
) *web.Server {
	srv := web.NewServer(&cfg.Web, l)
	r := srv.Router()

	httpMetrics := webmetrics.NewHTTPMetrics(prom.Registry(), prom.Namespace())
	r.Use(middleware.Metrics(httpMetrics))

	r.GET(prom.Path(), gin.WrapH(prom.Handler()))
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	h.Register(r, middleware.Auth(jm), middleware.RateLimit(rl))
	return srv
}

// provideComponents 资源由各 provider 的 cleanup 释放，这里只登记服务
func provideComponents(srv *web.Server) app.Components {
	return app.Components{
		Servers: []app.Server{srv},
	}
}
