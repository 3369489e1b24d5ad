//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"
	"github.com/lk2023060901/coinbot/app/economy/internal/dao"
	"github.com/lk2023060901/coinbot/app/economy/internal/handler"
	"github.com/lk2023060901/coinbot/app/economy/internal/metrics"
	"github.com/lk2023060901/coinbot/app/economy/internal/repository"
	"github.com/lk2023060901/coinbot/app/economy/internal/service"
	"github.com/lk2023060901/coinbot/pkg/app"
	pkgconfig "github.com/lk2023060901/coinbot/pkg/config"
	"github.com/lk2023060901/coinbot/pkg/logger"
)

func InitApp(cfg *Config, mgr pkgconfig.Manager, l logger.Logger) (app.Application, func(), error) {
	panic(wire.Build(
		// 1. 基础框架
		provideBaseApp,
		app.ProviderSet,

		// 2. 基础设施
		providePrometheus,
		providePostgres,
		provideRedis,
		provideNATS,
		provideEconomyConfig,

		// 3. 指标
		metrics.New,

		// 4. 数据层
		dao.NewAccountDAO,
		dao.NewItemDAO,
		dao.NewRewardDAO,
		dao.NewLedgerDAO,
		dao.NewCacheDAO,
		repository.NewEconomyRepository,

		// 5. 服务层
		provideLocker,
		service.NewPolicyAuthorizer,
		wire.Bind(new(service.Authorizer), new(*service.PolicyAuthorizer)),
		provideEventPublisher,
		service.NewDeps,
		provideIDGenerator,
		provideSourceFactory,
		provideGrantAuthority,
		provideLeaderboardCache,
		provideStatsCollector,
		service.NewLedgerService,
		service.NewDailyService,
		service.NewSlotService,
		service.NewShopService,
		service.NewGachaService,
		service.NewLeaderboardService,
		service.NewStatusService,

		// 6. 接口层
		wire.Struct(new(handler.Services), "*"),
		handler.NewEconomyHandler,
		provideJWTManager,
		provideRateLimiter,
		provideWebServer,

		// 7. 组装
		provideComponents,
		app.Bind,
	))
}
