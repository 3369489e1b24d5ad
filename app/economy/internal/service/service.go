package service

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/coinbot/app/economy/internal/config"
	"github.com/lk2023060901/coinbot/app/economy/internal/event"
	"github.com/lk2023060901/coinbot/app/economy/internal/metrics"
	"github.com/lk2023060901/coinbot/app/economy/internal/model"
	"github.com/lk2023060901/coinbot/app/economy/internal/repository"
	"github.com/lk2023060901/coinbot/pkg/logger"
)

// Deps 各业务服务共享的依赖
type Deps struct {
	Repo    repository.EconomyRepository
	Locker  UserLocker
	Config  config.Provider
	Auth    Authorizer
	Events  event.Publisher
	Metrics *metrics.EconomyMetrics
}

// NewDeps wire 使用的构造函数
func NewDeps(
	repo repository.EconomyRepository,
	locker UserLocker,
	cfg config.Provider,
	auth Authorizer,
	events event.Publisher,
	m *metrics.EconomyMetrics,
) *Deps {
	return &Deps{Repo: repo, Locker: locker, Config: cfg, Auth: auth, Events: events, Metrics: m}
}

// inAccount 在用户锁内执行一个事务，同一用户的变更不会交错
func (d *Deps) inAccount(ctx context.Context, userID uint64, fn func(ctx context.Context, tx repository.Tx) error) error {
	return d.Locker.WithLock(ctx, userID, func(ctx context.Context) error {
		return d.Repo.RunInTx(ctx, fn)
	})
}

// lockAccount 锁定账户，不存在时按当前配置的初始余额创建
func (d *Deps) lockAccount(ctx context.Context, tx repository.Tx, userID uint64) (*model.Account, bool, error) {
	return tx.LockAccount(ctx, userID, d.Config.Get().StartingBalance)
}

// finish 记录操作结果，存储故障附加操作名后返回，业务拒绝原样返回
func (d *Deps) finish(ctx context.Context, l logger.Logger, operation string, err error) error {
	if err == nil {
		d.Metrics.RecordOperation(operation, "success")
		return nil
	}
	if rej, ok := model.AsRejection(err); ok {
		d.Metrics.RecordOperation(operation, outcomeLabel(rej.Kind()))
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		d.Metrics.RecordOperation(operation, "canceled")
		return err
	}
	d.Metrics.RecordOperation(operation, "error")
	l.ErrorContext(ctx, "operation failed", "operation", operation, "error", err)
	return errors.Wrapf(err, "%s", operation)
}

// publish 提交后发布审计事件，失败只记录日志
func (d *Deps) publish(ctx context.Context, l logger.Logger, ev *event.Event) {
	if err := d.Events.Publish(ctx, ev); err != nil {
		l.WarnContext(ctx, "failed to publish audit event", "type", ev.Type, "error", err)
	}
}

func outcomeLabel(kind error) string {
	return strings.ReplaceAll(kind.Error(), " ", "_")
}
