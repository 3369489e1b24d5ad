package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/lk2023060901/coinbot/pkg/logger"
	"golang.org/x/sync/errgroup"
)

var ErrAppAlreadyRunning = errors.New("app: already running")

// Server 需要随应用启停的服务（HTTP 等）
// Start 必须非阻塞
type Server interface {
	Start() error
	Stop(ctx context.Context) error
}

// Closer 资源清理接口（数据库、Redis、NATS 等）
type Closer interface {
	Close() error
}

// CloserFunc 函数式 Closer
type CloserFunc func() error

func (f CloserFunc) Close() error { return f() }

// BaseApp 应用骨架：启动服务、等待信号、逆序释放资源
type BaseApp struct {
	opts      Options
	logger    logger.Logger
	lifecycle *Lifecycle

	mu      sync.Mutex
	servers []Server
	closers []Closer

	ctx    context.Context
	cancel context.CancelFunc

	started atomic.Bool
	closed  atomic.Bool
}

// NewBaseApp 创建应用
func NewBaseApp(opts ...Option) *BaseApp {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &BaseApp{
		opts:      o,
		logger:    o.Logger.Named("app"),
		lifecycle: NewLifecycle(o.ID),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Lifecycle 返回进程生命周期信息
func (a *BaseApp) Lifecycle() *Lifecycle {
	return a.lifecycle
}

// Context 应用级 context，Shutdown 时取消
func (a *BaseApp) Context() context.Context {
	return a.ctx
}

// AppendServer 添加服务
func (a *BaseApp) AppendServer(srv ...Server) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.servers = append(a.servers, srv...)
}

// AppendCloser 添加资源，关闭顺序与添加顺序相反
func (a *BaseApp) AppendCloser(c ...Closer) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closers = append(a.closers, c...)
}

// Run 启动所有服务并阻塞到收到退出信号
func (a *BaseApp) Run() error {
	if !a.started.CompareAndSwap(false, true) {
		return ErrAppAlreadyRunning
	}

	info := GetInfo()
	a.logger.Info("application starting",
		"name", a.opts.Name,
		"version", info.Version,
		"commit", info.GitCommit,
		"go_version", info.GoVersion,
		"id", a.opts.ID,
	)

	a.mu.Lock()
	servers := append([]Server(nil), a.servers...)
	a.mu.Unlock()

	for _, srv := range servers {
		if err := srv.Start(); err != nil {
			a.logger.Error("failed to start server", "error", err)
			_ = a.Shutdown()
			return fmt.Errorf("start server: %w", err)
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		a.logger.Info("received signal, shutting down", "signal", sig.String())
	case <-a.ctx.Done():
		a.logger.Info("context cancelled, shutting down")
	}

	return a.Shutdown()
}

// Shutdown 并发停止服务，然后逆序关闭资源
func (a *BaseApp) Shutdown() error {
	if !a.closed.CompareAndSwap(false, true) {
		return nil
	}
	a.cancel()

	a.mu.Lock()
	servers := append([]Server(nil), a.servers...)
	closers := append([]Closer(nil), a.closers...)
	a.mu.Unlock()

	stopCtx, cancel := context.WithTimeout(context.Background(), a.opts.StopTimeout)
	defer cancel()

	g, gctx := errgroup.WithContext(stopCtx)
	for _, srv := range servers {
		srv := srv
		g.Go(func() error {
			return srv.Stop(gctx)
		})
	}
	stopErr := g.Wait()
	if stopErr != nil {
		a.logger.Error("failed to stop server", "error", stopErr)
	}

	var closeErr error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			a.logger.Error("failed to close component", "error", err)
			closeErr = errors.Join(closeErr, err)
		}
	}

	a.logger.Info("application exited", "uptime", a.lifecycle.Uptime().String())
	_ = a.logger.Sync()
	return errors.Join(stopErr, closeErr)
}
