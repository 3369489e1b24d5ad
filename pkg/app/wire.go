package app

import (
	"github.com/google/wire"
)

// Application 组装完成、可运行的应用
type Application interface {
	Run() error
	Shutdown() error
}

// Components 由 Wire 收集的服务与资源
type Components struct {
	Servers []Server
	Closers []Closer
}

// ProviderSet 导出给 Wire 使用
var ProviderSet = wire.NewSet(
	ProvideLifecycle,
)

// ProvideLifecycle 从 BaseApp 取出生命周期对象
func ProvideLifecycle(a *BaseApp) *Lifecycle {
	return a.Lifecycle()
}

// Bind 将组件挂到 BaseApp 上
func Bind(a *BaseApp, comps Components) Application {
	a.AppendServer(comps.Servers...)
	a.AppendCloser(comps.Closers...)
	return a
}
