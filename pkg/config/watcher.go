// pkg/config/watcher.go
package config

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Watcher 热更新配置段
// 文件变更后重新解析 key 对应的配置段，校验失败时保留旧值
type Watcher[T any] struct {
	mgr      Manager
	key      string
	defaults func() *T
	validate func(*T) error

	current atomic.Pointer[T]

	mu       sync.RWMutex
	onChange []func(*T)
	onError  func(error)
}

// NewWatcher 创建热更新配置段并立即加载一次
// defaults 提供未在文件中出现的字段的默认值；validate 可为 nil
func NewWatcher[T any](mgr Manager, key string, defaults func() *T, validate func(*T) error) (*Watcher[T], error) {
	w := &Watcher[T]{
		mgr:      mgr,
		key:      key,
		defaults: defaults,
		validate: validate,
		onError:  func(error) {},
	}

	cfg, err := w.load()
	if err != nil {
		return nil, err
	}
	w.current.Store(cfg)
	return w, nil
}

// Get 返回当前生效的配置（只读，不要修改）
func (w *Watcher[T]) Get() *T {
	return w.current.Load()
}

// OnChange 注册变更回调
func (w *Watcher[T]) OnChange(fn func(*T)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = append(w.onChange, fn)
}

// OnError 注册重载失败回调
func (w *Watcher[T]) OnError(fn func(error)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onError = fn
}

// Start 开始监听配置文件
func (w *Watcher[T]) Start() error {
	return w.mgr.Watch(func() {
		_ = w.Reload()
	})
}

// Reload 重新加载配置段
func (w *Watcher[T]) Reload() error {
	cfg, err := w.load()

	w.mu.RLock()
	callbacks := append([]func(*T){}, w.onChange...)
	onError := w.onError
	w.mu.RUnlock()

	if err != nil {
		onError(err)
		return err
	}

	w.current.Store(cfg)
	for _, cb := range callbacks {
		cb(cfg)
	}
	return nil
}

func (w *Watcher[T]) load() (*T, error) {
	var cfg *T
	if w.defaults != nil {
		cfg = w.defaults()
	} else {
		cfg = new(T)
	}

	if w.mgr.IsSet(w.key) {
		if err := w.mgr.UnmarshalKey(w.key, cfg); err != nil {
			return nil, err
		}
	}

	if w.validate != nil {
		if err := w.validate(cfg); err != nil {
			return nil, fmt.Errorf("invalid %s config: %w", w.key, err)
		}
	}
	return cfg, nil
}
