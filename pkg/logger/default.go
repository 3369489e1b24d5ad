package logger

import "sync"

var (
	defaultMu     sync.RWMutex
	defaultLogger Logger = NewNoop()
)

// SetDefault 设置进程级默认 logger，仅在 main 中调用一次
func SetDefault(l Logger) {
	if l == nil {
		return
	}
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultLogger = l
}

// Default 返回默认 logger，未设置时为 NoopLogger
func Default() Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}
