package app

import (
	"time"
)

// Lifecycle 进程生命周期信息
// 由 BaseApp 创建并注入到需要报告运行时长的组件中
type Lifecycle struct {
	id        string
	startedAt time.Time
	now       func() time.Time
}

// NewLifecycle 以当前时间作为启动时间
func NewLifecycle(id string) *Lifecycle {
	return NewLifecycleAt(id, time.Now(), time.Now)
}

// NewLifecycleAt 指定启动时间与时钟，测试用
func NewLifecycleAt(id string, startedAt time.Time, now func() time.Time) *Lifecycle {
	return &Lifecycle{id: id, startedAt: startedAt, now: now}
}

// ID 实例 ID
func (l *Lifecycle) ID() string {
	return l.id
}

// StartedAt 启动时间
func (l *Lifecycle) StartedAt() time.Time {
	return l.startedAt
}

// Uptime 已运行时长，精确到秒
func (l *Lifecycle) Uptime() time.Duration {
	return l.now().Sub(l.startedAt).Truncate(time.Second)
}
