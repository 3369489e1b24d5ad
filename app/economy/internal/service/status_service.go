package service

import (
	"context"
	"time"

	"github.com/lk2023060901/coinbot/pkg/app"
	"github.com/lk2023060901/coinbot/pkg/metrics/system"
)

// Status 运行状态
type Status struct {
	InstanceID string        `json:"instance_id"`
	StartedAt  time.Time     `json:"started_at"`
	Uptime     time.Duration `json:"uptime"`
	// UptimeText 形如 1h2m3s
	UptimeText string       `json:"uptime_text"`
	Process    system.Stats `json:"process"`
	Build      app.Info     `json:"build"`
}

// StatsCollector 进程资源采集，*system.Collector 实现
type StatsCollector interface {
	Snapshot(ctx context.Context) system.Stats
}

// StatusService 运行状态查询
type StatusService struct {
	lifecycle *app.Lifecycle
	stats     StatsCollector
}

// NewStatusService stats 为 nil 时不采集进程资源
func NewStatusService(lc *app.Lifecycle, stats StatsCollector) *StatusService {
	return &StatusService{lifecycle: lc, stats: stats}
}

// Status 返回当前运行状态
func (s *StatusService) Status(ctx context.Context) *Status {
	uptime := s.lifecycle.Uptime()
	st := &Status{
		InstanceID: s.lifecycle.ID(),
		StartedAt:  s.lifecycle.StartedAt(),
		Uptime:     uptime,
		UptimeText: uptime.String(),
		Build:      app.GetInfo(),
	}
	if s.stats != nil {
		st.Process = s.stats.Snapshot(ctx)
	}
	return st
}
