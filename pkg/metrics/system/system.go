package system

import (
	"context"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// Stats 进程资源快照
type Stats struct {
	// CPU 使用率 (0-100 * 核数)，自进程启动以来的平均值
	CPUPercent float64 `json:"cpu_percent"`
	// 常驻内存占系统内存百分比
	MemoryPercent float64 `json:"memory_percent"`
	// 常驻内存字节数
	MemoryBytes uint64    `json:"memory_bytes"`
	Goroutines  int       `json:"goroutines"`
	SampledAt   time.Time `json:"sampled_at"`
}

// Collector 按需采集当前进程的资源占用
type Collector struct {
	proc *process.Process
}

// New 创建当前进程的采集器
func New() (*Collector, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, err
	}
	return &Collector{proc: proc}, nil
}

// Snapshot 采集一次，单项失败时该项为零值
func (c *Collector) Snapshot(ctx context.Context) Stats {
	stats := Stats{
		Goroutines: runtime.NumGoroutine(),
		SampledAt:  time.Now(),
	}

	if pct, err := c.proc.CPUPercentWithContext(ctx); err == nil {
		stats.CPUPercent = pct
	}
	if memInfo, err := c.proc.MemoryInfoWithContext(ctx); err == nil {
		stats.MemoryBytes = memInfo.RSS
		if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil && vm.Total > 0 {
			stats.MemoryPercent = float64(memInfo.RSS) / float64(vm.Total) * 100
		}
	}
	return stats
}
