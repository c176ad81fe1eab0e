package metrics

import (
	"context"
	"os"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
	"go.uber.org/zap"
)

// DefaultInterval is used when the configured interval is too short
const DefaultInterval = 30 * time.Second

// Sample is one reading of system and process usage
type Sample struct {
	CPUPercent        float64 // System-wide CPU usage (0-100%)
	ProcessCPUPercent float64 // Can exceed 100% on multi-core
	ProcessRSSMB      float64
	MemoryUsedGB      float64
	MemoryPercent     float64
	HeapMB            float64
	Goroutines        int
	Timestamp         time.Time
}

// Collector periodically samples and logs resource usage while exports run
type Collector struct {
	interval time.Duration
	logger   *zap.Logger
	proc     *process.Process

	mu   sync.RWMutex
	last *Sample
}

// NewCollector creates a collector; intervals under a second fall back to DefaultInterval
func NewCollector(interval time.Duration, logger *zap.Logger) *Collector {
	if interval < time.Second {
		interval = DefaultInterval
	}
	proc, _ := process.NewProcess(int32(os.Getpid()))
	return &Collector{
		interval: interval,
		logger:   logger,
		proc:     proc,
	}
}

// Start samples immediately and then every interval until ctx is cancelled
func (c *Collector) Start(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.log(c.Collect())
	for {
		select {
		case <-ctx.Done():
			c.logger.Debug("Metrics collection stopped")
			return
		case <-ticker.C:
			c.log(c.Collect())
		}
	}
}

// Last returns the most recent sample, or nil before the first one
func (c *Collector) Last() *Sample {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.last
}

// Collect takes a sample and stores it as the latest
func (c *Collector) Collect() *Sample {
	s := &Sample{
		Timestamp:  time.Now(),
		Goroutines: runtime.NumGoroutine(),
	}

	if pct, err := cpu.Percent(0, false); err == nil && len(pct) > 0 {
		s.CPUPercent = pct[0]
	}
	if vmem, err := mem.VirtualMemory(); err == nil {
		s.MemoryPercent = vmem.UsedPercent
		s.MemoryUsedGB = float64(vmem.Used) / (1 << 30)
	}
	if c.proc != nil {
		if pct, err := c.proc.Percent(0); err == nil {
			s.ProcessCPUPercent = pct
		}
		if info, err := c.proc.MemoryInfo(); err == nil {
			s.ProcessRSSMB = float64(info.RSS) / (1 << 20)
		}
	}

	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	s.HeapMB = float64(ms.HeapAlloc) / (1 << 20)

	c.mu.Lock()
	c.last = s
	c.mu.Unlock()
	return s
}

func (c *Collector) log(s *Sample) {
	c.logger.Info("System metrics",
		zap.Float64("sys_cpu", s.CPUPercent),
		zap.Float64("proc_cpu", s.ProcessCPUPercent),
		zap.Float64("mem_pct", s.MemoryPercent),
		zap.String("mem_used", formatFloat(s.MemoryUsedGB)+" GB"),
		zap.String("rss", formatFloat(s.ProcessRSSMB)+" MB"),
		zap.String("heap", formatFloat(s.HeapMB)+" MB"),
		zap.Int("goroutines", s.Goroutines),
	)
}

// formatFloat formats a float with one decimal place
func formatFloat(f float64) string {
	if f < 0.05 {
		return "0.0"
	}
	return strconv.FormatFloat(f, 'f', 1, 64)
}
