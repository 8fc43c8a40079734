// Package metrics periodically snapshots process resource usage and
// cell splitter progress during emit_features, the way the teacher's
// import coordinator snapshots system IO during a long-running load.
package metrics

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
	"go.uber.org/zap"
)

// Snapshot holds one collected sample: process resource usage plus
// whatever splitter progress was available at collection time.
type Snapshot struct {
	CPUPercent        float64
	ProcessCPUPercent float64
	MemoryUsedGB      float64
	MemoryPercent     float64
	Progress          Progress
	Timestamp         time.Time
}

// Progress is a point-in-time view of the cell splitter's work queue,
// reported by whatever is running the splitter.
type Progress struct {
	QueueDepth   int
	InFlight     int
	CellsEmitted int
}

// ProgressSource is polled once per collection interval. The splitter
// satisfies this with a lock-protected read of its queue state; nil is
// a valid Collector state (no progress fields logged) for any caller
// that only wants resource metrics.
type ProgressSource interface {
	Progress() Progress
}

// Collector periodically collects and logs resource and progress
// metrics. The zero value is not usable; construct with NewCollector.
type Collector struct {
	interval time.Duration
	logger   *zap.Logger
	proc     *process.Process
	source   ProgressSource

	lastCPUTimes cpu.TimesStat
	hasCPUTimes  bool

	mu       sync.RWMutex
	lastSnap *Snapshot
}

// NewCollector creates a new metrics collector logging through the
// given logger every interval. An interval under one second is
// replaced by 30 seconds.
func NewCollector(interval time.Duration, logger *zap.Logger) *Collector {
	if interval < time.Second {
		interval = 30 * time.Second
	}

	proc, _ := process.NewProcess(int32(os.Getpid()))

	return &Collector{
		interval: interval,
		logger:   logger,
		proc:     proc,
	}
}

// WithProgressSource attaches a splitter progress source, returning
// the Collector for chaining at construction time.
func (c *Collector) WithProgressSource(source ProgressSource) *Collector {
	c.source = source
	return c
}

// Start begins periodic metrics collection. Returns when ctx is
// cancelled.
func (c *Collector) Start(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.collect()

	for {
		select {
		case <-ctx.Done():
			c.logger.Debug("metrics collection stopped")
			return
		case <-ticker.C:
			c.collect()
		}
	}
}

// Last returns the most recently collected snapshot, or nil if none
// has been collected yet.
func (c *Collector) Last() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastSnap
}

func (c *Collector) collect() {
	snap := &Snapshot{Timestamp: time.Now()}

	if cpuPercent, err := cpu.Percent(0, false); err == nil && len(cpuPercent) > 0 {
		snap.CPUPercent = cpuPercent[0]
	}
	if c.proc != nil {
		if procCPU, err := c.proc.Percent(0); err == nil {
			snap.ProcessCPUPercent = procCPU
		}
	}
	if vmem, err := mem.VirtualMemory(); err == nil {
		snap.MemoryPercent = vmem.UsedPercent
		snap.MemoryUsedGB = float64(vmem.Used) / (1024 * 1024 * 1024)
	}
	if c.source != nil {
		snap.Progress = c.source.Progress()
	}

	c.mu.Lock()
	c.lastSnap = snap
	c.mu.Unlock()

	fields := []zap.Field{
		zap.Float64("sys_cpu", snap.CPUPercent),
		zap.Float64("proc_cpu", snap.ProcessCPUPercent),
		zap.Float64("mem_pct", snap.MemoryPercent),
		zap.Float64("mem_used_gb", snap.MemoryUsedGB),
	}
	if c.source != nil {
		fields = append(fields,
			zap.Int("queue_depth", snap.Progress.QueueDepth),
			zap.Int("in_flight", snap.Progress.InFlight),
			zap.Int("cells_emitted", snap.Progress.CellsEmitted),
		)
	}
	c.logger.Info("splitter progress", fields...)
}
