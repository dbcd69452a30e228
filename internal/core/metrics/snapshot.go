package metrics

import (
	"context"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/centreon/go-broker/pkg/lib/log"
)

var logger = log.Logger("core/metrics")

// EngineGauges 引擎瞬时状态
type EngineGauges struct {
	State       string
	QueueLen    int
	Unprocessed int
	Muxers      int
	Cached      int
}

// GaugeSource 提供引擎瞬时状态
type GaugeSource interface {
	Gauges() EngineGauges
}

// Snapshot 运行快照
type Snapshot struct {
	Timestamp     time.Time     `json:"timestamp"`
	UptimeSeconds int64         `json:"uptimeSeconds"`
	Interval      time.Duration `json:"interval"`

	// 引擎
	State       string `json:"state"`
	QueueLen    int    `json:"queueLen"`
	Unprocessed int    `json:"unprocessed"`
	Muxers      int    `json:"muxers"`
	Cached      int    `json:"cached"`

	// 吞吐
	EventsIn        int64   `json:"eventsIn"`
	EventsOut       int64   `json:"eventsOut"`
	EventsInPerMin  float64 `json:"eventsInPerMin"`
	EventsOutPerMin float64 `json:"eventsOutPerMin"`

	// 资源
	Goroutines  int     `json:"goroutines"`
	HeapAllocMB float64 `json:"heapAllocMB"`
}

// SnapshotCollector 周期性收集并输出运行快照
type SnapshotCollector struct {
	mu sync.RWMutex

	clk       clock.Clock
	startTime time.Time

	reporter Reporter
	source   GaugeSource

	lastSnapshot *Snapshot
	lastIn       int64
	lastOut      int64
	lastTime     time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSnapshotCollector 创建快照收集器，reporter 和 source 都可以为 nil
func NewSnapshotCollector(reporter Reporter, source GaugeSource, clk clock.Clock) *SnapshotCollector {
	if clk == nil {
		clk = clock.New()
	}
	now := clk.Now()
	return &SnapshotCollector{
		clk:       clk,
		startTime: now,
		lastTime:  now,
		reporter:  reporter,
		source:    source,
	}
}

// Start 启动周期性快照
func (c *SnapshotCollector) Start(interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}

	c.mu.Lock()
	if c.cancel != nil {
		c.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	ticker := c.clk.Ticker(interval)
	c.mu.Unlock()

	c.wg.Add(1)
	go c.loop(ctx, ticker)

	logger.Info("运行快照收集器已启动", "interval", interval)
}

// Stop 停止快照收集
func (c *SnapshotCollector) Stop() {
	c.mu.Lock()
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	c.wg.Wait()
	logger.Info("运行快照收集器已停止")
}

func (c *SnapshotCollector) loop(ctx context.Context, ticker *clock.Ticker) {
	defer c.wg.Done()
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.log(c.Collect())
		}
	}
}

// Collect 收集当前快照
func (c *SnapshotCollector) Collect() *Snapshot {
	now := c.clk.Now()

	c.mu.RLock()
	lastTime, lastIn, lastOut := c.lastTime, c.lastIn, c.lastOut
	c.mu.RUnlock()

	elapsed := now.Sub(lastTime)
	minutes := elapsed.Minutes()
	if minutes <= 0 {
		minutes = 1.0 / 60.0
	}

	s := &Snapshot{
		Timestamp:     now,
		UptimeSeconds: int64(now.Sub(c.startTime).Seconds()),
		Interval:      elapsed,
		Goroutines:    runtime.NumGoroutine(),
	}

	if c.source != nil {
		g := c.source.Gauges()
		s.State = g.State
		s.QueueLen = g.QueueLen
		s.Unprocessed = g.Unprocessed
		s.Muxers = g.Muxers
		s.Cached = g.Cached
	}
	if c.reporter != nil {
		t := c.reporter.Totals()
		s.EventsIn = t.TotalIn
		s.EventsOut = t.TotalOut
		s.EventsInPerMin = float64(t.TotalIn-lastIn) / minutes
		s.EventsOutPerMin = float64(t.TotalOut-lastOut) / minutes
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	s.HeapAllocMB = float64(mem.HeapAlloc) / 1024 / 1024

	c.mu.Lock()
	c.lastSnapshot = s
	c.lastTime = now
	c.lastIn = s.EventsIn
	c.lastOut = s.EventsOut
	c.mu.Unlock()

	return s
}

func (c *SnapshotCollector) log(s *Snapshot) {
	logger.Info("运行快照",
		"uptime", s.UptimeSeconds,
		"state", s.State,
		"queue", s.QueueLen,
		"unprocessed", s.Unprocessed,
		"muxers", s.Muxers,
		"cached", s.Cached,
		"eventsIn", s.EventsIn,
		"eventsOut", s.EventsOut,
		"inPerMin", formatFloat(s.EventsInPerMin),
		"outPerMin", formatFloat(s.EventsOutPerMin),
		"goroutines", s.Goroutines,
		"heapAllocMB", formatFloat(s.HeapAllocMB),
	)
}

// LastSnapshot 获取最新快照
func (c *SnapshotCollector) LastSnapshot() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastSnapshot
}

// formatFloat 保留两位小数
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}
