// Package metrics 提供事件吞吐统计和 Prometheus 指标
//
// 组成：
//   - EventCounter: 全局与按 Muxer 的事件计数和速率（60 秒滑动窗口）
//   - Metrics: 引擎和 Muxer 的 Prometheus 采集器
//   - Registry: 独立的 prometheus.Registry，附带 Go 运行时采集器
//   - Server: /metrics HTTP 服务
//   - SnapshotCollector: 周期性输出运行快照日志
//
// # 快速开始
//
//	counter := metrics.NewEventCounter()
//	counter.LogPublished(1)
//	counter.LogDelivered("rrd", 1)
//
//	stats := counter.Totals()
//	fmt.Printf("in=%d out=%d\n", stats.TotalIn, stats.TotalOut)
//
// 所有类型都是并发安全的。
package metrics
