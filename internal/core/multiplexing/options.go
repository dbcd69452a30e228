package multiplexing

import (
	"github.com/benbjohnson/clock"

	"github.com/centreon/go-broker/internal/core/metrics"
	"github.com/centreon/go-broker/pkg/interfaces"
)

// Option 引擎选项
type Option func(*Engine)

// WithClock 设置时钟，测试使用 clock.NewMock
func WithClock(clk clock.Clock) Option {
	return func(e *Engine) {
		if clk != nil {
			e.clk = clk
		}
	}
}

// WithMetrics 设置 Prometheus 采集器
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithReporter 设置吞吐计数器
func WithReporter(r metrics.Reporter) Option {
	return func(e *Engine) {
		if r != nil {
			e.reporter = r
		}
	}
}

// WithSpoolFactory 设置 Muxer 溢出队列工厂
func WithSpoolFactory(f interfaces.SpoolFactory) Option {
	return func(e *Engine) {
		if f != nil {
			e.spools = f
		}
	}
}

// MuxerOption Muxer 选项
//
// 对已存在的 Muxer 重新注册时选项会再次应用。
type MuxerOption func(*muxerSettings)

type muxerSettings struct {
	filter       *Filter
	maxQueueSize *int
}

// WithFilter 设置写入过滤器
func WithFilter(f Filter) MuxerOption {
	return func(s *muxerSettings) {
		s.filter = &f
	}
}

// WithMaxQueueSize 覆盖内存队列上限，0 表示不限
func WithMaxQueueSize(n int) MuxerOption {
	return func(s *muxerSettings) {
		if n >= 0 {
			s.maxQueueSize = &n
		}
	}
}
