package metrics

import (
	"sync"
	"sync/atomic"

	"github.com/benbjohnson/clock"
)

// EventCounter 事件计数器
//
// 全局统计：In 为发布到引擎的事件，Out 为投递到各 Muxer 的事件总和。
// Muxer 统计：In 为投递到该 Muxer 的事件，Out 为该 Muxer 被确认消费的事件。
type EventCounter struct {
	clk clock.Clock

	totalIn      atomic.Int64
	totalOut     atomic.Int64
	totalInRate  *RateMeter
	totalOutRate *RateMeter

	mu     sync.RWMutex
	muxers map[string]*muxerCounter
}

type muxerCounter struct {
	in      atomic.Int64
	out     atomic.Int64
	inRate  *RateMeter
	outRate *RateMeter
}

func (c *muxerCounter) stats() Stats {
	return Stats{
		TotalIn:  c.in.Load(),
		TotalOut: c.out.Load(),
		RateIn:   c.inRate.Rate(),
		RateOut:  c.outRate.Rate(),
	}
}

// NewEventCounter 创建事件计数器
func NewEventCounter() *EventCounter {
	return NewEventCounterWithClock(clock.New())
}

// NewEventCounterWithClock 使用指定时钟创建事件计数器
func NewEventCounterWithClock(clk clock.Clock) *EventCounter {
	return &EventCounter{
		clk:          clk,
		totalInRate:  NewRateMeterWithClock(clk),
		totalOutRate: NewRateMeterWithClock(clk),
		muxers:       make(map[string]*muxerCounter),
	}
}

// muxer 返回（必要时创建）某个 Muxer 的计数器
func (ec *EventCounter) muxer(name string) *muxerCounter {
	ec.mu.RLock()
	c := ec.muxers[name]
	ec.mu.RUnlock()
	if c != nil {
		return c
	}

	ec.mu.Lock()
	defer ec.mu.Unlock()
	if c = ec.muxers[name]; c == nil {
		c = &muxerCounter{
			inRate:  NewRateMeterWithClock(ec.clk),
			outRate: NewRateMeterWithClock(ec.clk),
		}
		ec.muxers[name] = c
	}
	return c
}

// LogPublished 实现 Reporter
func (ec *EventCounter) LogPublished(n int64) {
	ec.totalIn.Add(n)
	ec.totalInRate.Add(n)
}

// LogDelivered 实现 Reporter
func (ec *EventCounter) LogDelivered(muxer string, n int64) {
	ec.totalOut.Add(n)
	ec.totalOutRate.Add(n)

	c := ec.muxer(muxer)
	c.in.Add(n)
	c.inRate.Add(n)
}

// LogConsumed 实现 Reporter
func (ec *EventCounter) LogConsumed(muxer string, n int64) {
	c := ec.muxer(muxer)
	c.out.Add(n)
	c.outRate.Add(n)
}

// Totals 实现 Reporter
func (ec *EventCounter) Totals() Stats {
	return Stats{
		TotalIn:  ec.totalIn.Load(),
		TotalOut: ec.totalOut.Load(),
		RateIn:   ec.totalInRate.Rate(),
		RateOut:  ec.totalOutRate.Rate(),
	}
}

// ForMuxer 实现 Reporter
//
// 未知的 Muxer 返回零值。
func (ec *EventCounter) ForMuxer(muxer string) Stats {
	ec.mu.RLock()
	c := ec.muxers[muxer]
	ec.mu.RUnlock()
	if c == nil {
		return Stats{}
	}
	return c.stats()
}

// ByMuxer 实现 Reporter
func (ec *EventCounter) ByMuxer() map[string]Stats {
	ec.mu.RLock()
	defer ec.mu.RUnlock()

	out := make(map[string]Stats, len(ec.muxers))
	for name, c := range ec.muxers {
		out[name] = c.stats()
	}
	return out
}

// Reset 实现 Reporter
func (ec *EventCounter) Reset() {
	ec.totalIn.Store(0)
	ec.totalOut.Store(0)
	ec.totalInRate.Reset()
	ec.totalOutRate.Reset()

	ec.mu.Lock()
	ec.muxers = make(map[string]*muxerCounter)
	ec.mu.Unlock()
}
