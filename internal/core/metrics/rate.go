package metrics

import (
	"sync"

	"github.com/benbjohnson/clock"
)

// ============================================================================
// RateMeter - 速率计算器
// ============================================================================

const rateWindow = 60

// RateMeter 速率计算器（基于滑动窗口）
//
// 使用 60 个 1 秒桶来计算最近 60 秒的平均速率。
type RateMeter struct {
	mu      sync.RWMutex
	clk     clock.Clock
	buckets [rateWindow]int64
	lastIdx int
	// lastSec 最后写入桶对应的 Unix 秒
	lastSec int64
}

// NewRateMeter 创建速率计算器
func NewRateMeter() *RateMeter {
	return NewRateMeterWithClock(clock.New())
}

// NewRateMeterWithClock 使用指定时钟创建速率计算器
func NewRateMeterWithClock(clk clock.Clock) *RateMeter {
	return &RateMeter{clk: clk, lastSec: clk.Now().Unix()}
}

// advance 把窗口推进到当前秒，调用方持有写锁
func (r *RateMeter) advance() {
	now := r.clk.Now().Unix()
	elapsed := now - r.lastSec
	if elapsed <= 0 {
		return
	}
	if elapsed >= rateWindow {
		r.buckets = [rateWindow]int64{}
		r.lastIdx = 0
	} else {
		for i := int64(0); i < elapsed; i++ {
			r.lastIdx = (r.lastIdx + 1) % rateWindow
			r.buckets[r.lastIdx] = 0
		}
	}
	r.lastSec = now
}

// Add 添加计数到当前桶
func (r *RateMeter) Add(n int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.advance()
	r.buckets[r.lastIdx] += n
}

// Rate 返回最近 60 秒的平均速率（个/秒）
func (r *RateMeter) Rate() float64 {
	return float64(r.Window()) / rateWindow
}

// Window 返回最近 60 秒的总量
func (r *RateMeter) Window() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.advance()
	var total int64
	for _, v := range r.buckets {
		total += v
	}
	return total
}

// Reset 重置速率计算器
func (r *RateMeter) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.buckets = [rateWindow]int64{}
	r.lastIdx = 0
	r.lastSec = r.clk.Now().Unix()
}
