package metrics

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
)

// ============================================================================
// RateMeter 测试
// ============================================================================

func TestRateMeter_Window(t *testing.T) {
	clk := clock.NewMock()
	r := NewRateMeterWithClock(clk)

	r.Add(30)
	clk.Add(time.Second)
	r.Add(30)

	assert.Equal(t, int64(60), r.Window())
	assert.InDelta(t, 1.0, r.Rate(), 1e-9)
}

func TestRateMeter_Expires(t *testing.T) {
	clk := clock.NewMock()
	r := NewRateMeterWithClock(clk)

	r.Add(10)
	clk.Add(30 * time.Second)
	r.Add(5)
	assert.Equal(t, int64(15), r.Window())

	// 第一个桶滑出窗口
	clk.Add(30 * time.Second)
	assert.Equal(t, int64(5), r.Window())

	clk.Add(2 * time.Minute)
	assert.Zero(t, r.Window())
}

func TestRateMeter_Reset(t *testing.T) {
	clk := clock.NewMock()
	r := NewRateMeterWithClock(clk)
	r.Add(100)
	r.Reset()
	assert.Zero(t, r.Window())
}
