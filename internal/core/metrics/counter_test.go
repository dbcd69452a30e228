package metrics

import (
	"sync"
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// EventCounter 测试
// ============================================================================

func TestEventCounter_Totals(t *testing.T) {
	ec := NewEventCounterWithClock(clock.NewMock())

	ec.LogPublished(3)
	ec.LogDelivered("rrd", 3)
	ec.LogDelivered("sql", 2)
	ec.LogConsumed("rrd", 1)

	totals := ec.Totals()
	assert.Equal(t, int64(3), totals.TotalIn)
	assert.Equal(t, int64(5), totals.TotalOut)
	assert.InDelta(t, 3.0/60, totals.RateIn, 1e-9)

	rrd := ec.ForMuxer("rrd")
	assert.Equal(t, int64(3), rrd.TotalIn)
	assert.Equal(t, int64(1), rrd.TotalOut)

	assert.Equal(t, Stats{}, ec.ForMuxer("unknown"))

	byMuxer := ec.ByMuxer()
	require.Len(t, byMuxer, 2)
	assert.Equal(t, int64(2), byMuxer["sql"].TotalIn)
}

func TestEventCounter_Reset(t *testing.T) {
	ec := NewEventCounter()
	ec.LogPublished(1)
	ec.LogDelivered("a", 1)
	ec.Reset()

	assert.Equal(t, Stats{}, ec.Totals())
	assert.Empty(t, ec.ByMuxer())
}

func TestEventCounter_Concurrent(t *testing.T) {
	ec := NewEventCounter()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				ec.LogPublished(1)
				ec.LogDelivered("m", 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(8000), ec.Totals().TotalIn)
	assert.Equal(t, int64(8000), ec.ForMuxer("m").TotalIn)
}
