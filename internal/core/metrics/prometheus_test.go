package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	m := NewMetrics("test")

	m.RecordState(1)
	m.RecordPublished(4)
	m.RecordCached(nil)
	m.RecordCached(errors.New("disk full"))
	m.RecordQueue(7, 2)
	m.RecordMuxers(3)
	m.RecordFanOut(10 * time.Millisecond)
	m.RecordDelivered("rrd", 5, 1)
	m.RecordDeliveryTimeout("rrd")
	m.RecordMuxerQueue("rrd", 9, 4)
	m.RecordFeedback("rrd", "throttled")
	m.RecordDecoded(2)
	m.RecordDecodeError("sync")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.EngineState))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.EventsPublished))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsCached))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheErrors))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.QueueLength))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.UnprocessedEvents))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Muxers))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.EventsDelivered.WithLabelValues("rrd")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.EventsFiltered.WithLabelValues("rrd")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DeliveryTimeouts.WithLabelValues("rrd")))
	assert.Equal(t, 9.0, testutil.ToFloat64(m.MuxerQueueLength.WithLabelValues("rrd")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.MuxerSpoolLength.WithLabelValues("rrd")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FeedbackEvents.WithLabelValues("rrd", "throttled")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.FramesDecoded))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DecodeErrors.WithLabelValues("sync")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.FanOutDuration))
}

func TestMetrics_NilReceiver(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordState(1)
		m.RecordPublished(1)
		m.RecordCached(nil)
		m.RecordDelivered("x", 1, 1)
		m.RecordFeedback("x", "accepted")
		m.RecordDecodeError("sync")
	})
}

func TestRegistry_Register(t *testing.T) {
	reg := NewRegistry()
	m := NewMetrics("")

	require.NoError(t, reg.Register(m.Collectors()...))
	// 重复注册同一采集器
	require.NoError(t, reg.Register(m.EventsPublished))

	// 同名不同实例
	err := reg.Register(NewMetrics("").EventsPublished)
	var are prometheus.AlreadyRegisteredError
	assert.ErrorAs(t, err, &are)

	m.RecordPublished(2)
	n, err := testutil.GatherAndCount(reg.Prometheus(), "broker_engine_events_published_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.True(t, reg.Unregister(m.EventsPublished))
}
