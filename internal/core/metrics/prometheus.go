package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DefaultNamespace 默认指标名前缀
const DefaultNamespace = "broker"

// Metrics 引擎和 Muxer 的 Prometheus 采集器
//
// 所有 Record* 方法允许 nil 接收者，未启用指标时引擎持有 nil 即可。
type Metrics struct {
	// 引擎
	EngineState       prometheus.Gauge
	EventsPublished   prometheus.Counter
	EventsCached      prometheus.Counter
	CacheErrors       prometheus.Counter
	QueueLength       prometheus.Gauge
	UnprocessedEvents prometheus.Gauge
	Muxers            prometheus.Gauge
	FanOutDuration    prometheus.Histogram

	// Muxer
	EventsDelivered  *prometheus.CounterVec
	EventsFiltered   *prometheus.CounterVec
	DeliveryTimeouts *prometheus.CounterVec
	MuxerQueueLength *prometheus.GaugeVec
	MuxerSpoolLength *prometheus.GaugeVec
	FeedbackEvents   *prometheus.CounterVec

	// 帧解码
	FramesDecoded prometheus.Counter
	DecodeErrors  *prometheus.CounterVec
}

// NewMetrics 创建采集器，namespace 为空时使用 DefaultNamespace
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}

	return &Metrics{
		EngineState: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "state",
			Help:      "Engine state (0=not started, 1=running, 2=stopped)",
		}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "events_published_total",
			Help:      "Total number of events published to the engine",
		}),
		EventsCached: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "events_cached_total",
			Help:      "Total number of events written to the cache while stopped",
		}),
		CacheErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "cache_errors_total",
			Help:      "Total number of failed cache operations",
		}),
		QueueLength: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "queue_length",
			Help:      "Number of events in the inbound queue",
		}),
		UnprocessedEvents: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "unprocessed_events",
			Help:      "Number of events cached since the engine stopped",
		}),
		Muxers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "muxers",
			Help:      "Number of registered muxers",
		}),
		FanOutDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "fanout_duration_seconds",
			Help:      "Fan-out round duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),

		EventsDelivered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "muxer",
			Name:      "events_delivered_total",
			Help:      "Total number of events delivered to a muxer",
		}, []string{"muxer"}),
		EventsFiltered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "muxer",
			Name:      "events_filtered_total",
			Help:      "Total number of events rejected by a muxer write filter",
		}, []string{"muxer"}),
		DeliveryTimeouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "muxer",
			Name:      "delivery_timeouts_total",
			Help:      "Total number of deliveries parked because the muxer was busy",
		}, []string{"muxer"}),
		MuxerQueueLength: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "muxer",
			Name:      "queue_length",
			Help:      "Number of events held in memory by a muxer",
		}, []string{"muxer"}),
		MuxerSpoolLength: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "muxer",
			Name:      "spool_length",
			Help:      "Number of events spooled by a muxer",
		}, []string{"muxer"}),
		FeedbackEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "muxer",
			Name:      "feedback_events_total",
			Help:      "Total number of events published back by a muxer",
		}, []string{"muxer", "result"}),

		FramesDecoded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "codec",
			Name:      "records_decoded_total",
			Help:      "Total number of records decoded from the byte stream",
		}),
		DecodeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "codec",
			Name:      "decode_errors_total",
			Help:      "Total number of decode errors",
		}, []string{"reason"}),
	}
}

// Collectors 返回全部采集器
func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.EngineState,
		m.EventsPublished,
		m.EventsCached,
		m.CacheErrors,
		m.QueueLength,
		m.UnprocessedEvents,
		m.Muxers,
		m.FanOutDuration,
		m.EventsDelivered,
		m.EventsFiltered,
		m.DeliveryTimeouts,
		m.MuxerQueueLength,
		m.MuxerSpoolLength,
		m.FeedbackEvents,
		m.FramesDecoded,
		m.DecodeErrors,
	}
}

// RecordState 更新引擎状态
func (m *Metrics) RecordState(state int) {
	if m == nil {
		return
	}
	m.EngineState.Set(float64(state))
}

// RecordPublished 记录发布事件数
func (m *Metrics) RecordPublished(n int) {
	if m == nil {
		return
	}
	m.EventsPublished.Add(float64(n))
}

// RecordCached 记录缓存写入结果
func (m *Metrics) RecordCached(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.CacheErrors.Inc()
		return
	}
	m.EventsCached.Inc()
}

// RecordCacheError 记录缓存错误
func (m *Metrics) RecordCacheError() {
	if m == nil {
		return
	}
	m.CacheErrors.Inc()
}

// RecordQueue 更新入站队列长度和未处理事件数
func (m *Metrics) RecordQueue(queueLen, unprocessed int) {
	if m == nil {
		return
	}
	m.QueueLength.Set(float64(queueLen))
	m.UnprocessedEvents.Set(float64(unprocessed))
}

// RecordMuxers 更新已注册 Muxer 数
func (m *Metrics) RecordMuxers(n int) {
	if m == nil {
		return
	}
	m.Muxers.Set(float64(n))
}

// RecordFanOut 记录一轮分发耗时
func (m *Metrics) RecordFanOut(d time.Duration) {
	if m == nil {
		return
	}
	m.FanOutDuration.Observe(d.Seconds())
}

// RecordDelivered 记录投递到 Muxer 的事件
func (m *Metrics) RecordDelivered(muxer string, delivered, filtered int) {
	if m == nil {
		return
	}
	if delivered > 0 {
		m.EventsDelivered.WithLabelValues(muxer).Add(float64(delivered))
	}
	if filtered > 0 {
		m.EventsFiltered.WithLabelValues(muxer).Add(float64(filtered))
	}
}

// RecordDeliveryTimeout 记录投递超时
func (m *Metrics) RecordDeliveryTimeout(muxer string) {
	if m == nil {
		return
	}
	m.DeliveryTimeouts.WithLabelValues(muxer).Inc()
}

// RecordMuxerQueue 更新 Muxer 队列长度
func (m *Metrics) RecordMuxerQueue(muxer string, queueLen, spoolLen int) {
	if m == nil {
		return
	}
	m.MuxerQueueLength.WithLabelValues(muxer).Set(float64(queueLen))
	m.MuxerSpoolLength.WithLabelValues(muxer).Set(float64(spoolLen))
}

// RecordFeedback 记录反馈事件，result 为 accepted/throttled/rejected
func (m *Metrics) RecordFeedback(muxer, result string) {
	if m == nil {
		return
	}
	m.FeedbackEvents.WithLabelValues(muxer, result).Inc()
}

// RecordDecoded 记录解码成功的记录数
func (m *Metrics) RecordDecoded(n int) {
	if m == nil {
		return
	}
	m.FramesDecoded.Add(float64(n))
}

// RecordDecodeError 记录解码错误
func (m *Metrics) RecordDecodeError(reason string) {
	if m == nil {
		return
	}
	m.DecodeErrors.WithLabelValues(reason).Inc()
}
