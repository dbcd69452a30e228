package metrics

// Reporter 记录和查询事件吞吐
//
// 引擎在发布和投递路径上调用 Log* 方法；实现必须并发安全且不阻塞。
type Reporter interface {
	// LogPublished 记录进入引擎的事件数
	LogPublished(n int64)

	// LogDelivered 记录投递到某个 Muxer 的事件数
	LogDelivered(muxer string, n int64)

	// LogConsumed 记录某个 Muxer 被确认消费的事件数
	LogConsumed(muxer string, n int64)

	// Totals 返回全局统计
	Totals() Stats

	// ForMuxer 返回某个 Muxer 的统计
	ForMuxer(muxer string) Stats

	// ByMuxer 返回全部 Muxer 的统计
	ByMuxer() map[string]Stats

	// Reset 重置所有统计
	Reset()
}

var _ Reporter = (*EventCounter)(nil)
