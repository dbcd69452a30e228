package metrics

// Stats 事件吞吐快照
//
// TotalIn 为进入引擎的事件数，TotalOut 为投递到 Muxer 的事件数。
// 速率单位为事件/秒，取最近 60 秒平均。
type Stats struct {
	TotalIn  int64
	TotalOut int64
	RateIn   float64
	RateOut  float64
}
