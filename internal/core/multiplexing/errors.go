package multiplexing

import "errors"

var (
	// ErrMuxerNameInvalid Muxer 名称为空或不是合法 UTF-8，已使用默认名称
	ErrMuxerNameInvalid = errors.New("invalid muxer name")

	// ErrLockPoisoned 临界区内发生 panic，资源不可再用
	ErrLockPoisoned = errors.New("lock poisoned")

	// ErrClosed 引擎已关闭
	ErrClosed = errors.New("engine closed")

	// ErrNilEvent 事件为 nil
	ErrNilEvent = errors.New("nil event")

	// ErrFeedbackDisabled 回送路径已禁用
	ErrFeedbackDisabled = errors.New("feedback disabled")

	// ErrFeedbackThrottled 回送速率超限
	ErrFeedbackThrottled = errors.New("feedback throttled")

	// ErrEngineGone 引擎已被回收
	ErrEngineGone = errors.New("engine gone")

	// ErrAckOverflow 确认数超过已读取的事件数
	ErrAckOverflow = errors.New("ack exceeds read events")

	// ErrEventsLost 关闭时入站队列中的事件无法写入缓存
	ErrEventsLost = errors.New("events lost on shutdown")
)

// IsPoisoned 检查是否为锁中毒错误
func IsPoisoned(err error) bool {
	return errors.Is(err, ErrLockPoisoned)
}
