package interfaces

// Cache 停止模式下的事件缓存
//
// 引擎处于 Stopped 状态时，Publish 的事件被写入 Cache，
// 而不是进入入站队列。引擎重新启动时调用 Drain 取回全部事件，
// 并在实时事件之前重放。
//
// 线程安全：引擎只在持有自身锁时调用 Cache，
// 但实现仍应保证并发安全，因为宿主可能在外部读取 Len。
type Cache interface {
	// Add 追加一个事件
	//
	// 返回 nil 表示事件已被接受，引擎据此递增未处理计数。
	Add(ev Event) error

	// Drain 按写入顺序取出并删除全部事件
	Drain() ([]Event, error)

	// Len 返回当前缓存的事件数
	Len() int
}

// Spool Muxer 溢出队列
//
// Muxer 内存队列达到上限后，新事件按 FIFO 顺序写入 Spool，
// 消费者确认后再从 Spool 回填。
type Spool interface {
	// Push 追加一个事件
	Push(ev Event) error

	// Pop 取出最早的事件，队列为空时 ok 为 false
	Pop() (ev Event, ok bool, err error)

	// Len 返回事件数
	Len() int

	// Clear 丢弃全部事件
	Clear() error
}

// SpoolFactory 按 Muxer 名称创建溢出队列
//
// 同名 Muxer 在重启后拿到同一个持久化队列。
type SpoolFactory func(name string) (Spool, error)
