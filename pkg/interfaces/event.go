package interfaces

// Event 事件句柄
//
// 引擎把事件当作不透明的共享引用：同一个 Event 值会被放入
// 入站队列、缓存以及每个 Muxer 的私有队列，引擎本身不读取负载。
// 最后一个持有者释放后由 GC 回收。
//
// 实现必须可以被多个 goroutine 同时读取。
type Event interface {
	// Type 返回事件类型（category<<16 | element）
	//
	// 仅用于 Muxer 写入过滤。
	Type() uint32
}

// EventCodec 事件编解码器
//
// 缓存和 Muxer 溢出队列落盘时使用。
type EventCodec interface {
	// Marshal 将事件编码为字节
	Marshal(ev Event) ([]byte, error)

	// Unmarshal 从字节解码事件
	Unmarshal(data []byte) (Event, error)
}
