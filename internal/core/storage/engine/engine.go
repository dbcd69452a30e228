package engine

import (
	"github.com/centreon/go-broker/pkg/interfaces"
)

// InternalEngine 内部扩展接口
//
// 缓存和 Muxer 溢出队列只依赖这里列出的能力：
// 批量追加、按前缀顺序扫描、读删原子出队。
type InternalEngine interface {
	interfaces.Engine

	// NewBatch 创建批量写入对象
	NewBatch() Batch

	// Write 原子写入 batch，写入后 batch 被重置
	Write(batch Batch) error

	// NewPrefixIterator 创建按键升序的前缀迭代器，调用者负责 Close
	NewPrefixIterator(prefix []byte) Iterator

	// NewTransaction 创建事务，调用者负责 Commit 或 Discard
	NewTransaction(writable bool) Transaction

	// Start 启动后台任务（值日志 GC）
	Start() error

	// Sync 同步数据到磁盘
	Sync() error

	// Stats 获取统计信息快照
	Stats() *interfaces.EngineStats
}

// Batch 批量写入接口
//
// Batch 不是线程安全的。
type Batch interface {
	Put(key, value []byte)
	Delete(key []byte)

	// Write 原子写入全部操作并重置
	Write() error

	// Reset 丢弃未写入的操作
	Reset()

	// Size 返回待写入的操作数量
	Size() int
}

// Iterator 前缀迭代器
//
// 使用模式:
//
//	iter := eng.NewPrefixIterator(prefix)
//	defer iter.Close()
//
//	for iter.First(); iter.Valid(); iter.Next() {
//	    key, value := iter.Key(), iter.Value()
//	}
//	return iter.Error()
type Iterator interface {
	First() bool
	Next() bool
	Valid() bool

	// Key 返回当前键的副本
	Key() []byte

	// Value 返回当前值的副本
	Value() []byte

	Close()
	Error() error
}

// Transaction 事务接口
type Transaction interface {
	// Get 读取值，键不存在时返回 ErrNotFound
	Get(key []byte) ([]byte, error)

	Set(key, value []byte) error
	Delete(key []byte) error

	// Commit 提交事务，写冲突时返回 ErrTransactionConflict
	Commit() error

	// Discard 回滚，多次调用安全
	Discard()
}
