package interfaces

// Engine 存储引擎基础接口
//
// 提供键值存储的基本操作。broker 内部使用 BadgerDB 实现，
// 用于缓存回退和 Muxer 溢出队列的持久化。
//
// 线程安全：实现必须保证所有方法的线程安全性。
type Engine interface {
	// Get 获取指定键的值
	//
	// 返回值的副本；键不存在时返回 ErrNotFound。
	Get(key []byte) ([]byte, error)

	// Put 设置键值对，已存在则覆盖
	Put(key, value []byte) error

	// Delete 删除指定键（幂等）
	Delete(key []byte) error

	// Has 检查键是否存在
	Has(key []byte) (bool, error)

	// Close 关闭存储引擎
	//
	// 多次调用 Close 是安全的。
	Close() error
}

// EngineStats 引擎统计信息
type EngineStats struct {
	// KeyCount 当前存储的键数量（估算）
	KeyCount int64 `json:"key_count"`

	// DiskSize 磁盘占用大小（字节）
	DiskSize int64 `json:"disk_size"`

	// CacheHits 读取命中次数
	CacheHits int64 `json:"cache_hits"`

	// CacheMisses 读取未命中次数
	CacheMisses int64 `json:"cache_misses"`
}

// CacheHitRate 计算命中率，没有访问时返回 0
func (s *EngineStats) CacheHitRate() float64 {
	total := s.CacheHits + s.CacheMisses
	if total == 0 {
		return 0
	}
	return float64(s.CacheHits) / float64(total)
}
