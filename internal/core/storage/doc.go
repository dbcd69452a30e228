// Package storage 提供基于 BadgerDB 的持久化存储
//
// 存储为两类数据提供后端：
//
//	前缀        | 使用方                 | 说明
//	------------|------------------------|------------------------------
//	c/          | cache                  | 引擎停止期间发布的事件
//	q/<name>/   | multiplexing.Muxer     | 超出内存上限的 Muxer 事件
//
// # 使用示例
//
// 使用 Fx 依赖注入：
//
//	app := fx.New(
//	    storage.Module(),
//	    cache.Module(),
//	)
//
// 手动创建：
//
//	eng, err := storage.New("/var/lib/broker/broker.db")
//	if err != nil {
//	    return err
//	}
//	defer eng.Close()
//	cacheStore := storage.NewKVStore(eng, storage.CachePrefix)
//
// 未配置数据目录时（Storage.Enabled=false）模块不提供引擎，
// 缓存与溢出队列退化为内存实现。
//
// # 线程安全
//
// 所有公开的类型和方法都是线程安全的（Batch 除外）。
package storage
