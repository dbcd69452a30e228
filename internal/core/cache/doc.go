// Package cache 提供事件的 FIFO 暂存
//
// 两个使用场景共用同一套实现：
//   - 引擎停止期间的缓存回退（interfaces.Cache，键空间 c/）
//   - Muxer 超出内存上限后的溢出队列（interfaces.Spool，键空间 q/<name>/）
//
// # 实现
//
//   - Queue: 基于 kv.Store 的持久化队列，事件经 frame.Codec 编码后按序号存储
//   - Memory: 内存队列，未配置数据目录时使用
//
// # 持久化布局
//
//	<prefix>e/<seq:8 字节大端>  编码后的事件
//	<prefix>m/head               下一个出队序号
//	<prefix>m/tail               下一个入队序号
//
// 追加在单个事务中同时写入记录和 tail，出队在单个事务中读删记录并推进 head。
package cache
