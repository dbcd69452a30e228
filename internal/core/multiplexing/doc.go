// Package multiplexing 实现事件多路复用引擎
//
// Engine 接收发布的事件并分发给所有已注册的 Muxer。每个 Muxer
// 持有独立的私有队列，消费者通过 Read/Ack 按自己的节奏读取。
//
// # 状态
//
//	NotStarted --Start--> Running --Stop--> Stopped --Start--> Running
//
//   - NotStarted: Publish 只入队
//   - Running: Publish 入队并同步执行一轮分发
//   - Stopped: Publish 写入缓存，并递增未处理计数
//
// Start 从 Stopped 恢复时先回放缓存中的事件，再分发入站队列。
//
// # 分发
//
// 一轮分发在引擎锁内交换出入站队列并复制 Muxer 列表，释放锁后
// 并发投递给每个 Muxer，全部完成（或各自超时）后返回。
// 获取 Muxer 锁超时的批次停放在该 Muxer 的积压列表，在下一次
// 持锁操作开始时按序合并。
//
// 引擎锁和 Muxer 锁不会被同一路径同时持有。
//
// # 锁中毒
//
// 临界区内的 panic 被恢复，对应的引擎或 Muxer 被标记为中毒，
// 之后的调用都返回 ErrLockPoisoned。
//
// # 回送
//
// Muxer.PublishBack 把事件送回引擎（经由弱引用），分发时跳过
// 来源 Muxer，并由令牌桶限制速率。
package multiplexing
