// Package engine 定义存储引擎内部接口
//
// # 接口
//
//   - InternalEngine: 在 interfaces.Engine 之上增加批量写入、前缀迭代、事务
//   - Batch / Iterator / Transaction
//
// # 实现
//
//   - badger: BadgerDB 实现（唯一实现）
package engine
