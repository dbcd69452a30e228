// Package kv 提供带前缀隔离的 KV 存储抽象层
//
// # 键空间设计
//
//	c/          - 停止模式事件缓存
//	q/<muxer>/  - Muxer 溢出队列
//
// 每个队列内部再分两段：
//
//	e/<seq:8 字节大端>  - 事件记录
//	m/head, m/tail      - 队列游标
//
// # 使用示例
//
//	cache := kv.New(eng, []byte("c/"))
//	spool := kv.New(eng, []byte("q/")).SubStore([]byte("rrd/"))
package kv
