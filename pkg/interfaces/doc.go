// Package interfaces 定义 broker 的公共接口
//
// 接口文件：
//   - event.go    - 事件句柄与编解码
//   - cache.go    - 停止模式下的事件缓存与 Muxer 溢出队列
//   - storage.go  - 存储引擎（BadgerDB）
//
// 实现位于 internal/core 下对应目录，通过 Fx 组装。
package interfaces
