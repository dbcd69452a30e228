// Package types 定义 broker 公共类型
//
// 主要类型：
//   - Event: 帧编解码器产出的具体事件
//   - 事件类型辅助函数（category<<16 | element）
package types
