// Package lib 包含基础设施工具库
//
// 本目录包含与架构组件无关的通用工具库：
//
//   - crc16: 帧头校验和（CRC-16/CCITT）
//   - log: 日志封装
//
// # 与 pkg/ 其他目录的关系
//
// pkg/ 目录包含三类内容：
//
//   - interfaces/: 组件公共接口（Event、Cache、Spool、存储引擎）
//   - types/: 公共类型定义（帧事件）
//   - lib/: 基础设施工具库（本目录）
package lib
