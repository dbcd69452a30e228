package broker

import (
	"github.com/centreon/go-broker/internal/core/multiplexing"
	"github.com/centreon/go-broker/pkg/interfaces"
	"github.com/centreon/go-broker/pkg/types"
)

// ════════════════════════════════════════════════════════════════════════════
//                              类型别名
// ════════════════════════════════════════════════════════════════════════════

// Event 不透明事件句柄
type Event = interfaces.Event

// FrameEvent 帧格式对应的具体事件
type FrameEvent = types.Event

// Engine 多路复用引擎
type Engine = multiplexing.Engine

// Muxer 订阅者队列
type Muxer = multiplexing.Muxer

// MuxerOption Muxer 注册选项
type MuxerOption = multiplexing.MuxerOption

// Filter Muxer 写入过滤器
type Filter = multiplexing.Filter

// EngineState 引擎状态
type EngineState = multiplexing.State

// EngineStats 引擎统计
type EngineStats = multiplexing.Stats

// 引擎状态
const (
	NotStarted = multiplexing.NotStarted
	Running    = multiplexing.Running
	Stopped    = multiplexing.Stopped
)

// Muxer 注册选项
var (
	// WithFilter 设置写入过滤器
	WithFilter = multiplexing.WithFilter

	// WithMaxQueueSize 设置内存队列上限
	WithMaxQueueSize = multiplexing.WithMaxQueueSize
)
