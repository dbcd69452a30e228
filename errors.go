package broker

import (
	"errors"

	"github.com/centreon/go-broker/internal/core/frame"
	"github.com/centreon/go-broker/internal/core/multiplexing"
)

// 公共错误定义
var (
	// ────────────────────────────────────────────────────────────────────────
	// Broker 生命周期错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrNotStarted Broker 未启动
	ErrNotStarted = errors.New("broker not started")

	// ErrAlreadyStarted Broker 已启动
	ErrAlreadyStarted = errors.New("broker already started")

	// ErrBrokerClosed Broker 已关闭
	ErrBrokerClosed = errors.New("broker closed")

	// ────────────────────────────────────────────────────────────────────────
	// 引擎错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrEngineClosed 引擎已关闭
	ErrEngineClosed = multiplexing.ErrClosed

	// ErrLockPoisoned 引擎或 Muxer 在临界区内 panic，不可再用
	ErrLockPoisoned = multiplexing.ErrLockPoisoned

	// ErrMuxerNameInvalid Muxer 名称非法，已使用默认名称
	ErrMuxerNameInvalid = multiplexing.ErrMuxerNameInvalid

	// ErrNilEvent 事件为 nil
	ErrNilEvent = multiplexing.ErrNilEvent

	// ErrEventsLost 关闭时部分入站事件无法写入缓存
	ErrEventsLost = multiplexing.ErrEventsLost

	// ────────────────────────────────────────────────────────────────────────
	// 帧解码错误
	// ────────────────────────────────────────────────────────────────────────

	// ErrFrameSync 找不到校验通过的帧头
	ErrFrameSync = frame.ErrFrameSync

	// ErrFrameTruncated 数据在帧中途结束
	ErrFrameTruncated = frame.ErrFrameTruncated

	// ErrInvalidFrameSize 帧长度非法
	ErrInvalidFrameSize = frame.ErrInvalidFrameSize

	// ErrChainTooLong 续帧链过长
	ErrChainTooLong = frame.ErrChainTooLong
)
