package frame

import "errors"

// 帧编解码错误
var (
	// ErrFrameSync 在缓冲区中找不到校验通过的帧头
	ErrFrameSync = errors.New("frame: no valid header found")

	// ErrFrameTruncated 缓冲区在帧头或负载中途结束
	ErrFrameTruncated = errors.New("frame: truncated")

	// ErrInvalidFrameSize 帧长度非法或超过记录字节上限
	ErrInvalidFrameSize = errors.New("frame: invalid size")

	// ErrChainTooLong 续帧链超过上限
	ErrChainTooLong = errors.New("frame: continuation chain too long")

	// ErrBadChecksum 帧头校验和不匹配
	ErrBadChecksum = errors.New("frame: header checksum mismatch")

	// ErrUnsupportedEvent 编解码器无法处理该事件实现
	ErrUnsupportedEvent = errors.New("frame: unsupported event implementation")
)
