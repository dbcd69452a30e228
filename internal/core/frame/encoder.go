package frame

import "fmt"

// AppendFrame 追加一个完整帧（帧头 + 负载）
//
// h.Size 和 h.Checksum 由负载长度计算，调用方传入的值被忽略。
func AppendFrame(dst []byte, h Header, payload []byte) ([]byte, error) {
	if len(payload) > MaxFrameSize {
		return dst, fmt.Errorf("%w: payload of %d bytes exceeds %d", ErrInvalidFrameSize, len(payload), MaxFrameSize)
	}
	h.Size = uint16(len(payload))
	hdr := h.Encode()
	dst = append(dst, hdr[:]...)
	return append(dst, payload...), nil
}

// AppendContinuation 追加一个续帧标记（无负载）
func AppendContinuation(dst []byte, h Header) []byte {
	h.Size = ContinuationSize
	hdr := h.Encode()
	return append(dst, hdr[:]...)
}
