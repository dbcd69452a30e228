package frame

import (
	"encoding/binary"
	"fmt"

	"github.com/centreon/go-broker/pkg/lib/crc16"
)

const (
	// HeaderSize 帧头字节数
	HeaderSize = 16

	// ContinuationSize 续帧标记
	ContinuationSize = 0xffff

	// MaxFrameSize 单帧最大负载
	MaxFrameSize = ContinuationSize - 1
)

// Header 帧头
type Header struct {
	// Checksum 解析时读到的校验和；编码时忽略并重新计算
	Checksum      uint16
	Size          uint16
	EventType     uint32
	SourceID      uint32
	DestinationID uint32
}

// IsContinuation 是否为续帧标记
func (h Header) IsContinuation() bool {
	return h.Size == ContinuationSize
}

// Encode 编码帧头并填入校验和
func (h Header) Encode() [HeaderSize]byte {
	var b [HeaderSize]byte
	h.put(b[:])
	return b
}

func (h Header) put(b []byte) {
	binary.BigEndian.PutUint16(b[2:4], h.Size)
	binary.BigEndian.PutUint32(b[4:8], h.EventType)
	binary.BigEndian.PutUint32(b[8:12], h.SourceID)
	binary.BigEndian.PutUint32(b[12:16], h.DestinationID)
	binary.BigEndian.PutUint16(b[0:2], crc16.Checksum(b[2:HeaderSize]))
}

// ValidHeader 判断 b 的前 16 字节是否为校验通过的帧头
func ValidHeader(b []byte) bool {
	if len(b) < HeaderSize {
		return false
	}
	return binary.BigEndian.Uint16(b[0:2]) == crc16.Checksum(b[2:HeaderSize])
}

// ParseHeader 解析并校验帧头
func ParseHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("%w: header needs %d bytes, have %d", ErrFrameTruncated, HeaderSize, len(b))
	}
	if !ValidHeader(b) {
		return Header{}, ErrBadChecksum
	}
	return readHeader(b), nil
}

// readHeader 不做校验地读取帧头
func readHeader(b []byte) Header {
	return Header{
		Checksum:      binary.BigEndian.Uint16(b[0:2]),
		Size:          binary.BigEndian.Uint16(b[2:4]),
		EventType:     binary.BigEndian.Uint32(b[4:8]),
		SourceID:      binary.BigEndian.Uint32(b[8:12]),
		DestinationID: binary.BigEndian.Uint32(b[12:16]),
	}
}
