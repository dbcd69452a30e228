package frame

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

// sampleHeader 测试用帧头
var sampleHeader = Header{
	EventType:     0x00010002,
	SourceID:      1,
	DestinationID: 2,
}

// samplePayload 测试用负载
var samplePayload = []byte{1, 2, 3, 4}

// sampleFrameHex sampleHeader + samplePayload 的编码结果
const sampleFrameHex = "59e3000400010002000000010000000201020304"

func sampleFrame(t *testing.T) []byte {
	t.Helper()
	b, err := hex.DecodeString(sampleFrameHex)
	require.NoError(t, err)
	return b
}

// garbage 生成不会被误判为帧头的填充字节
func garbage(kind string, n int) []byte {
	switch kind {
	case "a5":
		return bytes.Repeat([]byte{0xa5}, n)
	default:
		b := make([]byte, n)
		for i := range b {
			b[i] = byte(i*7 + 3)
		}
		return b
	}
}
