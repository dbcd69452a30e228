package crc16

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChecksum_KnownValues(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want uint16
	}{
		{"empty", nil, 0x0000},
		{"zero byte", []byte{0x00}, 0xf078},
		{"check string", []byte("123456789"), 0x906e},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Checksum(tt.in))
		})
	}
}

func TestChecksum_OrderSensitive(t *testing.T) {
	assert.NotEqual(t, Checksum([]byte{1, 2}), Checksum([]byte{2, 1}))
}

func TestChecksum_Deterministic(t *testing.T) {
	in := []byte("monitoring event")
	assert.Equal(t, Checksum(in), Checksum(in))
}

func TestUpdate_Incremental(t *testing.T) {
	in := []byte("123456789")
	for split := 0; split <= len(in); split++ {
		crc := Update(Init, in[:split])
		crc = Update(crc, in[split:])
		assert.Equal(t, uint16(0x906e), ^crc, "split at %d", split)
	}
}

func BenchmarkChecksum(b *testing.B) {
	buf := make([]byte, 14)
	b.SetBytes(int64(len(buf)))
	for i := 0; i < b.N; i++ {
		Checksum(buf)
	}
}
