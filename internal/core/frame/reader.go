package frame

import (
	"errors"
	"fmt"
	"io"
)

// readChunk 每次从底层 Reader 读取的字节数
const readChunk = 32 << 10

// Reader 从字节流中逐条读取记录
//
// 缓冲未完整的数据，直到能够解码出一条记录。
// Reader 不是线程安全的。
type Reader struct {
	r   io.Reader
	dec *Decoder
	buf []byte
	eof bool
}

// NewReader 创建流式读取器，dec 为 nil 时使用默认解码器
func NewReader(r io.Reader, dec *Decoder) *Reader {
	if dec == nil {
		dec = defaultDecoder
	}
	return &Reader{r: r, dec: dec}
}

// Next 返回下一条记录
//
// 流正常结束时返回 io.EOF；流在记录中途结束时返回 io.ErrUnexpectedEOF。
// 无法靠更多数据恢复的错误（超出重同步预算、续帧链过长、记录过大）
// 会丢弃当前缓冲区，下一次调用从流中尚未读取的部分继续。
func (r *Reader) Next() (Result, error) {
	for {
		if len(r.buf) > 0 {
			res, err := r.dec.Decode(r.buf)
			if err == nil {
				r.buf = r.buf[res.Consumed:]
				return res, nil
			}
			if !r.needMore(err) {
				r.buf = nil
				return Result{}, err
			}
		}

		if r.eof {
			if len(r.buf) == 0 {
				return Result{}, io.EOF
			}
			n := len(r.buf)
			r.buf = nil
			return Result{}, fmt.Errorf("%w: %d trailing bytes", io.ErrUnexpectedEOF, n)
		}

		if err := r.fill(); err != nil {
			return Result{}, err
		}
	}
}

// needMore 判断错误是否可能因为数据不足
func (r *Reader) needMore(err error) bool {
	if errors.Is(err, ErrFrameTruncated) {
		return true
	}
	if errors.Is(err, ErrFrameSync) {
		limit := r.dec.cfg.MaxResync
		return limit == 0 || len(r.buf) < limit+HeaderSize
	}
	return false
}

func (r *Reader) fill() error {
	chunk := make([]byte, readChunk)
	n, err := r.r.Read(chunk)
	r.buf = append(r.buf, chunk[:n]...)
	if errors.Is(err, io.EOF) {
		r.eof = true
		return nil
	}
	return err
}
