package frame

import (
	"errors"
	"fmt"

	"github.com/centreon/go-broker/pkg/lib/log"
)

var logger = log.Logger("core/frame")

// Result 一条记录的解码结果
type Result struct {
	// Payload 拼接后的负载
	Payload []byte

	// Header 最后一个帧头（携带负载的那一帧）
	Header Header

	// Skipped 重同步跳过的字节数（整条链累计）
	Skipped int

	// Consumed 从缓冲区起始位置消费的字节数
	Consumed int

	// Frames 读取的帧数（含续帧标记）
	Frames int
}

// Decoder 帧解码器
//
// Decoder 无内部状态，可被多个 goroutine 并发使用。
type Decoder struct {
	cfg Config
}

// NewDecoder 创建解码器，非法配置回退到默认值
func NewDecoder(cfg Config) *Decoder {
	if err := cfg.Validate(); err != nil {
		logger.Warn("解码器配置无效，使用默认配置", "error", err)
		cfg = DefaultConfig()
	}
	return &Decoder{cfg: cfg}
}

// Config 返回解码器配置
func (d *Decoder) Config() Config {
	return d.cfg
}

// DecodeStream 从 buf 起始位置解码一条逻辑记录，返回拼接后的负载
func DecodeStream(buf []byte) ([]byte, error) {
	res, err := defaultDecoder.Decode(buf)
	if err != nil {
		return nil, err
	}
	return res.Payload, nil
}

var defaultDecoder = NewDecoder(DefaultConfig())

// Decode 从 buf 起始位置解码一条逻辑记录
//
// 续帧链以循环方式处理，每一环都先做重同步。
func (d *Decoder) Decode(buf []byte) (Result, error) {
	var res Result
	cursor := 0

	for {
		start, ok := d.sync(buf, cursor)
		if !ok {
			return Result{}, fmt.Errorf("%w: scanned from offset %d of %d", ErrFrameSync, cursor, len(buf))
		}
		res.Skipped += start - cursor

		h := readHeader(buf[start:])
		cursor = start + HeaderSize
		res.Frames++
		res.Header = h

		if res.Frames > d.cfg.MaxChain {
			return Result{}, fmt.Errorf("%w: more than %d frames", ErrChainTooLong, d.cfg.MaxChain)
		}

		if h.IsContinuation() {
			if cursor >= len(buf) {
				return Result{}, fmt.Errorf("%w: continuation marker at end of buffer", ErrFrameTruncated)
			}
			continue
		}

		size := int(h.Size)
		if d.cfg.MaxRecordSize > 0 && size > d.cfg.MaxRecordSize {
			return Result{}, fmt.Errorf("%w: record exceeds %d bytes", ErrInvalidFrameSize, d.cfg.MaxRecordSize)
		}
		if size > len(buf)-cursor {
			return Result{}, fmt.Errorf("%w: payload needs %d bytes, have %d", ErrFrameTruncated, size, len(buf)-cursor)
		}

		if res.Payload == nil {
			res.Payload = make([]byte, 0, size)
		}
		res.Payload = append(res.Payload, buf[cursor:cursor+size]...)
		res.Consumed = cursor + size
		return res, nil
	}
}

// DecodeAll 依次解码 buf 中的全部记录
//
// 出错时返回已成功解码的记录和错误，Consumed 之后的字节未处理。
func (d *Decoder) DecodeAll(buf []byte) ([]Result, error) {
	var results []Result
	offset := 0

	for offset < len(buf) {
		res, err := d.Decode(buf[offset:])
		if err != nil {
			return results, fmt.Errorf("record at offset %d: %w", offset, err)
		}
		offset += res.Consumed
		results = append(results, res)
	}

	return results, nil
}

// sync 从 cursor 开始寻找校验通过的帧头
func (d *Decoder) sync(buf []byte, cursor int) (int, bool) {
	limit := len(buf) - HeaderSize
	if d.cfg.MaxResync > 0 && cursor+d.cfg.MaxResync < limit {
		limit = cursor + d.cfg.MaxResync
	}

	for i := cursor; i <= limit; i++ {
		if ValidHeader(buf[i:]) {
			if i > cursor {
				logger.Debug("帧重同步", "skipped", i-cursor, "offset", cursor)
			}
			return i, true
		}
	}
	return 0, false
}

// IsSyncError 检查是否为找不到帧头的错误
func IsSyncError(err error) bool {
	return errors.Is(err, ErrFrameSync)
}

// IsTruncated 检查是否为数据不完整的错误
func IsTruncated(err error) bool {
	return errors.Is(err, ErrFrameTruncated)
}
