package frame

import (
	"fmt"

	"github.com/centreon/go-broker/pkg/interfaces"
	"github.com/centreon/go-broker/pkg/types"
)

// Codec 基于帧格式的事件编解码器
//
// 每个 *types.Event 编码为一个独立帧，供缓存和 Muxer 溢出队列落盘使用。
type Codec struct {
	dec *Decoder
}

// NewCodec 创建编解码器，dec 为 nil 时使用默认解码器
func NewCodec(dec *Decoder) *Codec {
	if dec == nil {
		dec = defaultDecoder
	}
	return &Codec{dec: dec}
}

// Marshal 实现 interfaces.EventCodec
func (c *Codec) Marshal(ev interfaces.Event) ([]byte, error) {
	e, ok := ev.(*types.Event)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedEvent, ev)
	}
	return AppendFrame(make([]byte, 0, HeaderSize+len(e.Payload)), Header{
		EventType:     e.EventType,
		SourceID:      e.SourceID,
		DestinationID: e.DestinationID,
	}, e.Payload)
}

// Unmarshal 实现 interfaces.EventCodec
func (c *Codec) Unmarshal(data []byte) (interfaces.Event, error) {
	res, err := c.dec.Decode(data)
	if err != nil {
		return nil, err
	}
	return EventFromResult(res), nil
}

// Events 解码 buf 中的全部记录
//
// 出错时返回已解码的事件和错误。
func (c *Codec) Events(buf []byte) ([]interfaces.Event, error) {
	results, err := c.dec.DecodeAll(buf)
	events := make([]interfaces.Event, 0, len(results))
	for _, res := range results {
		events = append(events, EventFromResult(res))
	}
	return events, err
}

// EventFromResult 由解码结果构造事件
func EventFromResult(res Result) *types.Event {
	return &types.Event{
		EventType:     res.Header.EventType,
		SourceID:      res.Header.SourceID,
		DestinationID: res.Header.DestinationID,
		Payload:       res.Payload,
	}
}

var _ interfaces.EventCodec = (*Codec)(nil)
