package types

import (
	"fmt"

	"github.com/centreon/go-broker/pkg/interfaces"
)

// ============================================================================
//                              事件类型
// ============================================================================

// 事件分类（event_type 的高 16 位）
const (
	CategoryNeb       uint16 = 1
	CategoryBBDO      uint16 = 2
	CategoryStorage   uint16 = 3
	CategoryDumper    uint16 = 5
	CategoryBAM       uint16 = 6
	CategoryExtCmd    uint16 = 7
	CategoryGenerator uint16 = 8
	CategoryInternal  uint16 = 0xffff
)

// MakeType 由分类和元素组合事件类型
func MakeType(category, element uint16) uint32 {
	return uint32(category)<<16 | uint32(element)
}

// CategoryOf 返回事件类型的分类
func CategoryOf(eventType uint32) uint16 {
	return uint16(eventType >> 16)
}

// ElementOf 返回事件类型的元素
func ElementOf(eventType uint32) uint16 {
	return uint16(eventType)
}

// ============================================================================
//                              Event
// ============================================================================

// Event 线上事件
//
// 字段与帧头一一对应，Payload 为帧负载（续帧已拼接）。
// 事件一旦发布即视为只读，多个 Muxer 共享同一个 *Event。
type Event struct {
	EventType     uint32
	SourceID      uint32
	DestinationID uint32
	Payload       []byte
}

// NewEvent 创建事件
func NewEvent(eventType uint32, payload []byte) *Event {
	return &Event{EventType: eventType, Payload: payload}
}

// Type 实现 interfaces.Event
func (e *Event) Type() uint32 {
	return e.EventType
}

// Category 返回事件分类
func (e *Event) Category() uint16 {
	return CategoryOf(e.EventType)
}

// Element 返回事件元素
func (e *Event) Element() uint16 {
	return ElementOf(e.EventType)
}

// String 返回便于日志的描述
func (e *Event) String() string {
	return fmt.Sprintf("event{type=%d:%d src=%d dst=%d len=%d}",
		e.Category(), e.Element(), e.SourceID, e.DestinationID, len(e.Payload))
}

var _ interfaces.Event = (*Event)(nil)
