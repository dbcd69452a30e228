package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMakeType(t *testing.T) {
	typ := MakeType(CategoryNeb, 14)

	assert.Equal(t, uint32(0x0001000e), typ)
	assert.Equal(t, CategoryNeb, CategoryOf(typ))
	assert.Equal(t, uint16(14), ElementOf(typ))
}

func TestEvent_Accessors(t *testing.T) {
	ev := &Event{
		EventType:     MakeType(CategoryBAM, 3),
		SourceID:      7,
		DestinationID: 9,
		Payload:       []byte{1, 2, 3},
	}

	assert.Equal(t, uint32(0x00060003), ev.Type())
	assert.Equal(t, CategoryBAM, ev.Category())
	assert.Equal(t, uint16(3), ev.Element())
	assert.Equal(t, "event{type=6:3 src=7 dst=9 len=3}", ev.String())
}

func TestNewEvent(t *testing.T) {
	ev := NewEvent(42, []byte("x"))
	assert.Equal(t, uint32(42), ev.Type())
	assert.Zero(t, ev.SourceID)
	assert.Equal(t, []byte("x"), ev.Payload)
}
