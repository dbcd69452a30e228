package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/centreon/go-broker/pkg/types"
)

type foreignEvent struct{}

func (foreignEvent) Type() uint32 { return 1 }

func TestCodec_RoundTrip(t *testing.T) {
	c := NewCodec(nil)
	ev := &types.Event{EventType: 0x00030001, SourceID: 4, DestinationID: 5, Payload: []byte("metric")}

	data, err := c.Marshal(ev)
	require.NoError(t, err)

	got, err := c.Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, ev, got)
}

func TestCodec_MarshalMatchesWireFormat(t *testing.T) {
	data, err := NewCodec(nil).Marshal(&types.Event{
		EventType:     sampleHeader.EventType,
		SourceID:      sampleHeader.SourceID,
		DestinationID: sampleHeader.DestinationID,
		Payload:       samplePayload,
	})
	require.NoError(t, err)
	assert.Equal(t, sampleFrame(t), data)
}

func TestCodec_Unsupported(t *testing.T) {
	_, err := NewCodec(nil).Marshal(foreignEvent{})
	assert.ErrorIs(t, err, ErrUnsupportedEvent)
}

func TestCodec_Events(t *testing.T) {
	buf := sampleFrame(t)
	buf, err := AppendFrame(buf, Header{EventType: 2}, nil)
	require.NoError(t, err)

	events, err := NewCodec(nil).Events(buf)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, sampleHeader.EventType, events[0].Type())
	assert.Equal(t, uint32(2), events[1].Type())

	events, err = NewCodec(nil).Events(buf[:len(buf)-1])
	assert.ErrorIs(t, err, ErrFrameSync)
	assert.Len(t, events, 1)
}
