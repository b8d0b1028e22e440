package codec

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/property-tycoon/internal/game/event"
	"github.com/palemoky/property-tycoon/internal/protocol"
)

func TestMessagePool_GetPut(t *testing.T) {
	t.Parallel()

	msg := GetMessage()
	assert.NotNil(t, msg)

	msg.Type = "test"
	msg.Payload = []byte("data")
	PutMessage(msg)

	// Get again - should be reset
	msg2 := GetMessage()
	assert.NotNil(t, msg2)
	assert.Empty(t, msg2.Type)
	assert.Nil(t, msg2.Payload)
}

func TestPools_PutNil(t *testing.T) {
	t.Parallel()

	assert.NotPanics(t, func() {
		PutMessage(nil)
		PutBuffer(nil)
	})
}

func TestBufferPool_Concurrent(t *testing.T) {
	t.Parallel()

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			buf := GetBuffer()
			buf.WriteString("frame")
			PutBuffer(buf)
		}()
	}
	wg.Wait()
}

func eventsMessage(t *testing.T) *protocol.Message {
	t.Helper()
	msg, err := NewMessage(protocol.MsgEvents, protocol.EventsPayload{
		GameID:  "g1",
		From:    6,
		Version: 8,
		Events: event.List{
			event.DiceRolled{Player: "p1", Die1: 3, Die2: 4},
			event.LandedOnSafeSpace{Player: "p1", Ground: "chance-1"},
		},
	})
	require.NoError(t, err)
	return msg
}

func TestCodecs_RoundTrip(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"json", "proto"} {
		t.Run(name, func(t *testing.T) {
			c, err := ForName(name)
			require.NoError(t, err)

			data, err := c.Encode(eventsMessage(t))
			require.NoError(t, err)

			msg, err := c.Decode(data)
			require.NoError(t, err)
			defer PutMessage(msg)
			assert.Equal(t, protocol.MsgEvents, msg.Type)

			payload, err := ParsePayload[protocol.EventsPayload](msg)
			require.NoError(t, err)
			assert.Equal(t, 8, payload.Version)
			assert.Equal(t, event.List{
				event.DiceRolled{Player: "p1", Die1: 3, Die2: 4},
				event.LandedOnSafeSpace{Player: "p1", Ground: "chance-1"},
			}, payload.Events)
		})
	}
}

func TestProto_NoPayload(t *testing.T) {
	t.Parallel()

	data, err := Proto{}.Encode(&protocol.Message{Type: protocol.MsgPing})
	require.NoError(t, err)

	msg, err := Proto{}.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, protocol.MsgPing, msg.Type)
	assert.Empty(t, msg.Payload)
	assert.True(t, Proto{}.Binary())
}

func TestDecode_Errors(t *testing.T) {
	t.Parallel()

	_, err := JSON{}.Decode([]byte("{"))
	assert.Error(t, err)

	_, err = Proto{}.Decode([]byte{0xff, 0xff})
	assert.Error(t, err)

	_, err = ForName("xml")
	assert.Error(t, err)
}

func TestNewErrorMessage(t *testing.T) {
	t.Parallel()

	msg := NewErrorMessage(protocol.ErrCodeVersionConflict)
	payload, err := ParsePayload[protocol.ErrorPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, protocol.ErrCodeVersionConflict, payload.Code)
	assert.Equal(t, protocol.ErrorMessages[protocol.ErrCodeVersionConflict], payload.Message)
}
