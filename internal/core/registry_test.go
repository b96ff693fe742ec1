package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRegisterAndForget(t *testing.T) {
	reg := NewRegistry(nopLogger())
	c := NewClient("a", 1)
	c.setRoom(3)

	reg.Register(c)
	reg.Register(c)
	assert.Equal(t, 1, reg.Len())
	_, inRoom := c.RoomID()
	assert.False(t, inRoom, "registered clients start without a room")

	assert.True(t, reg.Forget(c))
	assert.False(t, reg.Forget(c))
	assert.Equal(t, 0, reg.Len())

	_, open := <-c.Send()
	assert.False(t, open, "send channel closed after forget")
	assert.ErrorIs(t, reg.SendTo(c, []byte(`{}`)), ErrClientGone)
}

func TestRegistrySlowClientDoesNotBlockOthers(t *testing.T) {
	reg := NewRegistry(nopLogger())
	slow := NewClient("slow", 1)
	fast := NewClient("fast", 4)
	reg.Register(slow)
	reg.Register(fast)

	assert.Equal(t, 2, reg.BroadcastAll([]byte(`1`)))
	assert.Equal(t, 1, reg.BroadcastAll([]byte(`2`)))
	assert.ErrorIs(t, reg.SendTo(slow, []byte(`3`)), ErrSendBufferFull)

	assert.Len(t, fast.send, 2)
	assert.Len(t, slow.send, 1)
}

func TestRegistryRoomMembershipIsEvaluatedAtSendTime(t *testing.T) {
	reg := NewRegistry(nopLogger())
	a := NewClient("a", 4)
	b := NewClient("b", 4)
	reg.Register(a)
	reg.Register(b)
	a.setRoom(1)
	b.setRoom(2)

	assert.Equal(t, 1, reg.BroadcastToRoom(1, []byte(`first`)))

	b.setRoom(1)
	require.Len(t, reg.Members(1), 2)
	assert.Equal(t, 2, reg.BroadcastToRoom(1, []byte(`second`)))

	a.clearRoom()
	assert.Equal(t, 1, reg.BroadcastToRoom(1, []byte(`third`)))
	assert.Equal(t, 0, reg.BroadcastToRoom(2, []byte(`nobody`)))

	assert.Len(t, a.send, 2)
	assert.Len(t, b.send, 2)
}
