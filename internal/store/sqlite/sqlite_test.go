package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/roomrelay/internal/store"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRoomLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	general, err := s.CreateRoom(ctx, "General", "u1")
	require.NoError(t, err)
	assert.NotZero(t, general.ID)
	assert.Equal(t, "General", general.Title)
	assert.Equal(t, "u1", general.UserID)
	assert.False(t, general.CreatedAt.IsZero())

	_, err = s.CreateRoom(ctx, "Random", "u2")
	require.NoError(t, err)

	rooms, err := s.ListRooms(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, "General", rooms[0].Title)
	assert.Equal(t, "Random", rooms[1].Title)

	require.NoError(t, s.RenameRoom(ctx, general.ID, "Lobby"))
	renamed, err := s.GetRoom(ctx, general.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lobby", renamed.Title)

	require.NoError(t, s.DeleteRoom(ctx, general.ID))
	_, err = s.GetRoom(ctx, general.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	rooms, err = s.ListRooms(ctx)
	require.NoError(t, err)
	assert.Len(t, rooms, 1)
}

func TestListRoomsEmptyIsNotNil(t *testing.T) {
	s := newTestStore(t)

	rooms, err := s.ListRooms(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, rooms)
	assert.Empty(t, rooms)
}

func TestCreateRoomRejectsEmptyTitle(t *testing.T) {
	s := newTestStore(t)

	_, err := s.CreateRoom(context.Background(), "", "u1")
	assert.Error(t, err)
}

func TestMissingRoom(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
	}{
		{"rename", func() error { return s.RenameRoom(ctx, 42, "x") }},
		{"delete", func() error { return s.DeleteRoom(ctx, 42) }},
		{"get", func() error { _, err := s.GetRoom(ctx, 42); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.call(), store.ErrNotFound)
		})
	}
}

func TestMessages(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	room, err := s.CreateRoom(ctx, "General", "u1")
	require.NoError(t, err)

	require.NoError(t, s.CreateMessage(ctx, "alice", "hi", "2024-05-01T10:00:00.000Z", room.ID))
	require.NoError(t, s.CreateMessage(ctx, "bob", "hey", "2024-05-01T10:00:01.000Z", room.ID))

	messages, err := s.ListMessages(ctx, room.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "alice", messages[0].Author)
	assert.Equal(t, "hi", messages[0].Text)
	assert.Equal(t, "2024-05-01T10:00:00.000Z", messages[0].Date)
	assert.Equal(t, room.ID, messages[0].RoomID)
	assert.Equal(t, "bob", messages[1].Author)

	// Unknown room violates the foreign key.
	assert.Error(t, s.CreateMessage(ctx, "alice", "lost", "", room.ID+100))

	require.NoError(t, s.DeleteRoom(ctx, room.ID))
	messages, err = s.ListMessages(ctx, room.ID)
	require.NoError(t, err)
	assert.Empty(t, messages)
}
