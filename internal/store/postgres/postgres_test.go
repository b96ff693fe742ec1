package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRowMapping(t *testing.T) {
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	room := toRoom(roomModel{ID: 7, Title: "General", UserID: "u1", CreatedAt: created})
	assert.Equal(t, int64(7), room.ID)
	assert.Equal(t, "General", room.Title)
	assert.Equal(t, "u1", room.UserID)
	assert.Equal(t, created, room.CreatedAt)

	msg := toMessage(messageModel{ID: 3, RoomID: 7, Author: "alice", Text: "hi", Date: "T"})
	assert.Equal(t, int64(3), msg.ID)
	assert.Equal(t, int64(7), msg.RoomID)
	assert.Equal(t, "alice", msg.Author)
	assert.Equal(t, "hi", msg.Text)
	assert.Equal(t, "T", msg.Date)
}

func TestTableNames(t *testing.T) {
	assert.Equal(t, "rooms", roomModel{}.TableName())
	assert.Equal(t, "messages", messageModel{}.TableName())
}
