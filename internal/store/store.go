package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned (wrapped) when a room does not exist.
var ErrNotFound = errors.New("not found")

// Room represents a chat room.
type Room struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Message represents a persisted chat message.
// Date is the client-supplied timestamp, kept verbatim.
type Message struct {
	ID     int64  `json:"id"`
	Author string `json:"author"`
	Text   string `json:"text"`
	Date   string `json:"date"`
	RoomID int64  `json:"roomId"`
}

// RoomStore handles room persistence.
type RoomStore interface {
	// CreateRoom creates a new room owned by userID.
	CreateRoom(ctx context.Context, title, userID string) (*Room, error)

	// RenameRoom changes the title of an existing room.
	RenameRoom(ctx context.Context, roomID int64, newTitle string) error

	// GetRoom retrieves a room by ID.
	GetRoom(ctx context.Context, roomID int64) (*Room, error)

	// ListRooms lists every room, oldest first.
	ListRooms(ctx context.Context) ([]*Room, error)

	// DeleteRoom removes a room together with its messages.
	DeleteRoom(ctx context.Context, roomID int64) error
}

// MessageStore handles message persistence.
type MessageStore interface {
	// CreateMessage persists a message in a room.
	CreateMessage(ctx context.Context, author, text, date string, roomID int64) error

	// ListMessages retrieves all messages of a room in insertion order.
	ListMessages(ctx context.Context, roomID int64) ([]*Message, error)
}

// Store aggregates all storage interfaces.
type Store interface {
	RoomStore
	MessageStore

	// Close closes the underlying database connection.
	Close() error
}
