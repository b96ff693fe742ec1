package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/roomrelay/internal/store"
)

var errBoom = errors.New("boom")

// fakeStore is an in-memory store.Store with per-method failure injection.
type fakeStore struct {
	mu       sync.Mutex
	nextID   int64
	rooms    []*store.Room
	messages []*store.Message
	fail     map[string]error
	gate     chan struct{} // when set, CreateRoom waits for it
}

func newFakeStore() *fakeStore {
	return &fakeStore{fail: make(map[string]error)}
}

func (s *fakeStore) failOn(method string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail[method] = errBoom
}

func (s *fakeStore) err(method string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fail[method]
}

func (s *fakeStore) seedRoom(title string) *store.Room {
	room, err := s.CreateRoom(context.Background(), title, "seed")
	if err != nil {
		panic(err)
	}
	return room
}

func (s *fakeStore) CreateRoom(ctx context.Context, title, userID string) (*store.Room, error) {
	if s.gate != nil {
		select {
		case <-s.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := s.err("CreateRoom"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	room := &store.Room{ID: s.nextID, Title: title, UserID: userID, CreatedAt: time.Now()}
	s.rooms = append(s.rooms, room)
	return room, nil
}

func (s *fakeStore) RenameRoom(_ context.Context, roomID int64, newTitle string) error {
	if err := s.err("RenameRoom"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rooms {
		if r.ID == roomID {
			r.Title = newTitle
			return nil
		}
	}
	return fmt.Errorf("room %d: %w", roomID, store.ErrNotFound)
}

func (s *fakeStore) GetRoom(_ context.Context, roomID int64) (*store.Room, error) {
	if err := s.err("GetRoom"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.rooms {
		if r.ID == roomID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("room %d: %w", roomID, store.ErrNotFound)
}

func (s *fakeStore) ListRooms(context.Context) ([]*store.Room, error) {
	if err := s.err("ListRooms"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*store.Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		cp := *r
		out = append(out, &cp)
	}
	return out, nil
}

func (s *fakeStore) DeleteRoom(_ context.Context, roomID int64) error {
	if err := s.err("DeleteRoom"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.rooms {
		if r.ID == roomID {
			s.rooms = append(s.rooms[:i], s.rooms[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("room %d: %w", roomID, store.ErrNotFound)
}

func (s *fakeStore) CreateMessage(_ context.Context, author, text, date string, roomID int64) error {
	if err := s.err("CreateMessage"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, &store.Message{
		ID: int64(len(s.messages) + 1), Author: author, Text: text, Date: date, RoomID: roomID,
	})
	return nil
}

func (s *fakeStore) ListMessages(_ context.Context, roomID int64) ([]*store.Message, error) {
	if err := s.err("ListMessages"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*store.Message, 0)
	for _, m := range s.messages {
		if m.RoomID == roomID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *fakeStore) Close() error { return nil }

// syncScheduler runs store calls inline, so dispatcher tests need no event loop.
type syncScheduler struct{}

func (syncScheduler) Await(call func(ctx context.Context) error, then func(err error)) {
	then(call(context.Background()))
}

// seqIDs hands out predictable identities.
type seqIDs struct{ n int }

func (g *seqIDs) NewID() string {
	g.n++
	return fmt.Sprintf("id-%d", g.n)
}

func nopLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

// outFrame is a decoded outbound frame; Raw keeps the decoded keys to tell null from absent.
type outFrame struct {
	Action   string                     `json:"action"`
	Name     string                     `json:"name"`
	ID       string                     `json:"id"`
	Rooms    []*store.Room              `json:"rooms"`
	Messages []*store.Message           `json:"messages"`
	Room     *store.Room                `json:"room"`
	Message  json.RawMessage            `json:"message"`
	Error    string                     `json:"error"`
	Raw      map[string]json.RawMessage `json:"-"`
}

func decodeFrame(t *testing.T, data []byte) outFrame {
	t.Helper()

	var f outFrame
	require.NoError(t, json.Unmarshal(data, &f))
	require.NoError(t, json.Unmarshal(data, &f.Raw))
	return f
}

// errorText extracts the human message of an error frame.
func (f outFrame) errorText(t *testing.T) string {
	t.Helper()

	var msg string
	require.NoError(t, json.Unmarshal(f.Message, &msg))
	return msg
}

// chatMessage extracts the payload of a newMessage frame.
func (f outFrame) chatMessage(t *testing.T) map[string]string {
	t.Helper()

	var msg map[string]string
	require.NoError(t, json.Unmarshal(f.Message, &msg))
	return msg
}

// drain returns every frame currently buffered for c without blocking.
func drain(t *testing.T, c *Client) []outFrame {
	t.Helper()

	var frames []outFrame
	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				return frames
			}
			frames = append(frames, decodeFrame(t, data))
		default:
			return frames
		}
	}
}

// mustFrame waits for the next frame on c, as hub tests run the loop on another goroutine.
func mustFrame(t *testing.T, c *Client) outFrame {
	t.Helper()

	select {
	case data, ok := <-c.Send():
		require.True(t, ok, "client %s send channel closed", c.ID)
		return decodeFrame(t, data)
	case <-time.After(2 * time.Second):
		t.Fatalf("no frame for client %s", c.ID)
		return outFrame{}
	}
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()

	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}
