package proto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/vovakirdan/roomrelay/internal/store"
)

// Inbound actions sent by clients.
const (
	ActionRegistration = "registration"
	ActionCreateRoom   = "createRoom"
	ActionRenameRoom   = "renameRoom"
	ActionChooseRoom   = "chooseRoom"
	ActionAskRoomsList = "askRoomsList"
	ActionDeleteRoom   = "deleteRoom"
	ActionNewMessage   = "newMessage"
)

// Outbound actions sent by the relay.
const (
	ActionConfirmation = "confirmation"
	ActionRoomsList    = "roomsList"
	ActionMessages     = "messages"
	ActionError        = "error"
	// newMessage is both an inbound and an outbound action.
)

// Inbound is the envelope for every frame coming from a client.
// Only the fields relevant to Action are expected to be set; none are validated here.
type Inbound struct {
	Action   string `json:"action"`
	Name     string `json:"name,omitempty"`
	Title    string `json:"title,omitempty"`
	UserID   string `json:"userId,omitempty"`
	RoomID   int64  `json:"roomId,omitempty"`
	NewTitle string `json:"newTitle,omitempty"`
	ID       int64  `json:"id,omitempty"`
	Author   string `json:"author,omitempty"`
	Text     string `json:"text,omitempty"`
	// Date is the text form of whatever the client sent; RawDate keeps the JSON as received.
	Date    string          `json:"date,omitempty"`
	RawDate json.RawMessage `json:"-"`
}

// UnmarshalJSON accepts ids as numbers or numeric strings and a date of any JSON type.
func (in *Inbound) UnmarshalJSON(data []byte) error {
	type plain Inbound
	aux := struct {
		*plain
		RoomID flexID          `json:"roomId"`
		ID     flexID          `json:"id"`
		Date   json.RawMessage `json:"date"`
	}{plain: (*plain)(in)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	in.RoomID = int64(aux.RoomID)
	in.ID = int64(aux.ID)
	in.RawDate = aux.Date
	in.Date = RawText(aux.Date)
	return nil
}

// DateJSON is the date to echo back: the raw client value when decoded from the wire.
func (in Inbound) DateJSON() json.RawMessage {
	if len(in.RawDate) > 0 {
		return in.RawDate
	}
	data, _ := json.Marshal(in.Date)
	return data
}

// RawText renders a JSON value as plain text: strings unquoted, null as empty, anything else verbatim.
func RawText(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	}
	return string(trimmed)
}

type flexID int64

func (id *flexID) UnmarshalJSON(data []byte) error {
	text := string(bytes.TrimSpace(data))
	if text == "null" {
		return nil
	}
	if strings.HasPrefix(text, `"`) {
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
	}
	n, err := strconv.ParseInt(strings.TrimSpace(text), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %s", data)
	}
	*id = flexID(n)
	return nil
}

// Confirmation answers a registration with a fresh client identity.
type Confirmation struct {
	Action string `json:"action"`
	Name   string `json:"name"`
	ID     string `json:"id"`
}

// RoomsList carries the full room list.
type RoomsList struct {
	Action string        `json:"action"`
	Rooms  []*store.Room `json:"rooms"`
}

// RoomContent is the full view of one room. A nil Room with empty Messages
// tells clients the room they were viewing is gone.
type RoomContent struct {
	Action   string           `json:"action"`
	Messages []*store.Message `json:"messages"`
	Room     *store.Room      `json:"room"`
}

// RoomUpdated refreshes room metadata without touching the message list.
type RoomUpdated struct {
	Action string      `json:"action"`
	Room   *store.Room `json:"room"`
}

// ChatMessage is a message as broadcast to a room. Date is echoed exactly as the sender wrote it.
type ChatMessage struct {
	Author string          `json:"author"`
	Text   string          `json:"text"`
	Date   json.RawMessage `json:"date"`
}

// NewMessage notifies room members about a posted message.
type NewMessage struct {
	Action  string      `json:"action"`
	Message ChatMessage `json:"message"`
}

// Error describes a failed action.
type Error struct {
	Action  string `json:"action"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}
