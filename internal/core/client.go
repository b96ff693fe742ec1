package core

// DefaultSendBuffer is the outbound frame buffer used when none is configured.
const DefaultSendBuffer = 32

// Client is one live connection as seen by the core layer.
// Everything except ID and Send is owned by the Hub loop.
type Client struct {
	ID   string
	Name string

	send   chan []byte
	roomID int64
	inRoom bool
}

// NewClient constructs a client with no room association.
func NewClient(id string, buffer int) *Client {
	if buffer <= 0 {
		buffer = DefaultSendBuffer
	}
	return &Client{
		ID:   id,
		send: make(chan []byte, buffer),
	}
}

// Send exposes serialized outbound frames. It is closed once the client is forgotten.
func (c *Client) Send() <-chan []byte {
	return c.send
}

// RoomID returns the room the client is viewing, if any.
func (c *Client) RoomID() (int64, bool) {
	return c.roomID, c.inRoom
}

func (c *Client) setRoom(id int64) {
	c.roomID = id
	c.inRoom = true
}

func (c *Client) clearRoom() {
	c.roomID = 0
	c.inRoom = false
}

func (c *Client) inRoomID(id int64) bool {
	return c.inRoom && c.roomID == id
}
