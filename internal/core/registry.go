package core

import (
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// Fanout is the delivery surface the dispatcher and notifier need from a registry.
type Fanout interface {
	SendTo(c *Client, frame []byte) error
	BroadcastAll(frame []byte) int
	BroadcastToRoom(roomID int64, frame []byte) int
	Members(roomID int64) []*Client
}

// Registry tracks live clients. It is not safe for concurrent use; the Hub loop owns it.
type Registry struct {
	clients map[*Client]struct{}
	log     *zerolog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *zerolog.Logger) *Registry {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Registry{
		clients: make(map[*Client]struct{}),
		log:     logger,
	}
}

// Register adds a client with no room association.
func (r *Registry) Register(c *Client) {
	if _, exists := r.clients[c]; exists {
		return
	}
	c.clearRoom()
	r.clients[c] = struct{}{}
}

// Forget removes a client and closes its outbound buffer. Safe to call twice.
func (r *Registry) Forget(c *Client) bool {
	if _, exists := r.clients[c]; !exists {
		return false
	}
	delete(r.clients, c)
	close(c.send)
	return true
}

// Len returns the number of live clients.
func (r *Registry) Len() int {
	return len(r.clients)
}

// Clients returns a snapshot of every live client.
func (r *Registry) Clients() []*Client {
	return lo.Keys(r.clients)
}

// Members returns the clients currently viewing roomID.
func (r *Registry) Members(roomID int64) []*Client {
	return lo.Filter(r.Clients(), func(c *Client, _ int) bool {
		return c.inRoomID(roomID)
	})
}

// SendTo enqueues a frame for one client.
func (r *Registry) SendTo(c *Client, frame []byte) error {
	if _, exists := r.clients[c]; !exists {
		return ErrClientGone
	}
	return r.deliver(c, frame)
}

// BroadcastAll enqueues a frame for every client and returns how many accepted it.
func (r *Registry) BroadcastAll(frame []byte) int {
	return r.fanout(r.Clients(), frame)
}

// BroadcastToRoom enqueues a frame for clients viewing roomID at call time.
func (r *Registry) BroadcastToRoom(roomID int64, frame []byte) int {
	return r.fanout(r.Members(roomID), frame)
}

func (r *Registry) fanout(targets []*Client, frame []byte) int {
	delivered := 0
	for _, c := range targets {
		if err := r.deliver(c, frame); err != nil {
			r.log.Warn().Err(err).Str("client_id", c.ID).Msg("drop outbound frame")
			continue
		}
		delivered++
	}
	return delivered
}

func (r *Registry) deliver(c *Client, frame []byte) error {
	select {
	case c.send <- frame:
		return nil
	default:
		// Drop if slow consumer.
		return ErrSendBufferFull
	}
}
