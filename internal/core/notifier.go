package core

import (
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/roomrelay/internal/proto"
)

// Notifier serializes payloads once and hands them to a Fanout for delivery.
type Notifier struct {
	fanout Fanout
	log    *zerolog.Logger
}

// NewNotifier builds a notifier delivering through fanout.
func NewNotifier(fanout Fanout, logger *zerolog.Logger) *Notifier {
	return &Notifier{fanout: fanout, log: logger}
}

// One replies to a single client.
func (n *Notifier) One(c *Client, payload any) {
	frame, ok := n.encode(payload)
	if !ok {
		return
	}
	if err := n.fanout.SendTo(c, frame); err != nil {
		ev := n.log.Warn()
		if errors.Is(err, ErrClientGone) {
			ev = n.log.Debug()
		}
		ev.Err(err).Str("client_id", c.ID).Msg("reply not delivered")
	}
}

// Room sends to every client currently viewing roomID.
func (n *Notifier) Room(roomID int64, payload any) {
	frame, ok := n.encode(payload)
	if !ok {
		return
	}
	delivered := n.fanout.BroadcastToRoom(roomID, frame)
	n.log.Debug().Int64("room_id", roomID).Int("delivered", delivered).Msg("room broadcast")
}

// All sends to every live client.
func (n *Notifier) All(payload any) {
	frame, ok := n.encode(payload)
	if !ok {
		return
	}
	delivered := n.fanout.BroadcastAll(frame)
	n.log.Debug().Int("delivered", delivered).Msg("global broadcast")
}

// Error logs a failed action and reports it to the client that issued it.
func (n *Notifier) Error(c *Client, err *ActionError) {
	n.log.Error().Err(err.Err).Str("client_id", c.ID).Str("action", err.Action).Msg(err.Message)
	n.One(c, errorPayload(err.Message, err.Err))
}

func errorPayload(msg string, cause error) proto.Error {
	out := proto.Error{Action: proto.ActionError, Message: msg}
	if cause != nil {
		out.Error = cause.Error()
	}
	return out
}

func (n *Notifier) encode(payload any) ([]byte, bool) {
	frame, err := json.Marshal(payload)
	if err != nil {
		n.log.Error().Err(err).Msg("marshal outbound payload")
		return nil, false
	}
	return frame, true
}
