package core

import "errors"

var (
	// ErrClientGone means the target client is no longer registered.
	ErrClientGone = errors.New("client gone")
	// ErrSendBufferFull means the client is not draining its outbound frames.
	ErrSendBufferFull = errors.New("send buffer full")
	// ErrHubStopped is returned by Hub methods after Run has returned.
	ErrHubStopped = errors.New("hub stopped")
)

// Messages reported to clients when an action fails.
const (
	MsgCreateRoom   = "Can't create room"
	MsgRenameRoom   = "Can't rename room"
	MsgLoadRoom     = "Can't load room"
	MsgRoomsList    = "Can't recieve rooms list"
	MsgDeleteRoom   = "Server can't delete room"
	MsgNewMessage   = "Server can't add new message"
	MsgRoomsRefresh = "Can't load new rooms list after update"
	MsgBadRequest   = "Can't read request"
)

// ActionError wraps a store failure with the message shown to the client.
type ActionError struct {
	Action  string
	Message string
	Err     error
}

func (e *ActionError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

func actionError(action, msg string, err error) *ActionError {
	return &ActionError{Action: action, Message: msg, Err: err}
}
