package core

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/roomrelay/internal/identity"
	"github.com/vovakirdan/roomrelay/internal/proto"
	"github.com/vovakirdan/roomrelay/internal/store"
)

// Scheduler runs a blocking call off the event loop and later runs then on the loop.
type Scheduler interface {
	Await(call func(ctx context.Context) error, then func(err error))
}

// Dispatcher interprets inbound frames. Every method runs on the event loop;
// store calls go through the Scheduler so the loop never blocks on them.
type Dispatcher struct {
	store  store.Store
	fanout Fanout
	notify *Notifier
	ids    identity.Generator
	sched  Scheduler
	log    *zerolog.Logger
}

// NewDispatcher wires a dispatcher to its collaborators.
func NewDispatcher(st store.Store, fanout Fanout, ids identity.Generator, sched Scheduler, logger *zerolog.Logger) *Dispatcher {
	if ids == nil {
		ids = identity.UUID{}
	}
	return &Dispatcher{
		store:  st,
		fanout: fanout,
		notify: NewNotifier(fanout, logger),
		ids:    ids,
		sched:  sched,
		log:    logger,
	}
}

// Dispatch decodes one frame from c and routes it by action.
func (d *Dispatcher) Dispatch(c *Client, frame []byte) {
	var in proto.Inbound
	if err := json.Unmarshal(frame, &in); err != nil {
		d.notify.Error(c, actionError(in.Action, MsgBadRequest, err))
		return
	}

	switch in.Action {
	case proto.ActionRegistration:
		d.registration(c, in)
	case proto.ActionCreateRoom:
		d.createRoom(c, in)
	case proto.ActionRenameRoom:
		d.renameRoom(c, in)
	case proto.ActionChooseRoom:
		d.chooseRoom(c, in)
	case proto.ActionAskRoomsList:
		d.askRoomsList(c)
	case proto.ActionDeleteRoom:
		d.deleteRoom(c, in)
	case proto.ActionNewMessage:
		d.newMessage(c, in)
	default:
		d.log.Debug().Str("client_id", c.ID).Str("action", in.Action).Msg("ignoring unknown action")
	}
}

func (d *Dispatcher) registration(c *Client, in proto.Inbound) {
	id := d.ids.NewID()
	c.Name = in.Name

	d.log.Info().Str("client_id", c.ID).Str("name", in.Name).Str("identity", id).Msg("client registered")
	d.notify.One(c, proto.Confirmation{
		Action: proto.ActionConfirmation,
		Name:   in.Name,
		ID:     id,
	})
}

func (d *Dispatcher) createRoom(c *Client, in proto.Inbound) {
	d.sched.Await(func(ctx context.Context) error {
		_, err := d.store.CreateRoom(ctx, in.Title, in.UserID)
		return err
	}, func(err error) {
		if err != nil {
			d.notify.Error(c, actionError(in.Action, MsgCreateRoom, err))
			return
		}
		d.refreshRoomsList()
	})
}

func (d *Dispatcher) renameRoom(c *Client, in proto.Inbound) {
	d.sched.Await(func(ctx context.Context) error {
		return d.store.RenameRoom(ctx, in.RoomID, in.NewTitle)
	}, func(err error) {
		if err != nil {
			d.notify.Error(c, actionError(in.Action, MsgRenameRoom, err))
			return
		}
		d.refreshRoomsList()

		var room *store.Room
		d.sched.Await(func(ctx context.Context) (err error) {
			room, err = d.store.GetRoom(ctx, in.RoomID)
			return err
		}, func(err error) {
			if err != nil {
				d.notify.Error(c, actionError(in.Action, MsgRenameRoom, err))
				return
			}
			d.notify.Room(in.RoomID, proto.RoomUpdated{Action: proto.ActionMessages, Room: room})
		})
	})
}

func (d *Dispatcher) chooseRoom(c *Client, in proto.Inbound) {
	c.setRoom(in.ID)

	var (
		messages []*store.Message
		room     *store.Room
	)
	d.sched.Await(func(ctx context.Context) (err error) {
		if messages, err = d.store.ListMessages(ctx, in.ID); err != nil {
			return err
		}
		room, err = d.store.GetRoom(ctx, in.ID)
		return err
	}, func(err error) {
		if err != nil {
			d.notify.Error(c, actionError(in.Action, MsgLoadRoom, err))
			return
		}
		d.notify.One(c, proto.RoomContent{Action: proto.ActionMessages, Messages: messages, Room: room})
	})
}

func (d *Dispatcher) askRoomsList(c *Client) {
	var rooms []*store.Room
	d.sched.Await(func(ctx context.Context) (err error) {
		rooms, err = d.store.ListRooms(ctx)
		return err
	}, func(err error) {
		if err != nil {
			d.notify.Error(c, actionError(proto.ActionAskRoomsList, MsgRoomsList, err))
			return
		}
		d.notify.One(c, proto.RoomsList{Action: proto.ActionRoomsList, Rooms: rooms})
	})
}

// deleteRoom clears viewers and refreshes everyone even when the store fails.
func (d *Dispatcher) deleteRoom(c *Client, in proto.Inbound) {
	d.sched.Await(func(ctx context.Context) error {
		return d.store.DeleteRoom(ctx, in.RoomID)
	}, func(err error) {
		if err != nil {
			d.notify.Error(c, actionError(in.Action, MsgDeleteRoom, err))
		}

		viewers := d.fanout.Members(in.RoomID)
		d.notify.Room(in.RoomID, proto.RoomContent{
			Action:   proto.ActionMessages,
			Messages: []*store.Message{},
			Room:     nil,
		})
		for _, v := range viewers {
			v.clearRoom()
		}

		d.refreshRoomsList()
	})
}

// newMessage broadcasts the client's message even when the store fails.
func (d *Dispatcher) newMessage(c *Client, in proto.Inbound) {
	d.sched.Await(func(ctx context.Context) error {
		return d.store.CreateMessage(ctx, in.Author, in.Text, in.Date, in.RoomID)
	}, func(err error) {
		if err != nil {
			d.notify.Error(c, actionError(in.Action, MsgNewMessage, err))
		}

		d.notify.Room(in.RoomID, proto.NewMessage{
			Action: proto.ActionNewMessage,
			Message: proto.ChatMessage{
				Author: in.Author,
				Text:   in.Text,
				Date:   in.DateJSON(),
			},
		})
	})
}

// refreshRoomsList pushes the current room list, or an error envelope, to every client.
func (d *Dispatcher) refreshRoomsList() {
	var rooms []*store.Room
	d.sched.Await(func(ctx context.Context) (err error) {
		rooms, err = d.store.ListRooms(ctx)
		return err
	}, func(err error) {
		if err != nil {
			d.log.Error().Err(err).Msg(MsgRoomsRefresh)
			d.notify.All(errorPayload(MsgRoomsRefresh, err))
			return
		}
		d.notify.All(proto.RoomsList{Action: proto.ActionRoomsList, Rooms: rooms})
	})
}
