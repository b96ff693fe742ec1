package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/roomrelay/internal/proto"
	"github.com/vovakirdan/roomrelay/internal/store"
)

// outbound covers every field the relay may send.
type outbound struct {
	Action   string           `json:"action"`
	Name     string           `json:"name"`
	ID       string           `json:"id"`
	Rooms    []*store.Room    `json:"rooms"`
	Messages []*store.Message `json:"messages"`
	Room     *store.Room      `json:"room"`
	Message  json.RawMessage  `json:"message"`
	Error    string           `json:"error"`
}

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	user := flag.String("user", "tester", "name to register with")
	title := flag.String("room", "smoke", "title of the room to create")
	text := flag.String("text", "hello from smoke test", "message text to send")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	send := func(in proto.Inbound) error {
		if err := wsjson.Write(ctx, conn, in); err != nil {
			return fmt.Errorf("send %s: %w", in.Action, err)
		}
		return nil
	}
	await := func(action string) (outbound, error) {
		for {
			var out outbound
			if err := wsjson.Read(ctx, conn, &out); err != nil {
				return out, fmt.Errorf("read: %w", err)
			}
			fmt.Printf("Received: action=%s\n", out.Action)
			if out.Action == proto.ActionError {
				var msg string
				_ = json.Unmarshal(out.Message, &msg)
				return out, fmt.Errorf("server error: %s (%s)", msg, out.Error)
			}
			if out.Action == action {
				return out, nil
			}
		}
	}

	if err := send(proto.Inbound{Action: proto.ActionRegistration, Name: *user}); err != nil {
		return err
	}
	confirm, err := await(proto.ActionConfirmation)
	if err != nil {
		return err
	}
	fmt.Printf("Registered as %s id=%s\n", confirm.Name, confirm.ID)

	if err := send(proto.Inbound{Action: proto.ActionCreateRoom, Title: *title, UserID: confirm.ID}); err != nil {
		return err
	}
	list, err := await(proto.ActionRoomsList)
	if err != nil {
		return err
	}
	var room *store.Room
	for _, r := range list.Rooms {
		if r.Title == *title && r.UserID == confirm.ID {
			room = r
		}
	}
	if room == nil {
		return errors.New("created room missing from rooms list")
	}
	fmt.Printf("Room created: id=%d title=%q\n", room.ID, room.Title)

	if err := send(proto.Inbound{Action: proto.ActionChooseRoom, ID: room.ID}); err != nil {
		return err
	}
	content, err := await(proto.ActionMessages)
	if err != nil {
		return err
	}
	fmt.Printf("Room has %d messages\n", len(content.Messages))

	if err := send(proto.Inbound{
		Action: proto.ActionNewMessage,
		Author: *user,
		Text:   *text,
		Date:   time.Now().Format(time.Kitchen),
		RoomID: room.ID,
	}); err != nil {
		return err
	}
	msg, err := await(proto.ActionNewMessage)
	if err != nil {
		return err
	}
	var chat proto.ChatMessage
	if err := json.Unmarshal(msg.Message, &chat); err != nil {
		return fmt.Errorf("unmarshal message: %w", err)
	}
	fmt.Printf("Message: author=%s text=%q date=%s\n", chat.Author, chat.Text, proto.RawText(chat.Date))
	return nil
}
