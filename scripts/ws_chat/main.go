package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/roomrelay/internal/proto"
	"github.com/vovakirdan/roomrelay/internal/store"
)

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

const help = `Commands:
  /rooms          list rooms
  /new <title>    create a room
  /join <id>      enter a room
  /rename <title> rename the current room
  /delete         delete the current room
  anything else is sent to the current room`

func main() {
	if err := run(); err != nil {
		log.Printf("ws_chat: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	user := flag.String("user", "cli-user", "name to register with")
	roomID := flag.Int64("room", 0, "room id to enter on start (0 to stay in the lobby)")
	flag.Parse()

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	s := &session{conn: conn, user: *user, room: *roomID}
	s.send(ctx, proto.Inbound{Action: proto.ActionRegistration, Name: *user})
	s.send(ctx, proto.Inbound{Action: proto.ActionAskRoomsList})
	if *roomID != 0 {
		s.send(ctx, proto.Inbound{Action: proto.ActionChooseRoom, ID: *roomID})
	}

	fmt.Printf("Connected to %s as %s\n", *addr, *user)
	fmt.Println(help)

	go func() {
		defer cancel()
		readLoop(ctx, conn)
	}()

	s.writeLoop(ctx)

	stop()
	cancel()
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	return nil
}

type session struct {
	conn *websocket.Conn
	user string
	room int64
}

func (s *session) send(ctx context.Context, in proto.Inbound) {
	if err := wsjson.Write(ctx, s.conn, in); err != nil {
		log.Printf("send %s: %v", in.Action, err)
	}
}

func readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		var out outbound
		if err := wsjson.Read(ctx, conn, &out); err != nil {
			// Treat expected shutdowns quietly.
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			log.Printf("read error: %v", err)
			return
		}

		switch out.Action {
		case proto.ActionConfirmation:
			fmt.Printf("registered as %s (%s)\n", out.Name, out.ID)
		case proto.ActionRoomsList:
			fmt.Println("rooms:")
			for _, r := range out.Rooms {
				fmt.Printf("  %d  %s\n", r.ID, r.Title)
			}
		case proto.ActionMessages:
			if out.Room == nil {
				if out.Messages != nil {
					fmt.Println("the room you were in was deleted")
				}
				continue
			}
			fmt.Printf("== %s ==\n", out.Room.Title)
			for _, m := range out.Messages {
				fmt.Printf("[%s] %s: %s\n", m.Date, m.Author, m.Text)
			}
		case proto.ActionNewMessage:
			var msg proto.ChatMessage
			if err := json.Unmarshal(out.Message, &msg); err != nil {
				log.Printf("unmarshal message: %v", err)
				continue
			}
			fmt.Printf("[%s] %s: %s\n", proto.RawText(msg.Date), msg.Author, msg.Text)
		case proto.ActionError:
			var msg string
			_ = json.Unmarshal(out.Message, &msg)
			fmt.Printf("error: %s %s\n", msg, out.Error)
		default:
			fmt.Printf("action=%s\n", out.Action)
		}
	}
}

func (s *session) writeLoop(ctx context.Context) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if in, ok := s.parse(strings.TrimSpace(line)); ok {
				s.send(ctx, in)
			}
		}
	}
}

func (s *session) parse(line string) (proto.Inbound, bool) {
	if line == "" {
		return proto.Inbound{}, false
	}
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "/rooms":
		return proto.Inbound{Action: proto.ActionAskRoomsList}, true
	case "/new":
		return proto.Inbound{Action: proto.ActionCreateRoom, Title: arg, UserID: s.user}, arg != ""
	case "/join":
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			fmt.Println("usage: /join <id>")
			return proto.Inbound{}, false
		}
		s.room = id
		return proto.Inbound{Action: proto.ActionChooseRoom, ID: id}, true
	case "/rename":
		return proto.Inbound{Action: proto.ActionRenameRoom, RoomID: s.room, NewTitle: arg}, s.room != 0 && arg != ""
	case "/delete":
		room := s.room
		s.room = 0
		return proto.Inbound{Action: proto.ActionDeleteRoom, RoomID: room}, room != 0
	}

	if strings.HasPrefix(cmd, "/") {
		fmt.Println(help)
		return proto.Inbound{}, false
	}
	if s.room == 0 {
		fmt.Println("join a room first: /join <id>")
		return proto.Inbound{}, false
	}
	return proto.Inbound{
		Action: proto.ActionNewMessage,
		Author: s.user,
		Text:   line,
		Date:   time.Now().Format(time.Kitchen),
		RoomID: s.room,
	}, true
}
