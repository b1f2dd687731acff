// Command client is a terminal client for a houserules server: it joins
// a room over WebSocket, renders the frames the room pushes, and turns
// typed commands into the JSON protocol.
//
// Commands:
//
//	move <src> <dst> <index>   move a card (1-based index)
//	end [comment]              end your turn
//	inspect <area> <index>     inspect a card
//	choose <n>                 answer an outstanding choice
//	say <text>                 chat
//	quit                       leave
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/houserules/server/internal/transport"
)

func main() {
	server := flag.String("server", "localhost:8080", "server host:port")
	room := flag.String("room", "", "room name")
	player := flag.String("player", "", "player name, lowercase letters only")
	flag.Parse()

	if *room == "" || *player == "" {
		flag.Usage()
		os.Exit(2)
	}

	u := url.URL{
		Scheme:   "ws",
		Host:     *server,
		Path:     "/join",
		RawQuery: url.Values{"p": {*player}, "room": {*room}}.Encode(),
	}
	conn, resp, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		if resp != nil {
			log.Fatalf("join failed: %v (HTTP %d)", err, resp.StatusCode)
		}
		log.Fatalf("join failed: %v", err)
	}
	defer conn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var f transport.Frame
			if err := json.Unmarshal(data, &f); err != nil {
				fmt.Printf("?? %s\n", data)
				continue
			}
			render(f)
		}
	}()

	in := bufio.NewScanner(os.Stdin)
	for in.Scan() {
		select {
		case <-done:
			return
		default:
		}
		cmd, ok := parse(in.Text())
		if !ok {
			continue
		}
		if cmd == nil {
			return
		}
		data, err := json.Marshal(cmd)
		if err != nil {
			log.Printf("encode: %v", err)
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Printf("send: %v", err)
			return
		}
	}
}

func render(f transport.Frame) {
	switch f.Type {
	case "message":
		fmt.Printf("* %s\n", f.Data)
	case "update":
		fmt.Println("---- table ----")
		fmt.Println(f.Play)
		fmt.Println("---- hands ----")
		fmt.Println(f.Hand)
	case "choices":
		fmt.Println("* You must choose:")
		for i, c := range f.Choices {
			fmt.Printf("    [%d] %s\n", i+1, c)
		}
		fmt.Println("  (answer with: choose <n>)")
	case "inspect":
		fmt.Printf("* %s (%d points)\n", f.Title, f.Value)
		if f.Flags != "" {
			fmt.Printf("    flags: %s\n", f.Flags)
		}
		if f.Tags != "" {
			fmt.Printf("    tags: %s\n", f.Tags)
		}
		fmt.Printf("    image: %s\n", f.URL)
	}
}

// parse turns one input line into a command. A nil command with ok set
// means quit; !ok means the line was malformed or empty.
func parse(line string) (*transport.Command, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, false
	}
	rest := strings.TrimSpace(strings.TrimPrefix(line, fields[0]))

	switch fields[0] {
	case "quit", "exit":
		return nil, true
	case "move":
		if len(fields) != 4 || !numeric(fields[3]) {
			fmt.Println("usage: move <src> <dst> <index>")
			return nil, false
		}
		return &transport.Command{
			Cmd: "move", Src: fields[1], Dst: fields[2],
			Index: json.RawMessage(fields[3]),
		}, true
	case "end":
		return &transport.Command{Cmd: "end", Comment: rest}, true
	case "inspect":
		if len(fields) != 3 || !numeric(fields[2]) {
			fmt.Println("usage: inspect <area> <index>")
			return nil, false
		}
		return &transport.Command{Cmd: "inspect", Area: fields[1], Index: json.RawMessage(fields[2])}, true
	case "choose":
		if len(fields) != 2 || !numeric(fields[1]) {
			fmt.Println("usage: choose <n>")
			return nil, false
		}
		return &transport.Command{Cmd: "choose", Which: json.RawMessage(fields[1])}, true
	case "say":
		return &transport.Command{Cmd: "say", Msg: rest}, true
	default:
		fmt.Printf("unknown command %q\n", fields[0])
		return nil, false
	}
}

func numeric(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}
