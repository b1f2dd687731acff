package transport

import (
	"encoding/json"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// session is one player's WebSocket connection. Writes go through a
// buffered channel so a slow client never blocks the room actor.
type session struct {
	conn   *websocket.Conn
	send   chan []byte
	player string
	room   *Room
	log    *zap.Logger
}

func newSession(conn *websocket.Conn, player string, room *Room, log *zap.Logger) *session {
	return &session{
		conn:   conn,
		send:   make(chan []byte, 64),
		player: player,
		room:   room,
		log:    log,
	}
}

// push queues a frame, dropping it if the client has fallen too far
// behind.
func (s *session) push(f Frame) {
	data, err := json.Marshal(f)
	if err != nil {
		s.log.Error("marshal frame", zap.Error(err))
		return
	}
	select {
	case s.send <- data:
	default:
		s.log.Warn("client send buffer full, dropping frame",
			zap.String("player", s.player),
			zap.String("type", f.Type))
	}
}

// readPump decodes commands and posts them onto the room actor. It
// returns when the connection drops.
func (s *session) readPump() {
	defer func() {
		s.room.Leave(s.player)
		s.conn.Close()
	}()

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			return
		}
		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			s.log.Warn("malformed command", zap.String("player", s.player), zap.Error(err))
			s.push(messageFrame("Malformed command"))
			continue
		}
		s.room.HandleCommand(s.player, cmd)
	}
}

// writePump drains the send channel onto the wire.
func (s *session) writePump() {
	defer s.conn.Close()
	for data := range s.send {
		if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}
