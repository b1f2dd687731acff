package transport

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/houserules/server/internal/config"
	"github.com/houserules/server/internal/game/engine"
	"github.com/houserules/server/internal/metrics"
	"go.uber.org/zap"
)

// Lowercase letters are the easiest to type quickly. Room names also
// admit digits and single interior dashes.
var (
	validPlayerName = regexp.MustCompile(`^[a-z]+$`)
	validRoomName   = regexp.MustCompile(`^[a-zA-Z0-9]+(-[a-zA-Z0-9]+)*$`)
)

// NewEngine builds a game engine for one room. Injected so tests can
// pin the shuffle.
type NewEngine func() *engine.Engine

// Manager owns the room registry and the HTTP surface:
//
//	GET/POST /make?p=<player>&room=<room>   create a room
//	GET/POST /start?p=<player>&room=<room>  start a created room
//	GET      /join?p=<player>&room=<room>   join over WebSocket
//	GET      /state?room=<room>             dump the room's game state
type Manager struct {
	mu    sync.Mutex
	rooms map[string]*Room

	newEngine  NewEngine
	maxPlayers int
	rec        *metrics.Recorder
	log        *zap.Logger
	upgrader   websocket.Upgrader
}

// NewManager creates an empty room registry. A maxPlayers of zero means
// unlimited room size.
func NewManager(newEngine NewEngine, maxPlayers int, rec *metrics.Recorder, logger *zap.Logger) *Manager {
	return &Manager{
		rooms:      make(map[string]*Room),
		newEngine:  newEngine,
		maxPlayers: maxPlayers,
		rec:        rec,
		log:        logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handler returns the HTTP mux for the room endpoints, with the
// Prometheus endpoint mounted when metrics are enabled.
func (m *Manager) Handler(cfg config.MetricsConfig) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/make", m.serveMake)
	mux.HandleFunc("/start", m.serveStart)
	mux.HandleFunc("/join", m.serveJoin)
	mux.HandleFunc("/state", m.serveState)
	if cfg.Enabled && m.rec != nil {
		mux.Handle("/metrics", m.rec.Handler())
	}
	return mux
}

// Room returns the named room, or nil.
func (m *Manager) Room(name string) *Room {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rooms[name]
}

// CloseAll stops every room actor.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rooms {
		r.Close()
	}
}

func parseNames(r *http.Request) (player, room string, err error) {
	player = r.URL.Query().Get("p")
	room = r.URL.Query().Get("room")
	if !validRoomName.MatchString(room) {
		return "", "", fmt.Errorf("invalid room name %q", room)
	}
	if !validPlayerName.MatchString(player) {
		return "", "", fmt.Errorf("invalid player name %q, only lowercase letters allowed", player)
	}
	return player, room, nil
}

func writeMessage(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(messageFrame(text))
}

func (m *Manager) serveMake(w http.ResponseWriter, r *http.Request) {
	_, roomName, err := parseNames(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.rooms[roomName]; exists {
		writeMessage(w, http.StatusConflict, fmt.Sprintf("Room '%s' already exists!", roomName))
		return
	}
	m.rooms[roomName] = NewRoom(roomName, m.newEngine(), m.maxPlayers, m.rec, m.log)
	m.log.Info("room created", zap.String("room", roomName))
	writeMessage(w, http.StatusOK, fmt.Sprintf("Made room %s", roomName))
}

func (m *Manager) serveStart(w http.ResponseWriter, r *http.Request) {
	_, roomName, err := parseNames(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	room := m.Room(roomName)
	if room == nil {
		writeMessage(w, http.StatusNotFound, fmt.Sprintf("Error: room '%s' does not exist!", roomName))
		return
	}
	if err := room.Start(); err != nil {
		writeMessage(w, http.StatusConflict, fmt.Sprintf("Error: %v", err))
		return
	}
	writeMessage(w, http.StatusOK, "Game should be starting now!")
}

// serveState dumps a room's full game state, hidden areas included. It
// is meant for operators and tests, not for players.
func (m *Manager) serveState(w http.ResponseWriter, r *http.Request) {
	roomName := r.URL.Query().Get("room")
	if !validRoomName.MatchString(roomName) {
		writeMessage(w, http.StatusBadRequest, fmt.Sprintf("invalid room name %q", roomName))
		return
	}
	room := m.Room(roomName)
	if room == nil {
		writeMessage(w, http.StatusNotFound, fmt.Sprintf("Error: room '%s' does not exist!", roomName))
		return
	}
	snap, err := room.Snapshot()
	if err != nil {
		writeMessage(w, http.StatusGone, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snap)
}

func (m *Manager) serveJoin(w http.ResponseWriter, r *http.Request) {
	playerName, roomName, err := parseNames(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	room := m.Room(roomName)
	if room == nil {
		writeMessage(w, http.StatusNotFound, fmt.Sprintf("Error: room '%s' does not exist!", roomName))
		return
	}

	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		m.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	s := newSession(conn, playerName, room, m.log)
	go s.writePump()
	if err := room.Join(s); err != nil {
		s.push(messageFrame(fmt.Sprintf("Error: %v", err)))
		close(s.send)
		return
	}
	s.push(messageFrame(fmt.Sprintf("Joining room '%s'...", roomName)))
	go s.readPump()
}
