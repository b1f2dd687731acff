package transport

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/houserules/server/internal/config"
	"github.com/houserules/server/internal/game/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	newEngine := func() *engine.Engine {
		return engine.New(rand.New(rand.NewSource(1)), zaptest.NewLogger(t), engine.Options{})
	}
	m := NewManager(newEngine, 0, nil, zaptest.NewLogger(t))
	t.Cleanup(m.CloseAll)
	return m
}

func TestNameValidation(t *testing.T) {
	for name, ok := range map[string]bool{
		"alice":  true,
		"Alice":  false,
		"al1ce":  false,
		"":       false,
		"a lice": false,
	} {
		assert.Equal(t, ok, validPlayerName.MatchString(name), "player %q", name)
	}
	for name, ok := range map[string]bool{
		"lobby":      true,
		"Lobby42":    true,
		"my-room":    true,
		"my--room":   false,
		"-room":      false,
		"room-":      false,
		"my room":    false,
		"":           false,
		"a-b-c-2024": true,
	} {
		assert.Equal(t, ok, validRoomName.MatchString(name), "room %q", name)
	}
}

func TestParseNames(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/join?p=alice&room=my-room", nil)
	player, room, err := parseNames(req)
	require.NoError(t, err)
	assert.Equal(t, "alice", player)
	assert.Equal(t, "my-room", room)

	req = httptest.NewRequest(http.MethodGet, "/join?p=Alice&room=lobby", nil)
	_, _, err = parseNames(req)
	assert.Error(t, err)
}

func TestMakeAndStartEndpoints(t *testing.T) {
	m := newTestManager(t)
	h := m.Handler(config.MetricsConfig{})

	do := func(target string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
		return w
	}

	assert.Equal(t, http.StatusOK, do("/make?p=alice&room=lobby").Code)
	assert.NotNil(t, m.Room("lobby"))
	assert.Equal(t, http.StatusConflict, do("/make?p=alice&room=lobby").Code)
	assert.Equal(t, http.StatusBadRequest, do("/make?p=alice&room=bad%20name").Code)
	assert.Equal(t, http.StatusNotFound, do("/start?p=alice&room=ghost").Code)

	w := do("/start?p=alice&room=lobby")
	assert.Equal(t, http.StatusConflict, w.Code, "cannot start an empty room")

	var f Frame
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &f))
	assert.Equal(t, frameMessage, f.Type)
}

func TestJoinOverWebSocket(t *testing.T) {
	m := newTestManager(t)
	srv := httptest.NewServer(m.Handler(config.MetricsConfig{}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/make?p=alice&room=lobby")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/join?p=alice&room=lobby"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var joined, welcomed bool
	for !joined || !welcomed {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		var f Frame
		require.NoError(t, json.Unmarshal(data, &f))
		if f.Type == frameMessage && strings.Contains(f.Data, "alice has joined the room!") {
			joined = true
		}
		if f.Type == frameMessage && strings.Contains(f.Data, "Joining room 'lobby'") {
			welcomed = true
		}
	}
}

func TestStateEndpoint(t *testing.T) {
	m := newTestManager(t)
	h := m.Handler(config.MetricsConfig{})

	do := func(target string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
		return w
	}

	assert.Equal(t, http.StatusNotFound, do("/state?room=ghost").Code)
	assert.Equal(t, http.StatusBadRequest, do("/state?room=bad%20name").Code)

	require.Equal(t, http.StatusOK, do("/make?p=alice&room=lobby").Code)
	w := do("/state?room=lobby")
	require.Equal(t, http.StatusOK, w.Code)

	var snap struct {
		TurnNum  int    `json:"turn_num"`
		Checksum string `json:"checksum"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Zero(t, snap.TurnNum, "room not started yet")
	assert.NotEmpty(t, snap.Checksum)
}

func TestJoinUnknownRoom(t *testing.T) {
	m := newTestManager(t)
	srv := httptest.NewServer(m.Handler(config.MetricsConfig{}))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/join?p=alice&room=ghost")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
