// Package transport is the HTTP/WebSocket boundary: rooms, sessions and
// the JSON protocol clients speak. Each room runs one actor goroutine;
// every rules-engine call and choice callback funnels through it, so the
// kernel never sees concurrent access.
package transport

import "encoding/json"

// Outbound frame types.
const (
	frameMessage = "message"
	frameUpdate  = "update"
	frameChoices = "choices"
	frameInspect = "inspect"
)

// Frame is an outbound message to a client.
type Frame struct {
	Type string `json:"type"`

	// message
	Data string `json:"data,omitempty"`

	// update
	Hand string `json:"hand,omitempty"`
	Play string `json:"play,omitempty"`

	// choices
	Choices []string `json:"choices,omitempty"`

	// inspect
	URL   string `json:"url,omitempty"`
	Title string `json:"title,omitempty"`
	Value int    `json:"value,omitempty"`
	Flags string `json:"flags,omitempty"`
	Tags  string `json:"tags,omitempty"`
}

func messageFrame(text string) Frame { return Frame{Type: frameMessage, Data: text} }

// Command is an inbound client message. Index fields are 1-based on the
// wire, matching what the rendered state shows.
type Command struct {
	Cmd string `json:"cmd"`

	// end
	Comment string `json:"comment,omitempty"`

	// move
	Src   string          `json:"src,omitempty"`
	Dst   string          `json:"dst,omitempty"`
	Index json.RawMessage `json:"index,omitempty"`

	// inspect
	Area string `json:"area,omitempty"`

	// choose
	Which json.RawMessage `json:"which,omitempty"`

	// say
	Msg string `json:"msg,omitempty"`
}

// parseIndex accepts a JSON number or numeric string, both of which
// clients have historically sent.
func parseIndex(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	var m int
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return 0, false
	}
	return m, true
}
