package transport

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/houserules/server/internal/game"
	"github.com/houserules/server/internal/game/engine"
	"github.com/houserules/server/internal/game/kernel"
	"github.com/houserules/server/internal/metrics"
	"go.uber.org/zap"
)

// ErrRoomClosed is returned when a call reaches a room whose actor has
// stopped.
var ErrRoomClosed = errors.New("room closed")

type pendingChoice struct {
	choices []string
	deliver func(choice string)
}

// Room is one game session and its actor. All game state access happens
// on the actor goroutine: public methods post closures onto the actions
// channel and the kernel is only ever invoked from inside them.
type Room struct {
	Name string

	eng  *engine.Engine
	kern *kernel.Kernel
	log  *zap.Logger
	rec  *metrics.Recorder

	actions   chan func()
	done      chan struct{}
	closeOnce sync.Once

	sessions   map[string]*session
	joinOrder  []string
	pending    map[string]pendingChoice
	started    bool
	finished   bool
	maxPlayers int
}

// NewRoom creates a room and starts its actor. A maxPlayers of zero
// means unlimited.
func NewRoom(name string, eng *engine.Engine, maxPlayers int, rec *metrics.Recorder, logger *zap.Logger) *Room {
	r := &Room{
		Name:       name,
		eng:        eng,
		log:        logger.With(zap.String("room", name)),
		rec:        rec,
		actions:    make(chan func(), 64),
		done:       make(chan struct{}),
		sessions:   make(map[string]*session),
		pending:    make(map[string]pendingChoice),
		maxPlayers: maxPlayers,
	}
	opts := []kernel.Option{kernel.WithMessenger(r), kernel.WithRand(eng.Rand())}
	if rec != nil {
		opts = append(opts, kernel.WithRecorder(rec))
	}
	r.kern = kernel.New(eng.Game(), eng, r.log, opts...)

	if rec != nil {
		rec.RoomOpened()
	}
	go r.run()
	return r
}

func (r *Room) run() {
	defer func() {
		if r.rec != nil {
			r.rec.RoomClosed()
		}
	}()
	for {
		select {
		case fn := <-r.actions:
			fn()
		case <-r.done:
			return
		}
	}
}

// post schedules fn on the actor. It reports false once the room is
// closed.
func (r *Room) post(fn func()) bool {
	select {
	case r.actions <- fn:
		return true
	case <-r.done:
		return false
	}
}

// call runs fn on the actor and waits for its error.
func (r *Room) call(fn func() error) error {
	errc := make(chan error, 1)
	if !r.post(func() { errc <- fn() }) {
		return ErrRoomClosed
	}
	return <-errc
}

// Close drops every connected client and stops the actor. Closing a
// session's send channel ends its write pump; closing the connection
// ends its read pump.
func (r *Room) Close() {
	r.closeOnce.Do(func() {
		r.call(func() error {
			for name, s := range r.sessions {
				delete(r.sessions, name)
				close(s.send)
				if s.conn != nil {
					s.conn.Close()
				}
			}
			return nil
		})
		close(r.done)
	})
}

// Join seats a player and attaches their connection. It fails once the
// game has started or when the name is already taken.
func (r *Room) Join(s *session) error {
	return r.call(func() error {
		if r.started {
			return fmt.Errorf("room %q has already started", r.Name)
		}
		if _, taken := r.sessions[s.player]; taken {
			return fmt.Errorf("%q is already a player in room %q", s.player, r.Name)
		}
		if r.maxPlayers > 0 && len(r.sessions) >= r.maxPlayers {
			return fmt.Errorf("room %q is full", r.Name)
		}
		if _, err := r.eng.AddPlayer(s.player); err != nil {
			return err
		}
		r.sessions[s.player] = s
		r.joinOrder = append(r.joinOrder, s.player)
		r.broadcastMessage(fmt.Sprintf("%s has joined the room!", s.player))
		r.broadcastUpdate(false)
		return nil
	})
}

// Leave detaches a player's connection. Seats are only released before
// the game starts; mid-game the player's cards stay on the table.
func (r *Room) Leave(player string) {
	r.post(func() {
		s, ok := r.sessions[player]
		if !ok {
			return
		}
		delete(r.sessions, player)
		close(s.send)
		if !r.started {
			r.eng.RemovePlayer(player)
			for i, name := range r.joinOrder {
				if name == player {
					r.joinOrder = append(r.joinOrder[:i], r.joinOrder[i+1:]...)
					break
				}
			}
		}
		r.broadcastMessage(fmt.Sprintf("%s has left the room", player))
	})
}

// Start sets up the game and fires the first turn. Join order fixes the
// rotation.
func (r *Room) Start() error {
	return r.call(func() error {
		if r.started {
			return fmt.Errorf("room %q is already in progress", r.Name)
		}
		seating := make([]*game.Player, 0, len(r.joinOrder))
		for _, name := range r.joinOrder {
			seating = append(seating, r.eng.Game().Players[name])
		}
		if err := r.eng.SetupGame(seating); err != nil {
			return err
		}
		r.started = true
		r.broadcastMessage(fmt.Sprintf("Starting game '%s'...", r.Name))
		r.kern.NotifyTurnStart()
		r.broadcastUpdate(false)
		r.announceCurrentPlayer()
		return nil
	})
}

func (r *Room) announceCurrentPlayer() {
	if cp := r.eng.Game().CurrentPlayer; cp != nil {
		r.broadcastMessage(fmt.Sprintf("Current player: %s", cp.Username))
	}
}

// HandleCommand dispatches one client command on the actor.
func (r *Room) HandleCommand(player string, cmd Command) {
	r.post(func() {
		s := r.sessions[player]
		if s == nil {
			return
		}
		p := r.eng.Game().Players[player]
		if p == nil {
			s.push(messageFrame("You are not seated in this room"))
			return
		}
		if !r.started {
			s.push(messageFrame("The game has not started yet"))
			return
		}
		if r.finished {
			s.push(messageFrame("Game is over, you may leave now"))
			return
		}

		switch cmd.Cmd {
		case "end":
			r.handleEnd(s, p, cmd)
		case "move":
			r.handleMove(s, p, cmd)
		case "inspect":
			r.handleInspect(s, p, cmd)
		case "choose":
			r.handleChoose(s, p, cmd)
		case "say":
			r.handleSay(p, cmd)
		default:
			s.push(messageFrame(fmt.Sprintf("The command '%s' is not supported on this server", cmd.Cmd)))
		}
	})
}

func (r *Room) handleEnd(s *session, p *game.Player, cmd Command) {
	if !r.kern.EndTurn(p) {
		s.push(messageFrame("You are not allowed to end your turn!"))
		return
	}
	if cmd.Comment != "" {
		r.broadcastMessage(fmt.Sprintf("%s ended their turn \"%s\"", p.Username, cmd.Comment))
	} else {
		r.broadcastMessage(fmt.Sprintf("%s ended their turn", p.Username))
	}

	if r.eng.IsOver() {
		r.finish(p)
		return
	}
	r.broadcastUpdate(false)
	r.announceCurrentPlayer()
}

// finish ends the game, sends everyone the final scored update and
// freezes the room.
func (r *Room) finish(by *game.Player) {
	r.kern.EndGame(game.ByPlayer(by))
	r.broadcastUpdate(true)
	r.broadcastMessage("Game is over, you may leave now")
	r.finished = true
}

func (r *Room) handleMove(s *session, p *game.Player, cmd Command) {
	index, ok := parseIndex(cmd.Index)
	if !ok {
		s.push(messageFrame("Malformed move command"))
		return
	}
	from := r.eng.Game().AllAreas[cmd.Src]
	if from == nil {
		s.push(messageFrame(fmt.Sprintf("Source area '%s' does not exist!", cmd.Src)))
		return
	}
	if index < 1 || index > len(from.Contents) {
		s.push(messageFrame(fmt.Sprintf("Index %d is out of range for area %s!", index, from.ID)))
		return
	}
	to := r.eng.Game().AllAreas[cmd.Dst]
	if to == nil {
		s.push(messageFrame(fmt.Sprintf("Destination area '%s' does not exist!", cmd.Dst)))
		return
	}

	card := from.Contents[index-1]
	if !r.kern.MoveCard(game.ByPlayer(p), card, from, to) {
		s.push(messageFrame("You cannot move this card!"))
		return
	}
	r.broadcastUpdate(false)
	r.broadcastMessage(fmt.Sprintf("%s moved card %d from %s to %s", p.Username, index, from.ID, to.ID))
}

func (r *Room) handleInspect(s *session, p *game.Player, cmd Command) {
	index, ok := parseIndex(cmd.Index)
	if !ok {
		s.push(messageFrame("Malformed inspect command"))
		return
	}
	area := r.eng.Game().AllAreas[cmd.Area]
	if area == nil {
		s.push(messageFrame(fmt.Sprintf("Area '%s' does not exist!", cmd.Area)))
		return
	}
	canLook, contents, _ := r.kern.LookAt(p, area)
	if !canLook {
		s.push(messageFrame(fmt.Sprintf("You are not allowed to look at %s", area.ID)))
		return
	}
	if index < 1 || index > len(contents) {
		s.push(messageFrame(fmt.Sprintf("Index %d is out of bounds for %s", index, area.ID)))
		return
	}

	c := contents[index-1]
	url := c.Image()
	if url == "" {
		url = "/placeholder-card.png"
	}
	flagStrs := make([]string, 0, len(c.Flags()))
	for _, f := range c.Flags() {
		flagStrs = append(flagStrs, string(f))
	}
	s.push(Frame{
		Type:  frameInspect,
		URL:   url,
		Title: c.Name(),
		Value: c.Val(),
		Flags: strings.Join(flagStrs, ", "),
		Tags:  strings.Join(c.Tags(), ", "),
	})
}

func (r *Room) handleChoose(s *session, p *game.Player, cmd Command) {
	index, ok := parseIndex(cmd.Which)
	if !ok {
		s.push(messageFrame("Malformed choose command"))
		return
	}
	pc, waiting := r.pending[p.Username]
	if !waiting {
		s.push(messageFrame("You don't have any active choices"))
		return
	}
	if index < 1 || index > len(pc.choices) {
		s.push(messageFrame(fmt.Sprintf("Index %d is not a valid choice! Please choose again", index)))
		s.push(Frame{Type: frameChoices, Choices: pc.choices})
		return
	}
	delete(r.pending, p.Username)
	pc.deliver(pc.choices[index-1])
	r.broadcastUpdate(false)
}

func (r *Room) handleSay(p *game.Player, cmd Command) {
	msg := cmd.Msg
	if msg == "" {
		msg = uuid.NewString()
	}
	// Route chat through the kernel so cards can react to it some day.
	all := make([]game.PlayerRef, 0, len(r.eng.Game().Players))
	for _, other := range r.eng.Game().Players {
		all = append(all, other)
	}
	r.kern.SendMessage(all, fmt.Sprintf("%s: %s", p.Username, msg))
}

// SendMessage implements kernel.Messenger. It runs on the actor.
func (r *Room) SendMessage(players []*game.Player, text string) {
	for _, p := range players {
		s, ok := r.sessions[p.Username]
		if !ok {
			r.log.Debug("message for disconnected player", zap.String("player", p.Username))
			continue
		}
		s.push(messageFrame(text))
	}
}

// RequestChoice implements kernel.Messenger. It records the pending
// choice and prompts the client; the answer re-enters through
// HandleCommand as a fresh serialized action.
func (r *Room) RequestChoice(player *game.Player, choices []string, deliver func(choice string)) error {
	if _, outstanding := r.pending[player.Username]; outstanding {
		return fmt.Errorf("player %q already has an outstanding choice", player.Username)
	}
	s, ok := r.sessions[player.Username]
	if !ok {
		return fmt.Errorf("player %q is not connected", player.Username)
	}
	owned := append([]string(nil), choices...)
	r.pending[player.Username] = pendingChoice{choices: owned, deliver: deliver}
	s.push(Frame{Type: frameChoices, Choices: owned})
	return nil
}

// Snapshot copies the room's game state on the actor.
func (r *Room) Snapshot() (game.Snapshot, error) {
	var snap game.Snapshot
	err := r.call(func() error {
		snap = r.eng.Game().TakeSnapshot()
		return nil
	})
	return snap, err
}

func (r *Room) broadcastMessage(text string) {
	for _, s := range r.sessions {
		s.push(messageFrame(text))
	}
}

func (r *Room) broadcastUpdate(final bool) {
	rend := renderer{kern: r.kern, g: r.eng.Game()}
	names := make([]string, 0, len(r.sessions))
	for name := range r.sessions {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		p := r.eng.Game().Players[name]
		if p == nil {
			continue
		}
		var hand, play string
		if final {
			hand, play = rend.finalUpdate(p)
		} else {
			hand, play = rend.update(p)
		}
		r.sessions[name].push(Frame{Type: frameUpdate, Hand: hand, Play: play})
	}
}
