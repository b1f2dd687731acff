// Package kernel implements the mediator at the center of the game: the
// single trusted authority through which every state change flows. Each
// operation runs the same pipeline: poll the cards for a veto, fall
// back to a built-in default policy, perform the mutation, then notify
// every eligible card after the fact. Cards only ever see read-only
// views; the kernel alone holds the key that unwraps them.
package kernel

import (
	"errors"
	"math/rand"
	"runtime/debug"
	"time"

	"github.com/houserules/server/internal/game"
	"go.uber.org/zap"
)

// Scheduler owns turn rotation. The kernel invokes it from the end-turn
// path only.
type Scheduler interface {
	// AdvanceTurn moves the game to the next turn and returns the new
	// current player.
	AdvanceTurn() *game.Player
}

// Messenger is the transport-facing side of the kernel: outbound
// broadcasts and player choice prompts. Implementations must deliver
// choice callbacks as fresh, serialized actions on the game's pipeline.
type Messenger interface {
	SendMessage(players []*game.Player, text string)
	RequestChoice(player *game.Player, choices []string, deliver func(choice string)) error
}

// Recorder receives pipeline outcome observations. Implementations are
// expected to be cheap; a nil recorder disables recording.
type Recorder interface {
	ActionDecided(action string, allowed bool)
	HandlerFault(card, action string)
}

// ErrNoMessenger is returned when a choice is requested before a
// transport is attached.
var ErrNoMessenger = errors.New("kernel: no messenger attached")

// Kernel is the rules authority for one game instance. It is logically
// single-threaded: callers must serialize all operations per game (one
// actor per room), so the kernel itself takes no locks.
type Kernel struct {
	game      *game.Game
	views     *game.ViewFactory
	gameView  *game.GameView
	scheduler Scheduler
	messenger Messenger
	recorder  Recorder
	rng       *rand.Rand
	log       *zap.Logger
}

// Option customizes kernel construction.
type Option func(*Kernel)

// WithMessenger attaches the transport used for SendMessage and
// GetPlayerInput.
func WithMessenger(m Messenger) Option {
	return func(k *Kernel) { k.messenger = m }
}

// WithRecorder attaches a pipeline outcome recorder.
func WithRecorder(r Recorder) Option {
	return func(k *Kernel) { k.recorder = r }
}

// WithRand sets the randomness source handed to card behaviors. Rooms
// pass the engine's seeded source so a fixed seed replays the whole
// game, card effects included.
func WithRand(rng *rand.Rand) Option {
	return func(k *Kernel) { k.rng = rng }
}

// New creates the authority for the given game. The scheduler is invoked
// from the end-turn path.
func New(g *game.Game, scheduler Scheduler, logger *zap.Logger, opts ...Option) *Kernel {
	if logger == nil {
		logger = zap.NewNop()
	}
	views := game.NewViewFactory()
	k := &Kernel{
		game:      g,
		views:     views,
		gameView:  views.Game(g),
		scheduler: scheduler,
		log:       logger,
	}
	for _, opt := range opts {
		opt(k)
	}
	if k.rng == nil {
		k.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return k
}

// Rand exposes the kernel's randomness source to card behaviors.
func (k *Kernel) Rand() *rand.Rand { return k.rng }

// eligible reports whether a card's handlers participate in polls and
// notifications: it must be in a play area, or carry ALWAYS_GET_EVENTS.
func (k *Kernel) eligible(c *game.Card) bool {
	if c.Flags.Has(game.FlagAlwaysGetEvents) {
		return true
	}
	return c.Area != nil && c.Area.Flags.Has(game.FlagPlayArea)
}

// cardsSnapshot copies the dispatch order so re-ranking from nested
// kernel calls cannot disturb an in-flight poll.
func (k *Kernel) cardsSnapshot() []*game.Card {
	return append([]*game.Card(nil), k.game.AllCards...)
}

// poll iterates eligible cards front to back soliciting votes. The first
// decisive vote wins; handler panics are isolated and count as
// abstentions.
func (k *Kernel) poll(action string, call func(game.Behavior) game.Vote) game.Vote {
	for _, c := range k.cardsSnapshot() {
		if !k.eligible(c) {
			continue
		}
		if v := k.safeVote(action, c, call); v != game.VoteAbstain {
			k.log.Debug("poll decided",
				zap.String("action", action),
				zap.String("card", c.Name),
				zap.Stringer("vote", v),
			)
			return v
		}
	}
	return game.VoteAbstain
}

// pollScore is the poll variant for score overrides: the first handler
// to return a decisive value replaces the default entirely.
func (k *Kernel) pollScore(action string, call func(game.Behavior) (int, bool)) (int, bool) {
	for _, c := range k.cardsSnapshot() {
		if !k.eligible(c) {
			continue
		}
		if score, ok := k.safeScore(action, c, call); ok {
			return score, true
		}
	}
	return 0, false
}

// notify invokes the hook on every eligible card in dispatch order.
// Failures are isolated and never roll back the completed mutation.
func (k *Kernel) notify(action string, call func(game.Behavior)) {
	for _, c := range k.cardsSnapshot() {
		if !k.eligible(c) {
			continue
		}
		k.safeHook(action, c, call)
	}
}

// notifyCard invokes a self-only hook on a single card, subject to the
// usual eligibility rule.
func (k *Kernel) notifyCard(action string, c *game.Card, call func(game.Behavior)) {
	if !k.eligible(c) {
		return
	}
	k.safeHook(action, c, call)
}

func (k *Kernel) safeVote(action string, c *game.Card, call func(game.Behavior) game.Vote) (v game.Vote) {
	defer k.recoverFault(action, c, func() { v = game.VoteAbstain })
	return call(c.Behavior)
}

func (k *Kernel) safeScore(action string, c *game.Card, call func(game.Behavior) (int, bool)) (score int, ok bool) {
	defer k.recoverFault(action, c, func() { score, ok = 0, false })
	return call(c.Behavior)
}

func (k *Kernel) safeHook(action string, c *game.Card, call func(game.Behavior)) {
	defer k.recoverFault(action, c, func() {})
	call(c.Behavior)
}

// recoverFault turns a panicking handler into an abstention. One buggy
// card must not halt the pipeline.
func (k *Kernel) recoverFault(action string, c *game.Card, reset func()) {
	if r := recover(); r != nil {
		reset()
		k.log.Error("card handler fault",
			zap.String("action", action),
			zap.String("card", c.Name),
			zap.Any("panic", r),
			zap.ByteString("stack", debug.Stack()),
		)
		if k.recorder != nil {
			k.recorder.HandlerFault(c.Name, action)
		}
	}
}

func (k *Kernel) record(action string, allowed bool) {
	if k.recorder != nil {
		k.recorder.ActionDecided(action, allowed)
	}
}

// unwrapCard resolves a reference, failing closed on foreign views.
func (k *Kernel) unwrapCard(ref game.CardRef) (*game.Card, bool) {
	c, err := k.views.UnwrapCard(ref)
	if err != nil {
		k.log.Warn("rejected foreign card view", zap.Error(err))
		return nil, false
	}
	return c, true
}

func (k *Kernel) unwrapArea(ref game.AreaRef) (*game.Area, bool) {
	a, err := k.views.UnwrapArea(ref)
	if err != nil {
		k.log.Warn("rejected foreign area view", zap.Error(err))
		return nil, false
	}
	return a, true
}

func (k *Kernel) unwrapPlayer(ref game.PlayerRef) (*game.Player, bool) {
	p, err := k.views.UnwrapPlayer(ref)
	if err != nil {
		k.log.Warn("rejected foreign player view", zap.Error(err))
		return nil, false
	}
	return p, true
}

// unwrapInitiator normalizes an initiator tag to authoritative records.
func (k *Kernel) unwrapInitiator(init game.Initiator) (*game.Player, *game.Card, bool) {
	p, ok := k.unwrapPlayer(init.Player)
	if !ok {
		return nil, nil, false
	}
	c, ok := k.unwrapCard(init.Card)
	if !ok {
		return nil, nil, false
	}
	return p, c, true
}

func (k *Kernel) initiatorView(p *game.Player, c *game.Card) game.InitiatorView {
	return game.InitiatorView{Player: k.views.Player(p), Card: k.views.Card(c)}
}

// NotifyTurnStart fires the turn-start notification for the current
// player. The end-turn path calls it after advancing the scheduler; the
// transport calls it once when the game starts.
func (k *Kernel) NotifyTurnStart() {
	pv := k.views.Player(k.game.CurrentPlayer)
	k.notify("turn_start", func(b game.Behavior) { b.OnTurnStart(k, pv, k.gameView) })
}

// EndGame marks the game over and fires the end-game hooks. There is no
// veto point for ending the game.
func (k *Kernel) EndGame(init game.Initiator) bool {
	if k.game.Over {
		return false
	}
	k.game.Over = true
	k.record("end_game", true)
	k.notify("end_game", func(b game.Behavior) { b.OnEndGame(k, k.gameView) })
	return true
}

// SendMessage broadcasts text to the given players. Fire and forget.
func (k *Kernel) SendMessage(players []game.PlayerRef, text string) {
	if k.messenger == nil {
		k.log.Debug("message dropped, no messenger", zap.String("text", text))
		return
	}
	resolved := make([]*game.Player, 0, len(players))
	for _, ref := range players {
		if p, ok := k.unwrapPlayer(ref); ok && p != nil {
			resolved = append(resolved, p)
		}
	}
	k.messenger.SendMessage(resolved, text)
}

// GetPlayerInput prompts the player with choices. The callback is
// delivered by the transport as a fresh, serialized pipeline action. A
// second outstanding prompt for the same player is rejected by the
// transport.
func (k *Kernel) GetPlayerInput(player game.PlayerRef, choices []string, fn func(choice string)) error {
	if k.messenger == nil {
		return ErrNoMessenger
	}
	p, ok := k.unwrapPlayer(player)
	if !ok || p == nil {
		return game.ErrCapabilityViolation
	}
	return k.messenger.RequestChoice(p, append([]string(nil), choices...), fn)
}

// compile-time check: the kernel is the sanctioned mutation surface.
var _ game.Actions = (*Kernel)(nil)
