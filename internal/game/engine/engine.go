// Package engine owns game setup and turn sequencing: player seating,
// the standard area layout, deck construction and the rotation the
// kernel consults when a turn ends.
package engine

import (
	"fmt"
	"math/rand"

	"github.com/houserules/server/internal/game"
	"go.uber.org/zap"
)

// Standard area ids. Per-player areas derive their ids from usernames.
const (
	CenterAreaID  = "center"
	DrawAreaID    = "draw"
	DiscardAreaID = "discard"
)

// Options tune setup. Zero values fall back to the defaults below.
type Options struct {
	HandSize int // opening hand size, default 5
	DeckSize int // draw pile size, default one copy of every registered card
}

const defaultHandSize = 5

// Engine seats players, lays out areas, builds the deck and advances
// turns. It implements the kernel's Scheduler.
type Engine struct {
	game *game.Game
	rng  *rand.Rand
	log  *zap.Logger
	opts Options

	started bool
}

// New creates an engine around a fresh game.
func New(rng *rand.Rand, logger *zap.Logger, opts Options) *Engine {
	if opts.HandSize <= 0 {
		opts.HandSize = defaultHandSize
	}
	return &Engine{
		game: game.NewGame(),
		rng:  rng,
		log:  logger,
		opts: opts,
	}
}

// Game returns the authoritative game record. The kernel takes write
// ownership of it once play begins.
func (e *Engine) Game() *game.Game { return e.game }

// Rand returns the engine's seeded randomness source, shared with the
// kernel so one seed covers shuffles and card effects alike.
func (e *Engine) Rand() *rand.Rand { return e.rng }

// AddPlayer seats a player and creates their hand and personal play
// area. It fails after SetupGame and on duplicate usernames.
func (e *Engine) AddPlayer(username string) (*game.Player, error) {
	if e.started {
		return nil, fmt.Errorf("add player %q: game already started", username)
	}
	if _, taken := e.game.Players[username]; taken {
		return nil, fmt.Errorf("add player %q: username taken", username)
	}

	p := &game.Player{Username: username}

	hand := game.NewArea(username+"_hand", game.FlagHandArea)
	hand.Owners = []*game.Player{p}
	hand.Viewers = []*game.Player{p}

	play := game.NewArea(username+"_play", game.FlagPlayArea)
	play.Owners = []*game.Player{p}

	p.Hand = hand
	p.Area = play

	e.game.Players[username] = p
	e.game.AllAreas[hand.ID] = hand
	e.game.AllAreas[play.ID] = play
	e.log.Info("player seated", zap.String("player", username))
	return p, nil
}

// RemovePlayer releases a seat and its areas. Seats cannot be released
// once the game has started.
func (e *Engine) RemovePlayer(username string) {
	if e.started {
		return
	}
	p, ok := e.game.Players[username]
	if !ok {
		return
	}
	delete(e.game.AllAreas, p.Hand.ID)
	delete(e.game.AllAreas, p.Area.ID)
	delete(e.game.Players, username)
	e.log.Info("player left", zap.String("player", username))
}

// SetupGame lays out the shared areas, builds and deals the deck and
// seeds the turn rotation. Seating order fixes the rotation.
func (e *Engine) SetupGame(seating []*game.Player) error {
	if e.started {
		return fmt.Errorf("setup: game already started")
	}
	if len(seating) == 0 {
		return fmt.Errorf("setup: no players")
	}
	for _, p := range seating {
		if !e.game.HasPlayer(p) {
			return fmt.Errorf("setup: player %q not seated", p.Username)
		}
	}

	center := game.NewArea(CenterAreaID, game.FlagPlayArea)
	draw := game.NewArea(DrawAreaID, game.FlagDrawArea)
	discard := game.NewArea(DiscardAreaID, game.FlagDiscardArea)
	for _, p := range seating {
		center.Owners = append(center.Owners, p)
		draw.Owners = append(draw.Owners, p)
		discard.Owners = append(discard.Owners, p)
	}
	e.game.Center, e.game.Draw, e.game.Discard = center, draw, discard
	e.game.AllAreas[center.ID] = center
	e.game.AllAreas[draw.ID] = draw
	e.game.AllAreas[discard.ID] = discard

	deck := game.MakeDeck(e.rng, e.opts.DeckSize)
	for _, c := range deck {
		c.Owners = draw.Owners
		c.Area = draw
		draw.Contents = append(draw.Contents, c)
		e.game.AllCards = append(e.game.AllCards, c)
	}

	for _, p := range seating {
		for i := 0; i < e.opts.HandSize && len(draw.Contents) > 0; i++ {
			e.deal(draw, p)
		}
	}

	e.game.TurnOrder = append([]*game.Player(nil), seating...)
	e.game.CurrentPlayer = e.game.TurnOrder[0]
	e.game.TurnOrderIndex = 0
	e.game.TurnNum = 1
	e.started = true

	e.log.Info("game set up",
		zap.Int("players", len(seating)),
		zap.Int("deck", len(draw.Contents)),
		zap.String("first", e.game.CurrentPlayer.Username))
	return nil
}

// deal moves the top draw card into the player's hand, bypassing the
// action pipeline. Only valid during setup.
func (e *Engine) deal(draw *game.Area, p *game.Player) {
	c := draw.Contents[0]
	draw.Contents = draw.Contents[1:]
	c.Owners = p.Hand.Owners
	c.Area = p.Hand
	p.Hand.Contents = append([]*game.Card{c}, p.Hand.Contents...)
}

// AdvanceTurn moves the game to the next turn: budgets reset to their
// defaults, counters to zero, and the next seat comes from the
// temporary queue if one is pending, otherwise the baseline rotation.
// Queue detours never move the rotation index.
func (e *Engine) AdvanceTurn() *game.Player {
	g := e.game
	g.TurnNum++
	g.MaxCardsPlayedThisTurn = 1
	g.CardsPlayedThisTurn = 0
	g.MaxCardsDrawnThisTurn = 1
	g.CardsDrawnThisTurn = 0

	if len(g.TurnQueue) > 0 {
		g.CurrentPlayer = g.TurnQueue[0]
		g.TurnQueue = g.TurnQueue[1:]
		return g.CurrentPlayer
	}
	if len(g.TurnOrder) > 0 {
		g.TurnOrderIndex = (g.TurnOrderIndex + 1) % len(g.TurnOrder)
		g.CurrentPlayer = g.TurnOrder[g.TurnOrderIndex]
	}
	return g.CurrentPlayer
}

// IsOver reports whether play should stop: an explicit end, or the draw
// pile running dry.
func (e *Engine) IsOver() bool {
	if e.game.Over {
		return true
	}
	return e.started && e.game.Draw != nil && len(e.game.Draw.Contents) == 0
}
