// Package game holds the data model for a running card game, the plugin
// contract that card behaviors implement, and the read-only capability
// views the kernel hands to those behaviors. The kernel (subpackage
// kernel) is the only component allowed to mutate anything here once a
// game is underway.
package game

import "github.com/google/uuid"

// Player is a participant in a game. Username is the unique key.
type Player struct {
	Username string
	Hand     *Area // the player's hand
	Area     *Area // the player's personal play area
	// Score is advisory display state. The authoritative score is always
	// recomputed through the kernel's scoring pipeline.
	Score int
}

// Card is a single card instance. Val, Name, Image, Flags and Tags are
// populated by the card's behavior during Init and belong to the card
// author; the author may keep mutating them from its own hooks.
type Card struct {
	Val   int
	Name  string
	Image string
	Flags CardFlags
	Tags  Tags

	// Kernel-owned placement state. Only the kernel may write these;
	// behaviors read them through views (or through their own record,
	// read-only by convention).
	Owners []*Player // owners of the area this card is in
	Player *Player   // who last played this card into a play area
	Area   *Area     // area this card currently resides in

	// ID distinguishes this instance from structurally equal copies.
	ID uuid.UUID

	// Behavior is the plugin logic attached to this card.
	Behavior Behavior
}

// NewCard allocates a card record, binds the behavior to it and runs the
// behavior's Init to populate the card-author fields.
func NewCard(b Behavior) *Card {
	c := &Card{
		Flags:    NewCardFlags(),
		Tags:     NewTags(),
		ID:       uuid.New(),
		Behavior: b,
	}
	b.Init(c)
	if c.Flags == nil {
		c.Flags = NewCardFlags()
	}
	if c.Tags == nil {
		c.Tags = NewTags()
	}
	return c
}

// Area is an ordered pile of cards with ownership and visibility lists.
// Areas are created during setup or through the kernel's create-area
// action and are never destroyed during a game.
type Area struct {
	ID      string
	Flags   AreaFlags
	Owners  []*Player // players with play/mutation rights over this area
	Viewers []*Player // players with visibility rights, independent of owners
	// Contents is ordered most-recently-added first; the order doubles as
	// dispatch and visual order.
	Contents []*Card
}

// NewArea allocates an empty area with the given id and roles.
func NewArea(id string, flags ...AreaFlag) *Area {
	return &Area{ID: id, Flags: NewAreaFlags(flags...)}
}

// Contains reports whether the card is currently in this area.
func (a *Area) Contains(c *Card) bool {
	for _, in := range a.Contents {
		if in == c {
			return true
		}
	}
	return false
}

// HasOwner reports whether the player has play rights over this area.
func (a *Area) HasOwner(p *Player) bool {
	for _, o := range a.Owners {
		if o == p {
			return true
		}
	}
	return false
}

// HasViewer reports whether the player has visibility rights over this area.
func (a *Area) HasViewer(p *Player) bool {
	for _, v := range a.Viewers {
		if v == p {
			return true
		}
	}
	return false
}

// Game is the root aggregate. The kernel exclusively owns write access
// to all of it; the engine owns the turn-sequencing fields and mutates
// them only when invoked from the kernel's end-turn path.
type Game struct {
	Players map[string]*Player

	Center   *Area
	Draw     *Area
	Discard  *Area
	AllAreas map[string]*Area

	// AllCards is every card in the game, front = highest dispatch
	// priority. Cards are re-ranked to the front as they are touched.
	AllCards []*Card

	TurnOrder []*Player // rotation baseline
	TurnQueue []*Player // FIFO override consumed before TurnOrder

	TurnNum        int
	CurrentPlayer  *Player
	TurnOrderIndex int

	MaxCardsPlayedThisTurn int
	CardsPlayedThisTurn    int
	MaxCardsDrawnThisTurn  int
	CardsDrawnThisTurn     int

	Over bool
}

// NewGame allocates an empty game with per-turn budgets at their
// defaults.
func NewGame() *Game {
	return &Game{
		Players:                make(map[string]*Player),
		AllAreas:               make(map[string]*Area),
		MaxCardsPlayedThisTurn: 1,
		MaxCardsDrawnThisTurn:  1,
	}
}

// HasPlayer reports whether the player pointer belongs to this game.
func (g *Game) HasPlayer(p *Player) bool {
	if p == nil {
		return false
	}
	return g.Players[p.Username] == p
}

// PromoteCard moves the card to the front of AllCards so its handlers
// fire first on future actions. Cards not tracked by the game are left
// alone.
func (g *Game) PromoteCard(c *Card) {
	for i, in := range g.AllCards {
		if in == c {
			copy(g.AllCards[1:i+1], g.AllCards[:i])
			g.AllCards[0] = c
			return
		}
	}
}
