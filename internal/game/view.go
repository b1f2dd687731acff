package game

import (
	"errors"
	"sort"

	"github.com/google/uuid"
)

// ErrCapabilityViolation is reported when game state is touched outside
// a sanctioned kernel call, e.g. when a view minted by one factory is
// unwrapped with another factory's key.
var ErrCapabilityViolation = errors.New("game state touched without kernel call")

// ViewFactory mints read-only views over the data model and is the only
// thing able to unwrap them back to the authoritative objects. The
// kernel holds the game's factory privately; behaviors receive views but
// never the factory, so the unwrap escape hatch is structurally out of
// their reach.
type ViewFactory struct {
	_ byte // force a unique allocation so factory identity is pointer identity
}

// NewViewFactory creates a fresh unwrap key.
func NewViewFactory() *ViewFactory { return new(ViewFactory) }

// Card wraps a card record in a read-only view.
func (f *ViewFactory) Card(c *Card) *CardView {
	if c == nil {
		return nil
	}
	return &CardView{f: f, c: c}
}

// Area wraps an area in a read-only view.
func (f *ViewFactory) Area(a *Area) *AreaView {
	if a == nil {
		return nil
	}
	return &AreaView{f: f, a: a}
}

// Player wraps a player in a read-only view.
func (f *ViewFactory) Player(p *Player) *PlayerView {
	if p == nil {
		return nil
	}
	return &PlayerView{f: f, p: p}
}

// Game wraps the root aggregate in a read-only view.
func (f *ViewFactory) Game(g *Game) *GameView {
	if g == nil {
		return nil
	}
	return &GameView{f: f, g: g}
}

// UnwrapCard resolves a card reference to the authoritative record.
// Views minted by a different factory are rejected.
func (f *ViewFactory) UnwrapCard(ref CardRef) (*Card, error) {
	switch r := ref.(type) {
	case nil:
		return nil, nil
	case *Card:
		return r, nil
	case *CardView:
		if r == nil {
			return nil, nil
		}
		if r.f != f {
			return nil, ErrCapabilityViolation
		}
		return r.c, nil
	default:
		return nil, ErrCapabilityViolation
	}
}

// UnwrapArea resolves an area reference to the authoritative record.
func (f *ViewFactory) UnwrapArea(ref AreaRef) (*Area, error) {
	switch r := ref.(type) {
	case nil:
		return nil, nil
	case *Area:
		return r, nil
	case *AreaView:
		if r == nil {
			return nil, nil
		}
		if r.f != f {
			return nil, ErrCapabilityViolation
		}
		return r.a, nil
	default:
		return nil, ErrCapabilityViolation
	}
}

// UnwrapPlayer resolves a player reference to the authoritative record.
func (f *ViewFactory) UnwrapPlayer(ref PlayerRef) (*Player, error) {
	switch r := ref.(type) {
	case nil:
		return nil, nil
	case *Player:
		return r, nil
	case *PlayerView:
		if r == nil {
			return nil, nil
		}
		if r.f != f {
			return nil, ErrCapabilityViolation
		}
		return r.p, nil
	default:
		return nil, ErrCapabilityViolation
	}
}

// CardView is a read-only window onto a card. Every accessor returns
// either a copy or a further view, so nested structures stay read-only
// transitively.
type CardView struct {
	f *ViewFactory
	c *Card
}

func (v *CardView) cardRef() {}

// ID returns the card's process-unique identity.
func (v *CardView) ID() uuid.UUID { return v.c.ID }

// Val returns the card's point value.
func (v *CardView) Val() int { return v.c.Val }

// Name returns the card's display name.
func (v *CardView) Name() string { return v.c.Name }

// Image returns the card's asset reference, empty when absent.
func (v *CardView) Image() string { return v.c.Image }

// HasFlag reports whether the card carries the behavioral modifier.
func (v *CardView) HasFlag(f CardFlag) bool { return v.c.Flags.Has(f) }

// Flags returns a copy of the card's flag set.
func (v *CardView) Flags() []CardFlag {
	out := make([]CardFlag, 0, len(v.c.Flags))
	for f, on := range v.c.Flags {
		if on {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// HasTag reports whether the card carries the tag.
func (v *CardView) HasTag(tag string) bool { return v.c.Tags.Has(tag) }

// Tags returns a sorted copy of the card's tag set.
func (v *CardView) Tags() []string {
	out := make([]string, 0, len(v.c.Tags))
	for t, on := range v.c.Tags {
		if on {
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}

// Owners returns views of the owners of the area this card is in.
func (v *CardView) Owners() []*PlayerView { return v.f.players(v.c.Owners) }

// Player returns a view of whoever last played this card, or nil.
func (v *CardView) Player() *PlayerView { return v.f.Player(v.c.Player) }

// Area returns a view of the area this card resides in.
func (v *CardView) Area() *AreaView { return v.f.Area(v.c.Area) }

// Is reports whether the reference denotes this same card instance.
func (v *CardView) Is(ref CardRef) bool {
	switch r := ref.(type) {
	case *Card:
		return r == v.c
	case *CardView:
		return r != nil && r.c == v.c
	default:
		return false
	}
}

// AreaView is a read-only window onto an area.
type AreaView struct {
	f *ViewFactory
	a *Area
}

func (v *AreaView) areaRef() {}

// ID returns the area's unique human-readable token.
func (v *AreaView) ID() string { return v.a.ID }

// HasFlag reports whether the area carries the role.
func (v *AreaView) HasFlag(f AreaFlag) bool { return v.a.Flags.Has(f) }

// Owners returns views of the players with play rights here.
func (v *AreaView) Owners() []*PlayerView { return v.f.players(v.a.Owners) }

// Viewers returns views of the players with visibility rights here.
func (v *AreaView) Viewers() []*PlayerView { return v.f.players(v.a.Viewers) }

// Contents returns views of the cards in this area, most recently added
// first. The slice is a fresh copy on every call.
func (v *AreaView) Contents() []*CardView {
	out := make([]*CardView, len(v.a.Contents))
	for i, c := range v.a.Contents {
		out[i] = v.f.Card(c)
	}
	return out
}

// NumCards returns how many cards the area holds.
func (v *AreaView) NumCards() int { return len(v.a.Contents) }

// HasOwner reports whether the player has play rights here.
func (v *AreaView) HasOwner(ref PlayerRef) bool {
	p, err := v.f.UnwrapPlayer(ref)
	if err != nil || p == nil {
		return false
	}
	return v.a.HasOwner(p)
}

// Is reports whether the reference denotes this same area.
func (v *AreaView) Is(ref AreaRef) bool {
	switch r := ref.(type) {
	case *Area:
		return r == v.a
	case *AreaView:
		return r != nil && r.a == v.a
	default:
		return false
	}
}

// PlayerView is a read-only window onto a player.
type PlayerView struct {
	f *ViewFactory
	p *Player
}

func (v *PlayerView) playerRef() {}

// Username returns the player's unique name.
func (v *PlayerView) Username() string { return v.p.Username }

// Hand returns a view of the player's hand area.
func (v *PlayerView) Hand() *AreaView { return v.f.Area(v.p.Hand) }

// Area returns a view of the player's personal play area.
func (v *PlayerView) Area() *AreaView { return v.f.Area(v.p.Area) }

// Is reports whether the reference denotes this same player.
func (v *PlayerView) Is(ref PlayerRef) bool {
	switch r := ref.(type) {
	case *Player:
		return r == v.p
	case *PlayerView:
		return r != nil && r.p == v.p
	default:
		return false
	}
}

// GameView is a read-only window onto the whole game state, handed to
// every polled handler and notified hook.
type GameView struct {
	f *ViewFactory
	g *Game
}

// Player returns a view of the named player, or nil.
func (v *GameView) Player(username string) *PlayerView {
	return v.f.Player(v.g.Players[username])
}

// Players returns views of every player, sorted by username for
// deterministic iteration.
func (v *GameView) Players() []*PlayerView {
	names := make([]string, 0, len(v.g.Players))
	for name := range v.g.Players {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]*PlayerView, len(names))
	for i, name := range names {
		out[i] = v.f.Player(v.g.Players[name])
	}
	return out
}

// Center returns a view of the shared center area.
func (v *GameView) Center() *AreaView { return v.f.Area(v.g.Center) }

// DrawPile returns a view of the draw pile.
func (v *GameView) DrawPile() *AreaView { return v.f.Area(v.g.Draw) }

// DiscardPile returns a view of the discard pile.
func (v *GameView) DiscardPile() *AreaView { return v.f.Area(v.g.Discard) }

// Area returns a view of the area with the given id, or nil.
func (v *GameView) Area(id string) *AreaView { return v.f.Area(v.g.AllAreas[id]) }

// Areas returns views of every area, sorted by id.
func (v *GameView) Areas() []*AreaView {
	ids := make([]string, 0, len(v.g.AllAreas))
	for id := range v.g.AllAreas {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*AreaView, len(ids))
	for i, id := range ids {
		out[i] = v.f.Area(v.g.AllAreas[id])
	}
	return out
}

// AllCards returns views of every card in dispatch order.
func (v *GameView) AllCards() []*CardView {
	out := make([]*CardView, len(v.g.AllCards))
	for i, c := range v.g.AllCards {
		out[i] = v.f.Card(c)
	}
	return out
}

// TurnOrder returns views of the baseline rotation.
func (v *GameView) TurnOrder() []*PlayerView { return v.f.players(v.g.TurnOrder) }

// TurnQueue returns views of the pending one-shot turn overrides.
func (v *GameView) TurnQueue() []*PlayerView { return v.f.players(v.g.TurnQueue) }

// TurnNum returns the current turn number.
func (v *GameView) TurnNum() int { return v.g.TurnNum }

// CurrentPlayer returns a view of the player whose turn it is.
func (v *GameView) CurrentPlayer() *PlayerView { return v.f.Player(v.g.CurrentPlayer) }

// TurnOrderIndex returns the rotation cursor into TurnOrder.
func (v *GameView) TurnOrderIndex() int { return v.g.TurnOrderIndex }

// MaxCardsPlayedThisTurn returns the current play budget.
func (v *GameView) MaxCardsPlayedThisTurn() int { return v.g.MaxCardsPlayedThisTurn }

// CardsPlayedThisTurn returns how many budgeted plays happened this turn.
func (v *GameView) CardsPlayedThisTurn() int { return v.g.CardsPlayedThisTurn }

// MaxCardsDrawnThisTurn returns the current draw budget.
func (v *GameView) MaxCardsDrawnThisTurn() int { return v.g.MaxCardsDrawnThisTurn }

// CardsDrawnThisTurn returns how many budgeted draws happened this turn.
func (v *GameView) CardsDrawnThisTurn() int { return v.g.CardsDrawnThisTurn }

// Over reports whether the game has been ended.
func (v *GameView) Over() bool { return v.g.Over }

func (f *ViewFactory) players(ps []*Player) []*PlayerView {
	out := make([]*PlayerView, len(ps))
	for i, p := range ps {
		out[i] = f.Player(p)
	}
	return out
}

// PlayerViews mints views for a slice of players, preserving order.
func (f *ViewFactory) PlayerViews(ps []*Player) []*PlayerView {
	return f.players(ps)
}
