package game

import "math/rand"

// Vote is the tri-state opinion a card handler returns when polled about
// a pending action. The poll stops at the first non-abstaining vote.
type Vote int

const (
	// VoteAbstain expresses no opinion; polling continues.
	VoteAbstain Vote = iota
	// VoteAllow permits the action, overriding the default policy.
	VoteAllow
	// VoteDeny forbids the action, overriding the default policy.
	VoteDeny
)

// String implements fmt.Stringer.
func (v Vote) String() string {
	switch v {
	case VoteAllow:
		return "allow"
	case VoteDeny:
		return "deny"
	default:
		return "abstain"
	}
}

// Opinion converts a plain allow/deny decision to a decisive vote. It is
// a convenience for handlers that branch on game state and otherwise
// abstain.
func Opinion(allow bool) Vote {
	if allow {
		return VoteAllow
	}
	return VoteDeny
}

// CardRef is anything the kernel can resolve to an authoritative card:
// the record itself, or a read-only view minted by the kernel.
type CardRef interface{ cardRef() }

// AreaRef resolves to an authoritative area.
type AreaRef interface{ areaRef() }

// PlayerRef resolves to an authoritative player.
type PlayerRef interface{ playerRef() }

func (c *Card) cardRef()     {}
func (a *Area) areaRef()     {}
func (p *Player) playerRef() {}

// Initiator identifies who asked the kernel to act: a player at the
// transport boundary, or a card running inside one of its own hooks.
// Exactly one of the two fields is set.
type Initiator struct {
	Player PlayerRef
	Card   CardRef
}

// ByPlayer builds a player-initiated action tag.
func ByPlayer(p PlayerRef) Initiator { return Initiator{Player: p} }

// ByCard builds a card-initiated action tag.
func ByCard(c CardRef) Initiator { return Initiator{Card: c} }

// AreaSpec is a card's proposal for a new area, handed to the kernel's
// create-area action. The kernel sanitizes it into an authoritative Area.
type AreaSpec struct {
	ID       string
	Flags    AreaFlags
	Owners   []PlayerRef
	Viewers  []PlayerRef
	Contents []CardRef
}

// Actions is the sanctioned mutation surface of the game: every state
// change a card behavior (or the transport layer) wants must go through
// one of these calls. The kernel implements it; behaviors receive it as
// the first argument of every handler and hook.
type Actions interface {
	// LookAt asks to reveal an area to a player. On success it returns
	// true and the area's contents; on denial, false and the card count.
	LookAt(player PlayerRef, area AreaRef) (bool, []*CardView, int)

	// MoveCard asks to relocate a card between areas. It reports whether
	// the move happened.
	MoveCard(init Initiator, card CardRef, from, to AreaRef) bool

	// EndTurn asks to end the player's turn, advancing the scheduler on
	// success.
	EndTurn(player PlayerRef) bool

	// ScoreCard computes the authoritative score of a single card.
	ScoreCard(card CardRef) int
	// ScoreArea computes the authoritative score of an area's contents.
	ScoreArea(area AreaRef) int
	// ScorePlayer computes the authoritative score of a player.
	ScorePlayer(player PlayerRef) int

	// GetMutableCard asks for the authoritative, writable record of a
	// card. It is the sanctioned channel for one card to permanently
	// alter another's state, and returns nil when denied.
	GetMutableCard(init Initiator, card CardRef) *Card

	// CreateNewArea asks to add a new area built from the proposal. It
	// returns a view of the created area, or nil when denied.
	CreateNewArea(init Initiator, spec AreaSpec) *AreaView

	// ChangeTurnOrder asks to replace the baseline rotation. The new
	// order must contain exactly the current number of seats.
	ChangeTurnOrder(init Initiator, order []PlayerRef) bool

	// ChangeTemporaryTurnOrder asks to append players to the one-shot
	// turn queue consumed ahead of the baseline rotation.
	ChangeTemporaryTurnOrder(init Initiator, order []PlayerRef) bool

	// AddCard asks to instantiate a new card via its registered
	// constructor and place it in an area. It returns a view of the new
	// card, or nil when denied.
	AddCard(init Initiator, ctor Constructor, to AreaRef) *CardView

	// ChangePlayLimit asks to change the number of cards the default
	// policy lets the current player play this turn.
	ChangePlayLimit(init Initiator, limit int) bool
	// ChangeDrawLimit asks to change the number of cards the default
	// policy lets the current player draw this turn.
	ChangeDrawLimit(init Initiator, limit int) bool

	// EndGame asks to mark the game over.
	EndGame(init Initiator) bool

	// SendMessage broadcasts text to the given players. Fire and forget;
	// it never blocks the pipeline.
	SendMessage(players []PlayerRef, text string)

	// GetPlayerInput prompts the player with a bounded set of choices.
	// The callback re-enters the action pipeline as a fresh, serialized
	// action once the player answers. A second outstanding prompt for
	// the same player is an error.
	GetPlayerInput(player PlayerRef, choices []string, fn func(choice string)) error

	// Rand is the randomness source behaviors must use for chance
	// effects. It is seeded alongside the deck shuffle so a fixed seed
	// replays the whole game.
	Rand() *rand.Rand
}

// InitiatorView is the read-only description of an action's initiator
// handed to polled handlers.
type InitiatorView struct {
	Player *PlayerView
	Card   *CardView
}

// Behavior is the plugin side of a card: the veto/allow/abstain handlers
// the kernel polls before each action, and the hooks it notifies after.
// Implementations embed Base and override only what they need; Init is
// the one required method.
type Behavior interface {
	// Init populates the card-author fields (Val, Name, Image, Flags,
	// Tags) on the freshly allocated record. Behaviors keep the record
	// pointer to read their own state from later hooks.
	Init(self *Card)

	HandleLook(a Actions, player *PlayerView, area *AreaView, g *GameView) Vote
	HandleMove(a Actions, init InitiatorView, card *CardView, from, to *AreaView, g *GameView) Vote
	HandleEndTurn(a Actions, player *PlayerView, g *GameView) Vote
	// HandleScoreArea may replace the area's default score entirely.
	HandleScoreArea(a Actions, area *AreaView, defaultScore int, g *GameView) (int, bool)
	// HandleScoreCard may replace the card's default score entirely.
	HandleScoreCard(a Actions, card *CardView, g *GameView) (int, bool)
	// HandleScorePlayer returns an additive delta; unlike the other score
	// polls, every card's delta is folded into the running total.
	HandleScorePlayer(a Actions, player *PlayerView, running int, g *GameView) (int, bool)
	HandleGetMutableCard(a Actions, init InitiatorView, card *CardView, g *GameView) Vote
	HandleCreateNewArea(a Actions, init InitiatorView, area *AreaView, g *GameView) Vote
	HandleChangeTurnOrder(a Actions, init InitiatorView, order []*PlayerView, g *GameView) Vote
	HandleChangeTemporaryTurnOrder(a Actions, init InitiatorView, order []*PlayerView, g *GameView) Vote
	HandleAddCard(a Actions, init InitiatorView, card *CardView, to *AreaView, g *GameView) Vote
	HandleChangePlayLimit(a Actions, init InitiatorView, limit int, g *GameView) Vote
	HandleChangeDrawLimit(a Actions, init InitiatorView, limit int, g *GameView) Vote

	OnLook(a Actions, player *PlayerView, area *AreaView, g *GameView)
	OnMove(a Actions, init InitiatorView, card *CardView, from, to *AreaView, g *GameView)
	OnEndTurn(a Actions, player *PlayerView, g *GameView)
	OnScoreArea(a Actions, area *AreaView, score int, g *GameView)
	OnScoreCard(a Actions, card *CardView, g *GameView)
	OnScorePlayer(a Actions, player *PlayerView, score int, g *GameView)
	OnGetMutableCard(a Actions, init InitiatorView, card *CardView, g *GameView)
	OnCreateNewArea(a Actions, area *AreaView, g *GameView)
	OnChangeTurnOrder(a Actions, order []*PlayerView, g *GameView)
	OnChangeTemporaryTurnOrder(a Actions, g *GameView)
	OnAddCard(a Actions, card *CardView, g *GameView)
	OnChangePlayLimit(a Actions, limit int, g *GameView)
	OnChangeDrawLimit(a Actions, limit int, g *GameView)
	OnTurnStart(a Actions, player *PlayerView, g *GameView)
	OnEndGame(a Actions, g *GameView)

	// OnPlay is a self-only ease-of-use hook, fired when this card moves
	// from a non-play area into a play area.
	OnPlay(a Actions, g *GameView, player *PlayerView)
	// OnDiscard is a self-only ease-of-use hook, fired when this card is
	// about to move into a discard area, while it is still in play.
	OnDiscard(a Actions, g *GameView, discarder InitiatorView)
}

// Base is the no-op Behavior implementation card authors embed. It
// abstains from every poll and ignores every notification. Init is
// deliberately absent so the compiler forces each card to define one.
type Base struct{}

func (Base) HandleLook(Actions, *PlayerView, *AreaView, *GameView) Vote { return VoteAbstain }
func (Base) HandleMove(Actions, InitiatorView, *CardView, *AreaView, *AreaView, *GameView) Vote {
	return VoteAbstain
}
func (Base) HandleEndTurn(Actions, *PlayerView, *GameView) Vote { return VoteAbstain }
func (Base) HandleScoreArea(Actions, *AreaView, int, *GameView) (int, bool) {
	return 0, false
}
func (Base) HandleScoreCard(Actions, *CardView, *GameView) (int, bool) { return 0, false }
func (Base) HandleScorePlayer(Actions, *PlayerView, int, *GameView) (int, bool) {
	return 0, false
}
func (Base) HandleGetMutableCard(Actions, InitiatorView, *CardView, *GameView) Vote {
	return VoteAbstain
}
func (Base) HandleCreateNewArea(Actions, InitiatorView, *AreaView, *GameView) Vote {
	return VoteAbstain
}
func (Base) HandleChangeTurnOrder(Actions, InitiatorView, []*PlayerView, *GameView) Vote {
	return VoteAbstain
}
func (Base) HandleChangeTemporaryTurnOrder(Actions, InitiatorView, []*PlayerView, *GameView) Vote {
	return VoteAbstain
}
func (Base) HandleAddCard(Actions, InitiatorView, *CardView, *AreaView, *GameView) Vote {
	return VoteAbstain
}
func (Base) HandleChangePlayLimit(Actions, InitiatorView, int, *GameView) Vote {
	return VoteAbstain
}
func (Base) HandleChangeDrawLimit(Actions, InitiatorView, int, *GameView) Vote {
	return VoteAbstain
}

func (Base) OnLook(Actions, *PlayerView, *AreaView, *GameView)                      {}
func (Base) OnMove(Actions, InitiatorView, *CardView, *AreaView, *AreaView, *GameView) {}
func (Base) OnEndTurn(Actions, *PlayerView, *GameView)                              {}
func (Base) OnScoreArea(Actions, *AreaView, int, *GameView)                         {}
func (Base) OnScoreCard(Actions, *CardView, *GameView)                              {}
func (Base) OnScorePlayer(Actions, *PlayerView, int, *GameView)                     {}
func (Base) OnGetMutableCard(Actions, InitiatorView, *CardView, *GameView)          {}
func (Base) OnCreateNewArea(Actions, *AreaView, *GameView)                          {}
func (Base) OnChangeTurnOrder(Actions, []*PlayerView, *GameView)                    {}
func (Base) OnChangeTemporaryTurnOrder(Actions, *GameView)                          {}
func (Base) OnAddCard(Actions, *CardView, *GameView)                                {}
func (Base) OnChangePlayLimit(Actions, int, *GameView)                              {}
func (Base) OnChangeDrawLimit(Actions, int, *GameView)                              {}
func (Base) OnTurnStart(Actions, *PlayerView, *GameView)                            {}
func (Base) OnEndGame(Actions, *GameView)                                           {}
func (Base) OnPlay(Actions, *GameView, *PlayerView)                                 {}
func (Base) OnDiscard(Actions, *GameView, InitiatorView)                            {}
