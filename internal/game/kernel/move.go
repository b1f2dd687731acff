package kernel

import (
	"github.com/houserules/server/internal/game"
	"go.uber.org/zap"
)

// MoveCard relocates a card between areas, subject to the poll and the
// default move policy. It fails closed, without polling, when the card
// is not in the stated source or when source and destination coincide.
func (k *Kernel) MoveCard(init game.Initiator, cardRef game.CardRef, fromRef, toRef game.AreaRef) bool {
	initPlayer, initCard, ok := k.unwrapInitiator(init)
	if !ok {
		return false
	}
	card, ok := k.unwrapCard(cardRef)
	if !ok || card == nil {
		return false
	}
	from, ok := k.unwrapArea(fromRef)
	if !ok || from == nil {
		return false
	}
	to, ok := k.unwrapArea(toRef)
	if !ok || to == nil {
		return false
	}

	if !from.Contains(card) || from == to {
		return false
	}

	initView := k.initiatorView(initPlayer, initCard)
	cardV, fromV, toV := k.views.Card(card), k.views.Area(from), k.views.Area(to)

	vote := k.poll("move_card", func(b game.Behavior) game.Vote {
		return b.HandleMove(k, initView, cardV, fromV, toV, k.gameView)
	})
	byDefault := vote == game.VoteAbstain
	allowed := vote == game.VoteAllow
	if byDefault {
		allowed = k.defaultMovePolicy(initPlayer, initCard, card, from, to)
	}
	k.record("move_card", allowed)
	if !allowed {
		return false
	}

	// The discard hook fires while the card is still notionally in play.
	if to.Flags.Has(game.FlagDiscardArea) && !from.Flags.Has(game.FlagDiscardArea) {
		k.notifyCard("discard", card, func(b game.Behavior) {
			b.OnDiscard(k, k.gameView, initView)
		})
	}

	k.relocate(card, from, to)
	k.game.PromoteCard(card)

	// Budget accounting covers only genuinely default-handled,
	// player-initiated transitions; card-initiated or poll-overridden
	// moves never count.
	if byDefault && initPlayer != nil {
		if from.Flags.Has(game.FlagHandArea) && to.Flags.Has(game.FlagPlayArea) &&
			from.HasOwner(initPlayer) && initPlayer == k.game.CurrentPlayer &&
			!card.Flags.Has(game.FlagPlayAnyTime) {
			k.game.CardsPlayedThisTurn++
		}
		if from.Flags.Has(game.FlagDrawArea) && to.Flags.Has(game.FlagHandArea) &&
			to.HasOwner(initPlayer) && initPlayer == k.game.CurrentPlayer {
			k.game.CardsDrawnThisTurn++
		}
	}

	if to.Flags.Has(game.FlagPlayArea) && !from.Flags.Has(game.FlagPlayArea) {
		card.Player = k.moverOf(initPlayer, initCard)
		k.notifyCard("play", card, func(b game.Behavior) {
			b.OnPlay(k, k.gameView, k.views.Player(card.Player))
		})
	}

	k.log.Debug("card moved",
		zap.String("card", card.Name),
		zap.String("from", from.ID),
		zap.String("to", to.ID),
	)

	k.notify("move_card", func(b game.Behavior) {
		b.OnMove(k, initView, cardV, fromV, toV, k.gameView)
	})
	return true
}

// relocate performs the minimal physical move: remove from the source,
// front-insert into the destination, and retarget ownership.
func (k *Kernel) relocate(card *game.Card, from, to *game.Area) {
	for i, in := range from.Contents {
		if in == card {
			from.Contents = append(from.Contents[:i], from.Contents[i+1:]...)
			break
		}
	}
	to.Contents = append([]*game.Card{card}, to.Contents...)
	card.Owners = to.Owners
	card.Area = to
}

// moverOf attributes a play to a player. Card-initiated plays fall back
// to whoever played the initiating card, when known.
func (k *Kernel) moverOf(initPlayer *game.Player, initCard *game.Card) *game.Player {
	if initPlayer != nil {
		return initPlayer
	}
	if initCard != nil {
		return initCard.Player
	}
	return nil
}

// defaultMovePolicy applies when every polled card abstains.
//
// Player-initiated moves are constrained to hand-to-play plays and
// draw-to-hand draws under the per-turn budgets. Card-initiated moves
// default to allowed except where destination flags forbid them.
func (k *Kernel) defaultMovePolicy(initPlayer *game.Player, initCard *game.Card, card *game.Card, from, to *game.Area) bool {
	g := k.game

	if initPlayer == nil {
		// Card-initiated. Destination flags still bind when the move is
		// a play; everything else is allowed.
		if !to.Flags.Has(game.FlagPlayArea) {
			return true
		}
		if card.Flags.Has(game.FlagOnlyPlayToCenter) && to != g.Center {
			return false
		}
		if card.Flags.Has(game.FlagNoPlayToCenter) && to == g.Center {
			return false
		}
		if mover := k.moverOf(nil, initCard); mover != nil {
			if card.Flags.Has(game.FlagOnlyPlayToSelf) && to != mover.Area {
				return false
			}
			if card.Flags.Has(game.FlagNoPlayToSelf) && to == mover.Area {
				return false
			}
		}
		return true
	}

	if from.Flags.Has(game.FlagHandArea) && to.Flags.Has(game.FlagPlayArea) &&
		from.HasOwner(initPlayer) {
		if card.Flags.Has(game.FlagOnlyPlayToSelf) && to != initPlayer.Area {
			return false
		}
		if card.Flags.Has(game.FlagNoPlayToSelf) && to == initPlayer.Area {
			return false
		}
		if card.Flags.Has(game.FlagOnlyPlayToCenter) && to != g.Center {
			return false
		}
		if card.Flags.Has(game.FlagNoPlayToCenter) && to == g.Center {
			return false
		}
		if card.Flags.Has(game.FlagPlayAnyTime) {
			return true
		}
		if initPlayer == g.CurrentPlayer &&
			g.CardsPlayedThisTurn < g.MaxCardsPlayedThisTurn &&
			g.CardsPlayedThisTurn+g.CardsDrawnThisTurn <
				g.MaxCardsDrawnThisTurn+g.MaxCardsPlayedThisTurn {
			return true
		}
	}

	if from.Flags.Has(game.FlagDrawArea) && to.Flags.Has(game.FlagHandArea) &&
		to.HasOwner(initPlayer) && initPlayer == g.CurrentPlayer {
		if g.CardsDrawnThisTurn < g.MaxCardsDrawnThisTurn {
			return true
		}
		// One grace draw borrowed from an unused play budget.
		if g.CardsDrawnThisTurn < g.MaxCardsDrawnThisTurn+1 &&
			g.CardsPlayedThisTurn < g.MaxCardsPlayedThisTurn {
			return true
		}
	}

	return false
}

// LookAt reveals an area to a player when the poll or the default
// visibility policy allows it. On denial only the card count leaks.
func (k *Kernel) LookAt(playerRef game.PlayerRef, areaRef game.AreaRef) (bool, []*game.CardView, int) {
	player, ok := k.unwrapPlayer(playerRef)
	if !ok || player == nil {
		return false, nil, 0
	}
	area, ok := k.unwrapArea(areaRef)
	if !ok || area == nil {
		return false, nil, 0
	}

	pv, av := k.views.Player(player), k.views.Area(area)

	vote := k.poll("look_at", func(b game.Behavior) game.Vote {
		return b.HandleLook(k, pv, av, k.gameView)
	})
	allowed := vote == game.VoteAllow
	if vote == game.VoteAbstain {
		allowed = defaultLookPolicy(player, area)
	}
	k.record("look_at", allowed)
	if !allowed {
		return false, nil, len(area.Contents)
	}

	k.notify("look_at", func(b game.Behavior) { b.OnLook(k, pv, av, k.gameView) })
	return true, av.Contents(), len(area.Contents)
}

// defaultLookPolicy: play areas are public, hands are visible to their
// viewers, draw and discard piles reveal nothing but a count.
func defaultLookPolicy(player *game.Player, area *game.Area) bool {
	switch {
	case area.Flags.Has(game.FlagPlayArea):
		return true
	case area.Flags.Has(game.FlagHandArea):
		return area.HasViewer(player)
	case area.Flags.Has(game.FlagDiscardArea), area.Flags.Has(game.FlagDrawArea):
		return false
	default:
		return true
	}
}
