package kernel

import (
	"fmt"

	"github.com/houserules/server/internal/game"
	"go.uber.org/zap"
)

// GetMutableCard hands out the authoritative, writable record of a card.
// Default-allow: this is the sanctioned channel for one card to
// permanently alter another's state, and the poll is the only gate.
func (k *Kernel) GetMutableCard(init game.Initiator, cardRef game.CardRef) *game.Card {
	initPlayer, initCard, ok := k.unwrapInitiator(init)
	if !ok {
		return nil
	}
	card, ok := k.unwrapCard(cardRef)
	if !ok || card == nil {
		return nil
	}

	initView := k.initiatorView(initPlayer, initCard)
	cv := k.views.Card(card)

	vote := k.poll("get_mutable_card", func(b game.Behavior) game.Vote {
		return b.HandleGetMutableCard(k, initView, cv, k.gameView)
	})
	allowed := vote != game.VoteDeny
	k.record("get_mutable_card", allowed)
	if !allowed {
		return nil
	}

	k.notify("get_mutable_card", func(b game.Behavior) {
		b.OnGetMutableCard(k, initView, cv, k.gameView)
	})
	return card
}

// CreateNewArea adds a new area built from the proposal. The kernel
// sanitizes the proposal: owners and viewers must be players of this game,
// the id is deduplicated against usernames and existing area ids, and
// any proposed contents are properly relocated out of their old areas so
// no card ever lives in two places.
func (k *Kernel) CreateNewArea(init game.Initiator, spec game.AreaSpec) *game.AreaView {
	initPlayer, initCard, ok := k.unwrapInitiator(init)
	if !ok {
		return nil
	}

	area := &game.Area{ID: spec.ID, Flags: game.NewAreaFlags()}
	for f, on := range spec.Flags {
		if on {
			area.Flags[f] = true
		}
	}
	for _, ref := range spec.Owners {
		if p, ok := k.unwrapPlayer(ref); ok && k.game.HasPlayer(p) {
			area.Owners = append(area.Owners, p)
		}
	}
	for _, ref := range spec.Viewers {
		if p, ok := k.unwrapPlayer(ref); ok && k.game.HasPlayer(p) {
			area.Viewers = append(area.Viewers, p)
		}
	}
	var contents []*game.Card
	for _, ref := range spec.Contents {
		if c, ok := k.unwrapCard(ref); ok && c != nil {
			contents = append(contents, c)
		}
	}
	area.ID = k.dedupeAreaID(area.ID)

	initView := k.initiatorView(initPlayer, initCard)
	av := k.views.Area(area)

	vote := k.poll("create_new_area", func(b game.Behavior) game.Vote {
		return b.HandleCreateNewArea(k, initView, av, k.gameView)
	})
	allowed := vote != game.VoteDeny
	k.record("create_new_area", allowed)
	if !allowed {
		return nil
	}

	k.game.AllAreas[area.ID] = area
	for _, c := range contents {
		if c.Area != nil && c.Area != area {
			k.relocate(c, c.Area, area)
		}
	}
	k.log.Info("area created", zap.String("area", area.ID))

	k.notify("create_new_area", func(b game.Behavior) {
		b.OnCreateNewArea(k, av, k.gameView)
	})
	return av
}

// dedupeAreaID appends a counter until the id collides with neither a
// username nor an existing area id.
func (k *Kernel) dedupeAreaID(id string) string {
	taken := func(candidate string) bool {
		if _, clash := k.game.AllAreas[candidate]; clash {
			return true
		}
		_, clash := k.game.Players[candidate]
		return clash
	}
	if !taken(id) {
		return id
	}
	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s%d", id, n)
		if !taken(candidate) {
			return candidate
		}
	}
}

// ChangeTurnOrder replaces the baseline rotation. Unknown players and
// duplicates are dropped during normalization; even after an allowing
// poll the new order is rejected unless it seats exactly the current
// number of players.
func (k *Kernel) ChangeTurnOrder(init game.Initiator, orderRefs []game.PlayerRef) bool {
	initPlayer, initCard, ok := k.unwrapInitiator(init)
	if !ok {
		return false
	}

	order := k.normalizeOrder(orderRefs, true)

	initView := k.initiatorView(initPlayer, initCard)
	orderViews := k.views.PlayerViews(order)

	vote := k.poll("change_turnorder", func(b game.Behavior) game.Vote {
		return b.HandleChangeTurnOrder(k, initView, orderViews, k.gameView)
	})
	allowed := vote != game.VoteDeny
	if allowed && len(order) != len(k.game.TurnOrder) {
		allowed = false
	}
	k.record("change_turnorder", allowed)
	if !allowed {
		return false
	}

	k.game.TurnOrder = order
	k.notify("change_turnorder", func(b game.Behavior) {
		b.OnChangeTurnOrder(k, orderViews, k.gameView)
	})
	return true
}

// ChangeTemporaryTurnOrder appends players to the one-shot turn queue,
// consumed FIFO ahead of the baseline rotation.
func (k *Kernel) ChangeTemporaryTurnOrder(init game.Initiator, orderRefs []game.PlayerRef) bool {
	initPlayer, initCard, ok := k.unwrapInitiator(init)
	if !ok {
		return false
	}

	order := k.normalizeOrder(orderRefs, false)

	initView := k.initiatorView(initPlayer, initCard)
	orderViews := k.views.PlayerViews(order)

	vote := k.poll("change_temporary_turnorder", func(b game.Behavior) game.Vote {
		return b.HandleChangeTemporaryTurnOrder(k, initView, orderViews, k.gameView)
	})
	allowed := vote != game.VoteDeny
	k.record("change_temporary_turnorder", allowed)
	if !allowed {
		return false
	}

	k.game.TurnQueue = append(k.game.TurnQueue, order...)
	k.notify("change_temporary_turnorder", func(b game.Behavior) {
		b.OnChangeTemporaryTurnOrder(k, k.gameView)
	})
	return true
}

// normalizeOrder resolves references to players of this game; when
// dedupe is set, repeated seats are dropped too.
func (k *Kernel) normalizeOrder(refs []game.PlayerRef, dedupe bool) []*game.Player {
	order := make([]*game.Player, 0, len(refs))
	for _, ref := range refs {
		p, ok := k.unwrapPlayer(ref)
		if !ok || !k.game.HasPlayer(p) {
			continue
		}
		if dedupe {
			seen := false
			for _, in := range order {
				if in == p {
					seen = true
					break
				}
			}
			if seen {
				continue
			}
		}
		order = append(order, p)
	}
	return order
}

// AddCard instantiates a new card from its constructor and places it in
// the destination area. The newcomer joins AllCards at the back, with
// the lowest dispatch priority, and the destination's bottom.
func (k *Kernel) AddCard(init game.Initiator, ctor game.Constructor, toRef game.AreaRef) *game.CardView {
	initPlayer, initCard, ok := k.unwrapInitiator(init)
	if !ok || ctor == nil {
		return nil
	}
	to, ok := k.unwrapArea(toRef)
	if !ok || to == nil {
		return nil
	}

	newCard := game.NewCard(ctor())
	newCard.Owners = to.Owners
	newCard.Area = to

	initView := k.initiatorView(initPlayer, initCard)
	cv, tv := k.views.Card(newCard), k.views.Area(to)

	vote := k.poll("add_card", func(b game.Behavior) game.Vote {
		return b.HandleAddCard(k, initView, cv, tv, k.gameView)
	})
	allowed := vote != game.VoteDeny
	k.record("add_card", allowed)
	if !allowed {
		return nil
	}

	to.Contents = append(to.Contents, newCard)
	k.game.AllCards = append(k.game.AllCards, newCard)
	k.log.Info("card added", zap.String("card", newCard.Name), zap.String("area", to.ID))

	k.notify("add_card", func(b game.Behavior) { b.OnAddCard(k, cv, k.gameView) })
	return cv
}

// ChangePlayLimit rewrites this turn's play budget. Only the default
// move policy consults the budget; cards can still allow more moves.
func (k *Kernel) ChangePlayLimit(init game.Initiator, limit int) bool {
	initPlayer, initCard, ok := k.unwrapInitiator(init)
	if !ok {
		return false
	}
	initView := k.initiatorView(initPlayer, initCard)

	vote := k.poll("change_play_limit", func(b game.Behavior) game.Vote {
		return b.HandleChangePlayLimit(k, initView, limit, k.gameView)
	})
	allowed := vote != game.VoteDeny
	k.record("change_play_limit", allowed)
	if !allowed {
		return false
	}

	k.game.MaxCardsPlayedThisTurn = limit
	k.notify("change_play_limit", func(b game.Behavior) {
		b.OnChangePlayLimit(k, limit, k.gameView)
	})
	return true
}

// ChangeDrawLimit rewrites this turn's draw budget.
func (k *Kernel) ChangeDrawLimit(init game.Initiator, limit int) bool {
	initPlayer, initCard, ok := k.unwrapInitiator(init)
	if !ok {
		return false
	}
	initView := k.initiatorView(initPlayer, initCard)

	vote := k.poll("change_draw_limit", func(b game.Behavior) game.Vote {
		return b.HandleChangeDrawLimit(k, initView, limit, k.gameView)
	})
	allowed := vote != game.VoteDeny
	k.record("change_draw_limit", allowed)
	if !allowed {
		return false
	}

	k.game.MaxCardsDrawnThisTurn = limit
	k.notify("change_draw_limit", func(b game.Behavior) {
		b.OnChangeDrawLimit(k, limit, k.gameView)
	})
	return true
}
