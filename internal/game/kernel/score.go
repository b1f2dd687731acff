package kernel

import (
	"sort"

	"github.com/houserules/server/internal/game"
)

// ScoreCard computes a card's authoritative score: the first decisive
// override wins, otherwise the card's printed value.
func (k *Kernel) ScoreCard(cardRef game.CardRef) int {
	card, ok := k.unwrapCard(cardRef)
	if !ok || card == nil {
		return 0
	}

	cv := k.views.Card(card)
	score, overridden := k.pollScore("score_card", func(b game.Behavior) (int, bool) {
		return b.HandleScoreCard(k, cv, k.gameView)
	})
	if !overridden {
		score = card.Val
	}

	k.notify("score_card", func(b game.Behavior) { b.OnScoreCard(k, cv, k.gameView) })
	return score
}

// ScoreArea computes an area's authoritative score. The structural
// default, the sum of ScoreCard over the contents, is offered to the
// poll, and the first decisive override replaces it entirely.
func (k *Kernel) ScoreArea(areaRef game.AreaRef) int {
	area, ok := k.unwrapArea(areaRef)
	if !ok || area == nil {
		return 0
	}

	defaultScore := 0
	for _, c := range append([]*game.Card(nil), area.Contents...) {
		defaultScore += k.ScoreCard(c)
	}

	av := k.views.Area(area)
	score, overridden := k.pollScore("score_area", func(b game.Behavior) (int, bool) {
		return b.HandleScoreArea(k, av, defaultScore, k.gameView)
	})
	if !overridden {
		score = defaultScore
	}

	k.notify("score_area", func(b game.Behavior) { b.OnScoreArea(k, av, score, k.gameView) })
	return score
}

// ScorePlayer computes a player's authoritative score: the sum of every
// play area the player owns, folded with each eligible card's delta.
// Unlike the other score polls this is deliberately a fold, not a
// first-wins poll: every card's opinion is summed in.
func (k *Kernel) ScorePlayer(playerRef game.PlayerRef) int {
	player, ok := k.unwrapPlayer(playerRef)
	if !ok || player == nil {
		return 0
	}

	ids := make([]string, 0, len(k.game.AllAreas))
	for id := range k.game.AllAreas {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	score := 0
	for _, id := range ids {
		area := k.game.AllAreas[id]
		if area.Flags.Has(game.FlagPlayArea) && area.HasOwner(player) {
			score += k.ScoreArea(area)
		}
	}

	pv := k.views.Player(player)
	for _, c := range k.cardsSnapshot() {
		if !k.eligible(c) {
			continue
		}
		running := score
		if delta, ok := k.safeScore("score_player", c, func(b game.Behavior) (int, bool) {
			return b.HandleScorePlayer(k, pv, running, k.gameView)
		}); ok {
			score += delta
		}
	}

	k.notify("score_player", func(b game.Behavior) { b.OnScorePlayer(k, pv, score, k.gameView) })
	return score
}
