package kernel

import (
	"github.com/houserules/server/internal/game"
	"go.uber.org/zap"
)

// EndTurn ends the player's turn when the poll or the default policy
// allows it. On success the scheduler advances and the new current
// player's turn-start notifications fire.
func (k *Kernel) EndTurn(playerRef game.PlayerRef) bool {
	player, ok := k.unwrapPlayer(playerRef)
	if !ok || player == nil {
		return false
	}

	pv := k.views.Player(player)
	vote := k.poll("end_turn", func(b game.Behavior) game.Vote {
		return b.HandleEndTurn(k, pv, k.gameView)
	})
	allowed := vote == game.VoteAllow
	if vote == game.VoteAbstain {
		allowed = k.defaultEndTurnPolicy(player)
	}
	k.record("end_turn", allowed)
	if !allowed {
		return false
	}

	k.notify("end_turn", func(b game.Behavior) { b.OnEndTurn(k, pv, k.gameView) })

	next := k.scheduler.AdvanceTurn()
	k.log.Info("turn advanced",
		zap.Int("turn", k.game.TurnNum),
		zap.String("current_player", next.Username),
	)
	k.NotifyTurnStart()
	return true
}

// defaultEndTurnPolicy: the current player may end the turn once the
// combined play+draw budget is spent, or once they have over-drawn by
// the single grace draw with an empty hand (they drew out the deck's
// worth of plays).
func (k *Kernel) defaultEndTurnPolicy(player *game.Player) bool {
	g := k.game
	if player != g.CurrentPlayer {
		return false
	}
	if g.CardsDrawnThisTurn+g.CardsPlayedThisTurn >=
		g.MaxCardsDrawnThisTurn+g.MaxCardsPlayedThisTurn {
		return true
	}
	if g.CardsDrawnThisTurn >= g.MaxCardsDrawnThisTurn+1 &&
		player.Hand != nil && len(player.Hand.Contents) == 0 {
		return true
	}
	return false
}
