package cardlib

import (
	"fmt"

	"github.com/houserules/server/internal/game"
)

func init() {
	game.Register("Crayon Card", func() game.Behavior { return &crayonCard{} })
	game.Register("Ene", func() game.Behavior { return &ene{} })
}

// crayonCard asks a random player to vouch for the owner's crayon; the
// card's value flips on the answer.
type crayonCard struct {
	game.Base
	self *game.Card
}

func (b *crayonCard) Init(c *game.Card) {
	b.self = c
	c.Val = -300
	c.Name = "Crayon Card"
	c.Image = "Crayon_Card.png"
}

func (b *crayonCard) OnPlay(a game.Actions, g *game.GameView, player *game.PlayerView) {
	b.self.Val = -300
	if len(b.self.Owners) == 0 {
		return
	}
	owner := b.self.Owners[0]
	a.SendMessage([]game.PlayerRef{owner}, fmt.Sprintf("[%s] Present your crayon!", b.self.Name))

	players := g.Players()
	asked := players[a.Rand().Intn(len(players))]
	a.SendMessage([]game.PlayerRef{asked},
		fmt.Sprintf("[%s] Does %s have a crayon?", b.self.Name, owner.Username))
	a.GetPlayerInput(asked, []string{"no", "yes"}, func(answer string) {
		switch answer {
		case "yes":
			b.self.Val = 500
		case "no":
			b.self.Val = -300
		}
	})
}

// ene offers its owner, at the start of their turn, one free play out of
// another player's hand. It vouches for the move, grants visibility into
// the chosen hand, and pays the play back out of the turn budget.
type ene struct {
	game.Base
	self         *game.Card
	activePlayer *game.PlayerView
	targetPlayer *game.PlayerView
}

func (b *ene) Init(c *game.Card) {
	b.self = c
	c.Val = 0
	c.Name = "Ene"
	c.Image = "Ene.jpg"
}

func (b *ene) OnTurnStart(a game.Actions, current *game.PlayerView, g *game.GameView) {
	b.activePlayer = nil
	b.targetPlayer = nil
	if current == nil || !ownedBy(b.self, current) {
		return
	}
	b.activePlayer = current

	names := make([]string, 0, len(g.Players()))
	for _, p := range g.Players() {
		names = append(names, p.Username())
	}
	a.SendMessage([]game.PlayerRef{current}, fmt.Sprintf("[%s] Which hand would you like to play a card from?", b.self.Name))
	a.GetPlayerInput(current, names, func(choice string) {
		b.targetPlayer = g.Player(choice)
		a.SendMessage(refs(g.Players()),
			fmt.Sprintf("[%s] %s is playing a card from %s's hand!", b.self.Name, current.Username(), choice))
	})
}

func (b *ene) HandleMove(a game.Actions, init game.InitiatorView, card *game.CardView, from, to *game.AreaView, g *game.GameView) game.Vote {
	if init.Player == nil || b.activePlayer == nil || b.targetPlayer == nil {
		return game.VoteAbstain
	}
	if init.Player.Is(b.activePlayer) && from != nil && from.Is(b.targetPlayer.Hand()) {
		a.ChangePlayLimit(game.ByCard(b.self), g.MaxCardsPlayedThisTurn()-1)
		return game.VoteAllow
	}
	return game.VoteAbstain
}

func (b *ene) HandleLook(a game.Actions, player *game.PlayerView, area *game.AreaView, g *game.GameView) game.Vote {
	if player == nil || b.activePlayer == nil || b.targetPlayer == nil {
		return game.VoteAbstain
	}
	if player.Is(b.activePlayer) && area != nil && area.Is(b.targetPlayer.Hand()) {
		return game.VoteAllow
	}
	return game.VoteAbstain
}
