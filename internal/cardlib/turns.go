package cardlib

import (
	"fmt"

	"github.com/houserules/server/internal/game"
)

func init() {
	game.Register("Conical Pendulum", func() game.Behavior { return &conicalPendulum{} })
	game.Register("Second Wind", func() game.Behavior { return &secondWind{} })
	game.Register("Coup d'Etat", func() game.Behavior { return &coupDEtat{} })
}

// conicalPendulum swings to the next player's play area at the start of
// every turn. It cannot be played to the center.
type conicalPendulum struct {
	game.Base
	self   *game.Card
	active bool
}

func (b *conicalPendulum) Init(c *game.Card) {
	b.self = c
	c.Val = 200
	c.Name = "Conical Pendulum"
	c.Image = "Conical_Pendulum.png"
	c.Flags = game.NewCardFlags(game.FlagNoPlayToCenter)
}

func (b *conicalPendulum) OnTurnStart(a game.Actions, player *game.PlayerView, g *game.GameView) {
	if b.self.Area == nil || !b.self.Area.Flags.Has(game.FlagPlayArea) || len(b.self.Area.Owners) == 0 {
		return
	}
	players := g.Players()
	if len(players) < 2 {
		return
	}
	holder := b.self.Area.Owners[0]
	next := -1
	for i, p := range players {
		if p.Is(holder) {
			next = (i + 1) % len(players)
			break
		}
	}
	if next < 0 {
		return
	}
	b.active = true
	a.MoveCard(game.ByPlayer(holder), b.self, b.self.Area, players[next].Area())
	b.active = false
}

func (b *conicalPendulum) HandleMove(a game.Actions, init game.InitiatorView, card *game.CardView, from, to *game.AreaView, g *game.GameView) game.Vote {
	if b.active && card.Is(b.self) {
		return game.VoteAllow
	}
	return game.VoteAbstain
}

// secondWind queues its player up for an immediate extra turn.
type secondWind struct {
	game.Base
	self *game.Card
}

func (b *secondWind) Init(c *game.Card) {
	b.self = c
	c.Val = 150
	c.Name = "Second Wind"
	c.Image = "Second_Wind.png"
}

func (b *secondWind) OnPlay(a game.Actions, g *game.GameView, player *game.PlayerView) {
	if player == nil {
		return
	}
	if a.ChangeTemporaryTurnOrder(game.ByCard(b.self), []game.PlayerRef{player}) {
		a.SendMessage(refs(g.Players()),
			fmt.Sprintf("[%s] %s will take an extra turn!", b.self.Name, player.Username()))
	}
}

// coupDEtat reverses the baseline turn rotation.
type coupDEtat struct {
	game.Base
	self *game.Card
}

func (b *coupDEtat) Init(c *game.Card) {
	b.self = c
	c.Val = -250
	c.Name = "Coup d'Etat"
	c.Image = "Coup_dEtat.png"
}

func (b *coupDEtat) OnPlay(a game.Actions, g *game.GameView, player *game.PlayerView) {
	order := g.TurnOrder()
	reversed := make([]game.PlayerRef, 0, len(order))
	for i := len(order) - 1; i >= 0; i-- {
		reversed = append(reversed, order[i])
	}
	if a.ChangeTurnOrder(game.ByCard(b.self), reversed) {
		a.SendMessage(refs(g.Players()), fmt.Sprintf("[%s] The turn order is reversed!", b.self.Name))
	}
}
