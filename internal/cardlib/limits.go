package cardlib

import (
	"fmt"

	"github.com/houserules/server/internal/game"
)

func init() {
	game.Register("Development Card", func() game.Behavior { return &developmentCard{} })
	game.Register("Unpossessed Santa Hat", func() game.Behavior { return &santaHat{} })
	game.Register("Bad Reception", func() game.Behavior { return &badReception{} })
}

// developmentCard widens this turn's budgets when played.
type developmentCard struct {
	game.Base
	self *game.Card
}

func (b *developmentCard) Init(c *game.Card) {
	b.self = c
	c.Val = 0
	c.Name = "Development Card"
	c.Image = "Development_Card.png"
}

func (b *developmentCard) OnPlay(a game.Actions, g *game.GameView, player *game.PlayerView) {
	a.ChangePlayLimit(game.ByCard(b.self), g.MaxCardsPlayedThisTurn()+1)
	a.ChangeDrawLimit(game.ByCard(b.self), g.MaxCardsDrawnThisTurn()+2)
}

// santaHat grants a bonus draw and immediately takes it for the player.
type santaHat struct {
	game.Base
	self *game.Card
}

func (b *santaHat) Init(c *game.Card) {
	b.self = c
	c.Val = 100
	c.Name = "Unpossessed Santa Hat"
	c.Image = "UnpossessedSantaHat.png"
}

func (b *santaHat) OnPlay(a game.Actions, g *game.GameView, player *game.PlayerView) {
	if !a.ChangeDrawLimit(game.ByCard(b.self), g.MaxCardsDrawnThisTurn()+1) {
		return
	}
	draw := g.DrawPile()
	if draw == nil || draw.NumCards() == 0 {
		return
	}
	a.MoveCard(game.ByPlayer(player), draw.Contents()[0], draw, player.Hand())
}

// badReception costs each of its owners a draw on their next two turns.
type badReception struct {
	game.Base
	self      *game.Card
	turnsLeft map[string]int
	active    bool
}

func (b *badReception) Init(c *game.Card) {
	b.self = c
	c.Val = -100
	c.Name = "Bad Reception"
	c.Image = "BadReception.png"
	c.Tags = game.NewTags("Technology")
	b.turnsLeft = make(map[string]int)
}

func (b *badReception) OnPlay(a game.Actions, g *game.GameView, player *game.PlayerView) {
	b.turnsLeft = make(map[string]int)
	for _, o := range b.self.Owners {
		b.turnsLeft[o.Username] = 2
	}
	b.active = true
}

func (b *badReception) OnTurnStart(a game.Actions, player *game.PlayerView, g *game.GameView) {
	if !b.active || player == nil {
		return
	}
	left, tracked := b.turnsLeft[player.Username()]
	if !tracked || left <= 0 {
		return
	}
	b.turnsLeft[player.Username()]--
	max := g.MaxCardsDrawnThisTurn()
	if max > 0 && a.ChangeDrawLimit(game.ByCard(b.self), max-1) {
		a.SendMessage([]game.PlayerRef{player},
			fmt.Sprintf("%s prevented you from drawing a card this turn!", b.self.Name))
	}
}
