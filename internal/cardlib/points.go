package cardlib

import (
	"fmt"

	"github.com/houserules/server/internal/game"
)

func init() {
	game.Register("4 Million Points", func() game.Behavior { return &fourMillionPoints{} })
	game.Register("Ding", func() game.Behavior { return &ding{} })
	game.Register("Cryptocurrency", func() game.Behavior { return &cryptocurrency{} })
	game.Register("Counterfeit Points", func() game.Behavior { return &counterfeitPoints{} })
	game.Register("Spray Paint", func() game.Behavior { return &sprayPaint{} })
}

// fourMillionPoints is worth six points.
type fourMillionPoints struct {
	game.Base
	self *game.Card
}

func (b *fourMillionPoints) Init(c *game.Card) {
	b.self = c
	c.Val = 6
	c.Name = "4 Million Points"
	c.Image = "4_Million_Points.png"
}

// ding can be played outside the owner's turn.
type ding struct {
	game.Base
	self *game.Card
}

func (b *ding) Init(c *game.Card) {
	b.self = c
	c.Val = 100
	c.Name = "Ding"
	c.Image = "Ding.png"
	c.Flags = game.NewCardFlags(game.FlagPlayAnyTime)
}

// cryptocurrency is worth 600 until the bubble bursts three turns after
// it is played.
type cryptocurrency struct {
	game.Base
	self       *game.Card
	turnPlayed int
}

func (b *cryptocurrency) Init(c *game.Card) {
	b.self = c
	c.Val = 600
	c.Name = "Cryptocurrency"
	c.Image = "Cryptocurrency.png"
	b.turnPlayed = -1
}

func (b *cryptocurrency) OnPlay(a game.Actions, g *game.GameView, player *game.PlayerView) {
	b.turnPlayed = g.TurnNum()
}

func (b *cryptocurrency) HandleEndTurn(a game.Actions, player *game.PlayerView, g *game.GameView) game.Vote {
	if b.turnPlayed >= 0 && g.TurnNum() == b.turnPlayed+3 {
		b.self.Val = -800
	}
	return game.VoteAbstain
}

// counterfeitPoints spawns another copy of itself into the discard pile
// whenever it is played.
type counterfeitPoints struct {
	game.Base
	self *game.Card
}

func (b *counterfeitPoints) Init(c *game.Card) {
	b.self = c
	c.Val = 300
	c.Name = "Counterfeit Points"
	c.Image = "Counterfeit_Points.png"
}

func (b *counterfeitPoints) OnPlay(a game.Actions, g *game.GameView, player *game.PlayerView) {
	a.AddCard(game.ByCard(b.self), func() game.Behavior { return &counterfeitPoints{} }, g.DiscardPile())
}

// sprayPaint defaces the newest card in the center, permanently zeroing
// its value through the kernel's mutable channel.
type sprayPaint struct {
	game.Base
	self *game.Card
}

func (b *sprayPaint) Init(c *game.Card) {
	b.self = c
	c.Val = 0
	c.Name = "Spray Paint"
	c.Image = "Spray_Paint.png"
}

func (b *sprayPaint) OnPlay(a game.Actions, g *game.GameView, player *game.PlayerView) {
	contents := g.Center().Contents()
	if len(contents) == 0 {
		return
	}
	raw := a.GetMutableCard(game.ByCard(b.self), contents[0])
	if raw == nil {
		a.SendMessage([]game.PlayerRef{player}, fmt.Sprintf("[%s] The canvas resists!", b.self.Name))
		return
	}
	raw.Val = 0
	a.SendMessage(refs(g.Players()), fmt.Sprintf("[%s] %s has been defaced!", b.self.Name, raw.Name))
}
