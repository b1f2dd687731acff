package cardlib

import (
	"fmt"

	"github.com/houserules/server/internal/game"
)

func init() {
	game.Register("Angry Cat", func() game.Behavior { return &angryCat{} })
	game.Register("Zookeeper", func() game.Behavior { return &zookeeper{} })
}

// angryCat watches every play from anywhere in the game and, when it is
// itself played, swats the last card it saw into the discard pile.
type angryCat struct {
	game.Base
	self   *game.Card
	target *game.CardView
}

func (b *angryCat) Init(c *game.Card) {
	b.self = c
	c.Val = 300
	c.Name = "Angry Cat"
	c.Image = "Angry_Cat.png"
	c.Flags = game.NewCardFlags(game.FlagAlwaysGetEvents)
	c.Tags = game.NewTags("Animal", "Cat")
}

func (b *angryCat) OnMove(a game.Actions, init game.InitiatorView, card *game.CardView, from, to *game.AreaView, g *game.GameView) {
	if to != nil && to.HasFlag(game.FlagPlayArea) && !card.Is(b.self) {
		b.target = card
	}
}

func (b *angryCat) OnPlay(a game.Actions, g *game.GameView, player *game.PlayerView) {
	if b.target == nil {
		return
	}
	if a.MoveCard(game.ByCard(b.self), b.target, b.target.Area(), g.DiscardPile()) {
		a.SendMessage(refs(b.target.Owners()), fmt.Sprintf("[%s] *angry cat noises*", b.self.Name))
	}
}

// zookeeper gains 100 points for every Animal sharing its area and
// tracks animals arriving and leaving afterwards.
type zookeeper struct {
	game.Base
	self *game.Card
}

func (b *zookeeper) Init(c *game.Card) {
	b.self = c
	c.Val = 0
	c.Name = "Zookeeper"
	c.Image = "Zookeeper.png"
}

func (b *zookeeper) OnPlay(a game.Actions, g *game.GameView, player *game.PlayerView) {
	for _, c := range b.self.Area.Contents {
		if c.Tags.Has("Animal") {
			b.self.Val += 100
		}
	}
}

func (b *zookeeper) OnMove(a game.Actions, init game.InitiatorView, card *game.CardView, from, to *game.AreaView, g *game.GameView) {
	if !card.HasTag("Animal") {
		return
	}
	if from != nil && from.Is(b.self.Area) {
		b.self.Val -= 100
	} else if to != nil && to.Is(b.self.Area) {
		b.self.Val += 100
	}
}
