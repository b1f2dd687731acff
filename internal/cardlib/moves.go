package cardlib

import (
	"fmt"

	"github.com/houserules/server/internal/game"
)

func init() {
	game.Register("Bail-Out", func() game.Behavior { return &bailOut{} })
	game.Register("Aegis of Animated Armor", func() game.Behavior { return &aegis{} })
	game.Register("Dark Sacrifice", func() game.Behavior { return &darkSacrifice{} })
	game.Register("Dog Ate Your Homework", func() game.Behavior { return &dogAteYourHomework{} })
	game.Register("Blast Furnace", func() game.Behavior { return &blastFurnace{} })
}

// bailOut lets its owner put hand cards back on the draw pile, a move
// the default policy never permits.
type bailOut struct {
	game.Base
	self *game.Card
}

func (b *bailOut) Init(c *game.Card) {
	b.self = c
	c.Val = -200
	c.Name = "Bail-Out"
	c.Image = "Bail-Out.png"
}

func (b *bailOut) HandleMove(a game.Actions, init game.InitiatorView, card *game.CardView, from, to *game.AreaView, g *game.GameView) game.Vote {
	if init.Player == nil || !ownedBy(b.self, init.Player) {
		return game.VoteAbstain
	}
	if from != nil && from.Is(init.Player.Hand()) && to != nil && to.Is(g.DrawPile()) {
		return game.VoteAllow
	}
	return game.VoteAbstain
}

// aegis blocks rival hand cards of equal or lesser magnitude from
// entering its area.
type aegis struct {
	game.Base
	self *game.Card
}

func (b *aegis) Init(c *game.Card) {
	b.self = c
	c.Val = 350
	c.Name = "Aegis of Animated Armor"
	c.Image = "AegisOfAnimatedArmor.png"
}

func (b *aegis) HandleMove(a game.Actions, init game.InitiatorView, card *game.CardView, from, to *game.AreaView, g *game.GameView) game.Vote {
	if to == nil || !to.Is(b.self.Area) || from == nil || !from.HasFlag(game.FlagHandArea) {
		return game.VoteAbstain
	}
	if init.Player == nil || ownedBy(b.self, init.Player) {
		return game.VoteAbstain
	}
	if abs(card.Val()) <= abs(b.self.Val) {
		a.SendMessage([]game.PlayerRef{init.Player},
			fmt.Sprintf("[%s] %s is not a worthy challenger!", b.self.Name, card.Name()))
		return game.VoteDeny
	}
	return game.VoteAbstain
}

// darkSacrifice is worth a fortune but discards its player's whole hand
// when played.
type darkSacrifice struct {
	game.Base
	self *game.Card
}

func (b *darkSacrifice) Init(c *game.Card) {
	b.self = c
	c.Val = 1500
	c.Name = "Dark Sacrifice"
	c.Image = "Dark_Sacrifice.png"
}

func (b *darkSacrifice) OnPlay(a game.Actions, g *game.GameView, player *game.PlayerView) {
	hand := player.Hand()
	if hand == nil {
		return
	}
	for _, c := range hand.Contents() {
		a.MoveCard(game.ByCard(b.self), c, hand, g.DiscardPile())
	}
}

// dogAteYourHomework discards a random neighbor from its own area when
// played, briefly vouching for the move it initiates.
type dogAteYourHomework struct {
	game.Base
	self   *game.Card
	active bool
}

func (b *dogAteYourHomework) Init(c *game.Card) {
	b.self = c
	c.Val = 0
	c.Name = "Dog Ate Your Homework"
	c.Image = "A_Dog_Ate_Your_Homework.png"
}

func (b *dogAteYourHomework) OnPlay(a game.Actions, g *game.GameView, player *game.PlayerView) {
	var others []*game.Card
	for _, c := range b.self.Area.Contents {
		if c != b.self {
			others = append(others, c)
		}
	}
	if len(others) == 0 {
		return
	}
	victim := others[a.Rand().Intn(len(others))]
	b.active = true
	a.MoveCard(game.ByPlayer(player), victim, b.self.Area, g.DiscardPile())
	b.active = false
}

func (b *dogAteYourHomework) HandleMove(a game.Actions, init game.InitiatorView, card *game.CardView, from, to *game.AreaView, g *game.GameView) game.Vote {
	if b.active {
		b.active = false
		return game.VoteAllow
	}
	return game.VoteAbstain
}

// blastFurnace pulls the top of the draw pile into its area whenever a
// card arrives there.
type blastFurnace struct {
	game.Base
	self   *game.Card
	active bool
}

func (b *blastFurnace) Init(c *game.Card) {
	b.self = c
	c.Val = 50
	c.Name = "Blast Furnace"
	c.Image = "Blast_Furnace.png"
	c.Tags = game.NewTags("Metallurgy")
}

func (b *blastFurnace) OnMove(a game.Actions, init game.InitiatorView, card *game.CardView, from, to *game.AreaView, g *game.GameView) {
	if to == nil || !to.Is(b.self.Area) || b.active || len(b.self.Owners) == 0 {
		return
	}
	draw := g.DrawPile()
	if draw == nil || draw.NumCards() == 0 {
		return
	}
	b.active = true
	a.MoveCard(game.ByPlayer(b.self.Owners[0]), draw.Contents()[0], draw, b.self.Area)
	b.active = false
}

func (b *blastFurnace) HandleMove(a game.Actions, init game.InitiatorView, card *game.CardView, from, to *game.AreaView, g *game.GameView) game.Vote {
	if b.active && from != nil && from.Is(g.DrawPile()) && to != nil && to.Is(b.self.Area) {
		return game.VoteAllow
	}
	return game.VoteAbstain
}
