package cardlib

import "github.com/houserules/server/internal/game"

func init() {
	game.Register("Urbanization", func() game.Behavior { return &urbanization{} })
	game.Register("Alternative Facts", func() game.Behavior { return &alternativeFacts{} })
	game.Register("Dawn Of The Iron Age", func() game.Behavior { return &dawnOfTheIronAge{} })
}

// urbanization must be played to the center and penalizes every scored
// player for each card in their personal play area.
type urbanization struct {
	game.Base
	self *game.Card
}

func (b *urbanization) Init(c *game.Card) {
	b.self = c
	c.Val = 0
	c.Name = "Urbanization"
	c.Image = "Urbanization.png"
	c.Flags = game.NewCardFlags(game.FlagOnlyPlayToCenter)
}

func (b *urbanization) HandleScorePlayer(a game.Actions, player *game.PlayerView, running int, g *game.GameView) (int, bool) {
	area := player.Area()
	if area == nil {
		return 0, false
	}
	return -100 * area.NumCards(), true
}

// alternativeFacts cancels the center's score from its owner's total.
type alternativeFacts struct {
	game.Base
	self *game.Card
}

func (b *alternativeFacts) Init(c *game.Card) {
	b.self = c
	c.Val = 0
	c.Name = "Alternative Facts"
	c.Image = "Alternative_Facts.png"
}

func (b *alternativeFacts) HandleScorePlayer(a game.Actions, player *game.PlayerView, running int, g *game.GameView) (int, bool) {
	if !ownedBy(b.self, player) {
		return 0, false
	}
	return -a.ScoreArea(g.Center()), true
}

// dawnOfTheIronAge boosts every Metallurgy card's score by 600 once the
// game has ended.
type dawnOfTheIronAge struct {
	game.Base
	self     *game.Card
	gameOver bool
}

func (b *dawnOfTheIronAge) Init(c *game.Card) {
	b.self = c
	c.Val = 200
	c.Name = "Dawn Of The Iron Age"
	c.Image = "Dawn_Of_The_Iron_Age.png"
	c.Tags = game.NewTags("Metallurgy", "Technology")
}

func (b *dawnOfTheIronAge) HandleScoreCard(a game.Actions, card *game.CardView, g *game.GameView) (int, bool) {
	if b.gameOver && card.HasTag("Metallurgy") {
		return card.Val() + 600, true
	}
	return 0, false
}

func (b *dawnOfTheIronAge) OnEndGame(a game.Actions, g *game.GameView) {
	b.gameOver = true
}
