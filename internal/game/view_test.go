package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type viewTestBehavior struct {
	Base
}

func (b *viewTestBehavior) Init(c *Card) {
	c.Name = "View Test"
	c.Val = 7
	c.Flags = NewCardFlags(FlagPlayAnyTime)
	c.Tags = NewTags("Test")
}

func TestViewReadsThrough(t *testing.T) {
	f := NewViewFactory()
	p := &Player{Username: "alice"}
	area := NewArea("alice_play", FlagPlayArea)
	area.Owners = []*Player{p}
	c := NewCard(&viewTestBehavior{})
	c.Area = area
	c.Owners = area.Owners
	area.Contents = []*Card{c}

	cv := f.Card(c)
	assert.Equal(t, "View Test", cv.Name())
	assert.Equal(t, 7, cv.Val())
	assert.True(t, cv.HasFlag(FlagPlayAnyTime))
	assert.True(t, cv.HasTag("Test"))
	assert.True(t, cv.Is(c))
	assert.True(t, cv.Area().Is(area))

	av := f.Area(area)
	assert.Equal(t, 1, av.NumCards())
	assert.True(t, av.HasOwner(p))
	assert.True(t, av.Contents()[0].Is(c))

	// Mutating the returned slice must not touch the area.
	contents := av.Contents()
	contents[0] = nil
	assert.True(t, area.Contains(c))
}

func TestUnwrapRequiresMintingFactory(t *testing.T) {
	mint := NewViewFactory()
	other := NewViewFactory()
	c := NewCard(&viewTestBehavior{})

	got, err := mint.UnwrapCard(mint.Card(c))
	require.NoError(t, err)
	assert.Same(t, c, got)

	_, err = other.UnwrapCard(mint.Card(c))
	assert.ErrorIs(t, err, ErrCapabilityViolation)

	// Raw records unwrap with any factory; they are already authoritative.
	got, err = other.UnwrapCard(c)
	require.NoError(t, err)
	assert.Same(t, c, got)

	got, err = mint.UnwrapCard(nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestViewIsRejectsForeignViews(t *testing.T) {
	mint := NewViewFactory()
	other := NewViewFactory()
	c := NewCard(&viewTestBehavior{})

	cv := mint.Card(c)
	assert.True(t, cv.Is(other.Card(c)), "identity is by backing record, not by factory")
	assert.False(t, cv.Is(NewCard(&viewTestBehavior{})))
}

func TestPromoteCard(t *testing.T) {
	g := NewGame()
	a := NewCard(&viewTestBehavior{})
	b := NewCard(&viewTestBehavior{})
	c := NewCard(&viewTestBehavior{})
	g.AllCards = []*Card{a, b, c}

	g.PromoteCard(c)
	assert.Equal(t, []*Card{c, a, b}, g.AllCards)

	g.PromoteCard(c)
	assert.Equal(t, []*Card{c, a, b}, g.AllCards, "already at the front")

	g.PromoteCard(NewCard(&viewTestBehavior{}))
	assert.Equal(t, []*Card{c, a, b}, g.AllCards, "untracked cards are ignored")
}

func TestGameViewSortsPlayers(t *testing.T) {
	f := NewViewFactory()
	g := NewGame()
	g.Players["zoe"] = &Player{Username: "zoe"}
	g.Players["amy"] = &Player{Username: "amy"}

	gv := f.Game(g)
	players := gv.Players()
	require.Len(t, players, 2)
	assert.Equal(t, "amy", players[0].Username())
	assert.Equal(t, "zoe", players[1].Username())
}
