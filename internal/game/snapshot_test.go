package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSnapshotGame() *Game {
	g := NewGame()
	alice := &Player{Username: "alice"}
	hand := NewArea("alice_hand", FlagHandArea)
	hand.Owners = []*Player{alice}
	hand.Viewers = []*Player{alice}
	play := NewArea("alice_play", FlagPlayArea)
	play.Owners = []*Player{alice}
	alice.Hand, alice.Area = hand, play

	g.Players["alice"] = alice
	g.AllAreas[hand.ID] = hand
	g.AllAreas[play.ID] = play
	g.TurnOrder = []*Player{alice}
	g.CurrentPlayer = alice
	g.TurnNum = 3

	c := NewCard(&viewTestBehavior{})
	c.Owners = play.Owners
	c.Area = play
	play.Contents = []*Card{c}
	g.AllCards = []*Card{c}
	return g
}

func TestTakeSnapshotCopiesState(t *testing.T) {
	g := buildSnapshotGame()
	snap := g.TakeSnapshot()

	assert.Equal(t, 3, snap.TurnNum)
	assert.Equal(t, "alice", snap.CurrentPlayer)
	assert.Equal(t, []string{"alice"}, snap.TurnOrder)
	require.Len(t, snap.Players, 1)
	assert.Equal(t, "alice_hand", snap.Players[0].Hand)

	require.Len(t, snap.Areas, 2)
	assert.Equal(t, "alice_hand", snap.Areas[0].ID)
	assert.Equal(t, "alice_play", snap.Areas[1].ID)
	require.Len(t, snap.Areas[1].Cards, 1)
	assert.Equal(t, "View Test", snap.Areas[1].Cards[0].Name)
	assert.NotEmpty(t, snap.Checksum)
}

func TestSnapshotChecksumIsDeterministic(t *testing.T) {
	a := buildSnapshotGame().TakeSnapshot()
	b := buildSnapshotGame().TakeSnapshot()
	assert.Equal(t, a.Checksum, b.Checksum, "identical layouts hash equal across instances")
}

func TestSnapshotChecksumTracksState(t *testing.T) {
	g := buildSnapshotGame()
	before := g.TakeSnapshot()

	g.AllAreas["alice_play"].Contents[0].Val = 99
	after := g.TakeSnapshot()
	assert.NotEqual(t, before.Checksum, after.Checksum)
}
