package cardlib

import (
	"math/rand"
	"testing"

	"github.com/houserules/server/internal/game"
	"github.com/houserules/server/internal/game/engine"
	"github.com/houserules/server/internal/game/kernel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// fakeMessenger captures outbound messages and choice prompts so tests
// can answer them synchronously.
type fakeMessenger struct {
	messages []string
	prompts  []prompt
}

type prompt struct {
	player  *game.Player
	choices []string
	deliver func(choice string)
}

func (m *fakeMessenger) SendMessage(players []*game.Player, text string) {
	m.messages = append(m.messages, text)
}

func (m *fakeMessenger) RequestChoice(player *game.Player, choices []string, deliver func(choice string)) error {
	m.prompts = append(m.prompts, prompt{player: player, choices: choices, deliver: deliver})
	return nil
}

type fixture struct {
	t     *testing.T
	g     *game.Game
	k     *kernel.Kernel
	msg   *fakeMessenger
	alice *game.Player
	bob   *game.Player
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	eng := engine.New(rand.New(rand.NewSource(7)), zaptest.NewLogger(t),
		engine.Options{HandSize: 1, DeckSize: 30})
	alice, err := eng.AddPlayer("alice")
	require.NoError(t, err)
	bob, err := eng.AddPlayer("bob")
	require.NoError(t, err)
	require.NoError(t, eng.SetupGame([]*game.Player{alice, bob}))

	msg := &fakeMessenger{}
	g := eng.Game()
	k := kernel.New(g, eng, zaptest.NewLogger(t),
		kernel.WithMessenger(msg), kernel.WithRand(rand.New(rand.NewSource(7))))
	return &fixture{t: t, g: g, k: k, msg: msg, alice: alice, bob: bob}
}

// place instantiates a registered card and puts it into an area
// directly, bypassing the pipeline, at the front of the dispatch order.
func (f *fixture) place(name string, area *game.Area) *game.Card {
	f.t.Helper()
	ctor, ok := game.Lookup(name)
	require.True(f.t, ok, "card %q not registered", name)
	c := game.NewCard(ctor())
	c.Owners = area.Owners
	c.Area = area
	area.Contents = append([]*game.Card{c}, area.Contents...)
	f.g.AllCards = append([]*game.Card{c}, f.g.AllCards...)
	return c
}

// endTurn spends the current player's budgets and ends their turn.
func (f *fixture) endTurn() {
	f.t.Helper()
	f.g.CardsPlayedThisTurn = f.g.MaxCardsPlayedThisTurn
	f.g.CardsDrawnThisTurn = f.g.MaxCardsDrawnThisTurn
	require.True(f.t, f.k.EndTurn(f.g.CurrentPlayer))
}

func TestBuiltinSetIsRegistered(t *testing.T) {
	for _, name := range []string{
		"4 Million Points", "Ding", "Cryptocurrency", "Counterfeit Points",
		"Spray Paint",
		"Urbanization", "Alternative Facts", "Dawn Of The Iron Age",
		"Bail-Out", "Aegis of Animated Armor", "Dark Sacrifice",
		"Dog Ate Your Homework", "Blast Furnace",
		"Development Card", "Unpossessed Santa Hat", "Bad Reception",
		"Angry Cat", "Zookeeper",
		"Crayon Card", "Ene",
		"Conical Pendulum", "Second Wind", "Coup d'Etat",
	} {
		_, ok := game.Lookup(name)
		assert.True(t, ok, "missing %q", name)
	}
}

func TestDingPlayableOffTurn(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, f.alice, f.g.CurrentPlayer)
	ding := f.place("Ding", f.bob.Hand)

	require.True(t, f.k.MoveCard(game.ByPlayer(f.bob), ding, f.bob.Hand, f.bob.Area))
	assert.True(t, f.bob.Area.Contains(ding))
	assert.Zero(t, f.g.CardsPlayedThisTurn, "free play")
}

func TestDevelopmentCardWidensBudgets(t *testing.T) {
	f := newFixture(t)
	dev := f.place("Development Card", f.alice.Hand)

	require.True(t, f.k.MoveCard(game.ByPlayer(f.alice), dev, f.alice.Hand, f.alice.Area))
	assert.Equal(t, 2, f.g.MaxCardsPlayedThisTurn)
	assert.Equal(t, 3, f.g.MaxCardsDrawnThisTurn)
}

func TestSantaHatGrantsAndTakesBonusDraw(t *testing.T) {
	f := newFixture(t)
	hat := f.place("Unpossessed Santa Hat", f.alice.Hand)
	handBefore := len(f.alice.Hand.Contents)
	drawBefore := len(f.g.Draw.Contents)

	require.True(t, f.k.MoveCard(game.ByPlayer(f.alice), hat, f.alice.Hand, f.alice.Area))
	assert.Equal(t, 2, f.g.MaxCardsDrawnThisTurn)
	assert.Len(t, f.alice.Hand.Contents, handBefore, "hat left, bonus draw arrived")
	assert.Len(t, f.g.Draw.Contents, drawBefore-1)
	assert.Equal(t, 1, f.g.CardsDrawnThisTurn)
}

func TestBadReceptionCostsDraws(t *testing.T) {
	f := newFixture(t)
	bad := f.place("Bad Reception", f.alice.Hand)
	require.True(t, f.k.MoveCard(game.ByPlayer(f.alice), bad, f.alice.Hand, f.alice.Area))

	f.endTurn() // bob's turn, unaffected
	assert.Equal(t, 1, f.g.MaxCardsDrawnThisTurn)

	f.endTurn() // back to alice
	assert.Equal(t, f.alice, f.g.CurrentPlayer)
	assert.Zero(t, f.g.MaxCardsDrawnThisTurn)

	f.endTurn()
	f.endTurn() // alice's second affected turn
	assert.Zero(t, f.g.MaxCardsDrawnThisTurn)

	f.endTurn()
	f.endTurn() // third turn: the interference has passed
	assert.Equal(t, 1, f.g.MaxCardsDrawnThisTurn)
}

func TestCryptocurrencyCrashesAfterThreeTurns(t *testing.T) {
	f := newFixture(t)
	crypto := f.place("Cryptocurrency", f.alice.Hand)
	require.True(t, f.k.MoveCard(game.ByPlayer(f.alice), crypto, f.alice.Hand, f.alice.Area))
	require.Equal(t, 600, crypto.Val)

	f.endTurn() // turn 2
	f.endTurn() // turn 3
	f.endTurn() // turn 4
	assert.Equal(t, 600, crypto.Val, "bubble holds until turn four ends")

	f.endTurn()
	assert.Equal(t, -800, crypto.Val)
}

func TestCounterfeitPointsSpawnsCopy(t *testing.T) {
	f := newFixture(t)
	fake := f.place("Counterfeit Points", f.alice.Hand)
	discardBefore := len(f.g.Discard.Contents)

	require.True(t, f.k.MoveCard(game.ByPlayer(f.alice), fake, f.alice.Hand, f.alice.Area))
	require.Len(t, f.g.Discard.Contents, discardBefore+1)
	assert.Equal(t, "Counterfeit Points", f.g.Discard.Contents[len(f.g.Discard.Contents)-1].Name)
}

func TestUrbanizationPenalizesPlayAreas(t *testing.T) {
	f := newFixture(t)
	f.place("Urbanization", f.g.Center)
	f.place("4 Million Points", f.alice.Area)
	f.place("4 Million Points", f.alice.Area)

	// 12 from the play areas, -200 for the two cards in alice's area.
	assert.Equal(t, -188, f.k.ScorePlayer(f.alice))
}

func TestAlternativeFactsCancelsCenter(t *testing.T) {
	f := newFixture(t)
	f.place("Alternative Facts", f.alice.Area)
	f.place("4 Million Points", f.g.Center)

	assert.Equal(t, 0, f.k.ScorePlayer(f.alice))
	assert.Equal(t, 6, f.k.ScorePlayer(f.bob))
}

func TestDawnOfTheIronAgeEndgameBonus(t *testing.T) {
	f := newFixture(t)
	dawn := f.place("Dawn Of The Iron Age", f.alice.Area)
	plain := f.place("4 Million Points", f.alice.Area)

	assert.Equal(t, 200, f.k.ScoreCard(dawn))
	require.True(t, f.k.EndGame(game.ByPlayer(f.alice)))
	assert.Equal(t, 800, f.k.ScoreCard(dawn))
	assert.Equal(t, 6, f.k.ScoreCard(plain), "only Metallurgy cards are boosted")
}

func TestBailOutAllowsHandToDraw(t *testing.T) {
	f := newFixture(t)
	f.place("Bail-Out", f.alice.Area)
	card := f.place("4 Million Points", f.alice.Hand)

	require.True(t, f.k.MoveCard(game.ByPlayer(f.alice), card, f.alice.Hand, f.g.Draw))
	assert.True(t, f.g.Draw.Contains(card))
}

func TestBailOutDoesNotCoverRivals(t *testing.T) {
	f := newFixture(t)
	f.place("Bail-Out", f.alice.Area)
	card := f.place("4 Million Points", f.bob.Hand)

	assert.False(t, f.k.MoveCard(game.ByPlayer(f.bob), card, f.bob.Hand, f.g.Draw))
}

func TestAegisBlocksWeakChallengers(t *testing.T) {
	f := newFixture(t)
	f.place("Aegis of Animated Armor", f.bob.Area)

	weak := f.place("Ding", f.alice.Hand)
	assert.False(t, f.k.MoveCard(game.ByPlayer(f.alice), weak, f.alice.Hand, f.bob.Area))
	assert.NotEmpty(t, f.msg.messages)

	strong := f.place("Cryptocurrency", f.alice.Hand)
	assert.True(t, f.k.MoveCard(game.ByPlayer(f.alice), strong, f.alice.Hand, f.bob.Area))
}

func TestDarkSacrificeDiscardsHand(t *testing.T) {
	f := newFixture(t)
	sac := f.place("Dark Sacrifice", f.alice.Hand)
	a := f.place("4 Million Points", f.alice.Hand)
	b := f.place("4 Million Points", f.alice.Hand)

	require.True(t, f.k.MoveCard(game.ByPlayer(f.alice), sac, f.alice.Hand, f.alice.Area))
	assert.Empty(t, f.alice.Hand.Contents)
	assert.True(t, f.g.Discard.Contains(a))
	assert.True(t, f.g.Discard.Contains(b))
}

func TestBlastFurnacePullsFromDraw(t *testing.T) {
	f := newFixture(t)
	furnace := f.place("Blast Furnace", f.alice.Area)
	pulled := f.place("4 Million Points", f.g.Draw)
	drawBefore := len(f.g.Draw.Contents)
	areaBefore := len(f.alice.Area.Contents)
	card := f.place("4 Million Points", f.alice.Hand)

	require.True(t, f.k.MoveCard(game.ByPlayer(f.alice), card, f.alice.Hand, f.alice.Area))
	assert.Len(t, f.g.Draw.Contents, drawBefore-1)
	assert.Len(t, f.alice.Area.Contents, areaBefore+2, "the played card and the pulled one")
	assert.True(t, f.alice.Area.Contains(pulled))
	assert.True(t, f.alice.Area.Contains(furnace))
}

func TestZookeeperCountsAnimals(t *testing.T) {
	f := newFixture(t)
	cat := f.place("Angry Cat", f.alice.Area)
	keeper := f.place("Zookeeper", f.alice.Hand)

	require.True(t, f.k.MoveCard(game.ByPlayer(f.alice), keeper, f.alice.Hand, f.alice.Area))
	assert.Equal(t, 100, keeper.Val)

	require.True(t, f.k.MoveCard(game.ByCard(keeper), cat, f.alice.Area, f.g.Discard))
	assert.Zero(t, keeper.Val)
}

func TestAngryCatSwatsLastPlayedCard(t *testing.T) {
	f := newFixture(t)
	cat := f.place("Angry Cat", f.alice.Hand)
	victim := f.place("4 Million Points", f.alice.Hand)

	require.True(t, f.k.MoveCard(game.ByPlayer(f.alice), victim, f.alice.Hand, f.alice.Area))

	f.g.CardsPlayedThisTurn = 0
	require.True(t, f.k.MoveCard(game.ByPlayer(f.alice), cat, f.alice.Hand, f.alice.Area))
	assert.True(t, f.g.Discard.Contains(victim))
	assert.False(t, f.alice.Area.Contains(victim))
}

func TestCrayonCardFlipsOnAnswer(t *testing.T) {
	f := newFixture(t)
	crayon := f.place("Crayon Card", f.alice.Hand)

	require.True(t, f.k.MoveCard(game.ByPlayer(f.alice), crayon, f.alice.Hand, f.alice.Area))
	require.Len(t, f.msg.prompts, 1)
	p := f.msg.prompts[0]
	assert.Equal(t, []string{"no", "yes"}, p.choices)

	// The card draws the asked player from the kernel's seeded source.
	expected := []string{"alice", "bob"}[rand.New(rand.NewSource(7)).Intn(2)]
	assert.Equal(t, expected, p.player.Username)

	p.deliver("yes")
	assert.Equal(t, 500, crayon.Val)
}

func TestDogAteYourHomeworkDiscardsSeededPick(t *testing.T) {
	f := newFixture(t)
	neighbors := make([]*game.Card, 5)
	for i := range neighbors {
		neighbors[i] = f.place("4 Million Points", f.alice.Area)
	}
	dog := f.place("Dog Ate Your Homework", f.alice.Hand)

	// Mirror the card's pick against a fresh copy of the kernel's seed.
	expected := f.alice.Area.Contents[rand.New(rand.NewSource(7)).Intn(len(f.alice.Area.Contents))]

	require.True(t, f.k.MoveCard(game.ByPlayer(f.alice), dog, f.alice.Hand, f.alice.Area))
	assert.True(t, f.g.Discard.Contains(expected))
	assert.False(t, f.alice.Area.Contains(expected))
}

func TestSprayPaintDefacesCenterCard(t *testing.T) {
	f := newFixture(t)
	victim := f.place("Cryptocurrency", f.g.Center)
	spray := f.place("Spray Paint", f.alice.Hand)

	require.Equal(t, 600, victim.Val)
	require.True(t, f.k.MoveCard(game.ByPlayer(f.alice), spray, f.alice.Hand, f.alice.Area))
	assert.Zero(t, victim.Val)
	assert.True(t, f.g.Center.Contains(victim), "defaced in place, not moved")
}

func TestSprayPaintWithEmptyCenterIsInert(t *testing.T) {
	f := newFixture(t)
	spray := f.place("Spray Paint", f.alice.Hand)

	require.Empty(t, f.g.Center.Contents)
	require.True(t, f.k.MoveCard(game.ByPlayer(f.alice), spray, f.alice.Hand, f.alice.Area))
	assert.Empty(t, f.msg.messages)
}

func TestEneLetsOwnerPlayFromRivalHand(t *testing.T) {
	f := newFixture(t)
	f.place("Ene", f.alice.Area)
	stolen := f.place("4 Million Points", f.bob.Hand)

	f.k.NotifyTurnStart()
	require.Len(t, f.msg.prompts, 1)
	p := f.msg.prompts[0]
	require.Equal(t, f.alice, p.player)
	assert.Equal(t, []string{"alice", "bob"}, p.choices)
	p.deliver("bob")

	ok, _, _ := f.k.LookAt(f.alice, f.bob.Hand)
	assert.True(t, ok, "ene reveals the chosen hand")

	require.True(t, f.k.MoveCard(game.ByPlayer(f.alice), stolen, f.bob.Hand, f.alice.Area))
	assert.Zero(t, f.g.MaxCardsPlayedThisTurn, "the free play is paid back")
}

func TestConicalPendulumSwings(t *testing.T) {
	f := newFixture(t)
	pendulum := f.place("Conical Pendulum", f.alice.Area)

	f.k.NotifyTurnStart()
	assert.True(t, f.bob.Area.Contains(pendulum))

	f.k.NotifyTurnStart()
	assert.True(t, f.alice.Area.Contains(pendulum), "wraps around the table")
}

func TestSecondWindQueuesExtraTurn(t *testing.T) {
	f := newFixture(t)
	wind := f.place("Second Wind", f.alice.Hand)

	require.True(t, f.k.MoveCard(game.ByPlayer(f.alice), wind, f.alice.Hand, f.alice.Area))
	require.Len(t, f.g.TurnQueue, 1)
	assert.Equal(t, f.alice, f.g.TurnQueue[0])

	f.endTurn()
	assert.Equal(t, f.alice, f.g.CurrentPlayer, "extra turn taken before the rotation moves on")
}

func TestCoupDEtatReversesRotation(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, []*game.Player{f.alice, f.bob}, f.g.TurnOrder)
	coup := f.place("Coup d'Etat", f.alice.Hand)

	require.True(t, f.k.MoveCard(game.ByPlayer(f.alice), coup, f.alice.Hand, f.alice.Area))
	assert.Equal(t, []*game.Player{f.bob, f.alice}, f.g.TurnOrder)
}
