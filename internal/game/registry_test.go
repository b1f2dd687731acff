package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type registryTestBehavior struct {
	Base
	name string
}

func (b *registryTestBehavior) Init(c *Card) { c.Name = b.name }

// registerOnce tolerates the package-level registry surviving across
// tests in this package.
func registerOnce(name string) {
	if _, ok := Lookup(name); ok {
		return
	}
	Register(name, func() Behavior { return &registryTestBehavior{name: name} })
}

func TestRegisterAndLookup(t *testing.T) {
	registerOnce("registry_test_a")
	registerOnce("registry_test_b")

	ctor, ok := Lookup("registry_test_a")
	require.True(t, ok)
	c := NewCard(ctor())
	assert.Equal(t, "registry_test_a", c.Name)

	_, ok = Lookup("registry_test_missing")
	assert.False(t, ok)

	assert.Panics(t, func() {
		Register("registry_test_a", func() Behavior { return &registryTestBehavior{} })
	})
}

func TestRegisteredCardsSorted(t *testing.T) {
	registerOnce("registry_test_a")
	registerOnce("registry_test_b")

	names := RegisteredCards()
	assert.IsNonDecreasing(t, names)
	assert.Contains(t, names, "registry_test_a")
	assert.Contains(t, names, "registry_test_b")
}

func TestMakeDeckSizes(t *testing.T) {
	registerOnce("registry_test_a")
	registerOnce("registry_test_b")
	rng := rand.New(rand.NewSource(42))

	deck := MakeDeck(rng, 0)
	assert.Len(t, deck, len(RegisteredCards()), "size zero keeps one of each")

	deck = MakeDeck(rng, 9)
	assert.Len(t, deck, 9, "padded with duplicates")

	deck = MakeDeck(rng, 1)
	assert.Len(t, deck, 1, "trimmed at random")

	for _, c := range deck {
		require.NotNil(t, c.Behavior)
	}
}
