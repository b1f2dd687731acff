package game

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"
)

// Constructor creates a fresh behavior instance for one card. Card
// packages register their constructors at load time; decks are built by
// instantiating registered constructors.
type Constructor func() Behavior

var registry = struct {
	mu    sync.RWMutex
	ctors map[string]Constructor
}{ctors: make(map[string]Constructor)}

// Register adds a card constructor under its unique name. It panics on
// duplicates, which would indicate two card packages colliding at load
// time.
func Register(name string, ctor Constructor) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	if _, dup := registry.ctors[name]; dup {
		panic(fmt.Sprintf("game: card %q registered twice", name))
	}
	registry.ctors[name] = ctor
}

// Lookup returns the constructor registered under name.
func Lookup(name string) (Constructor, bool) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	ctor, ok := registry.ctors[name]
	return ctor, ok
}

// RegisteredCards returns the sorted names of every registered card.
func RegisteredCards() []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	names := make([]string, 0, len(registry.ctors))
	for name := range registry.ctors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MakeDeck instantiates one card per registered constructor, shuffles,
// then pads with random duplicates or trims at random until the deck has
// exactly size cards. A size of zero keeps one of each.
func MakeDeck(rng *rand.Rand, size int) []*Card {
	names := RegisteredCards()
	deck := make([]*Card, 0, len(names))
	for _, name := range names {
		ctor, _ := Lookup(name)
		deck = append(deck, NewCard(ctor()))
	}
	rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
	if size <= 0 || len(names) == 0 {
		return deck
	}
	for len(deck) < size {
		name := names[rng.Intn(len(names))]
		ctor, _ := Lookup(name)
		deck = append(deck, NewCard(ctor()))
	}
	for len(deck) > size {
		i := rng.Intn(len(deck))
		deck = append(deck[:i], deck[i+1:]...)
	}
	return deck
}
