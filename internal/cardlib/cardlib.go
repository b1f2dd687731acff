// Package cardlib is the built-in card set. Each card is a Behavior
// implementation registered at load time; importing this package for
// side effects makes the whole set available to deck construction.
//
// Cards keep the record pointer handed to Init and read their own state
// through it; everything else they learn through the views the kernel
// passes them, and every mutation goes back through the Actions surface.
package cardlib

import "github.com/houserules/server/internal/game"

// refs widens player views to the reference slices the Actions
// messaging calls take.
func refs(players []*game.PlayerView) []game.PlayerRef {
	out := make([]game.PlayerRef, len(players))
	for i, p := range players {
		out[i] = p
	}
	return out
}

// ownedBy reports whether the viewed player is among the card's owners.
func ownedBy(c *game.Card, p *game.PlayerView) bool {
	if p == nil {
		return false
	}
	for _, o := range c.Owners {
		if p.Is(o) {
			return true
		}
	}
	return false
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
