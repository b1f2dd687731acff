package transport

import (
	"fmt"
	"sort"
	"strings"

	"github.com/houserules/server/internal/game"
)

// renderer turns game state into the per-player text fields clients
// display. Visibility always goes through the rules pipeline: a hidden
// area renders as a card count.
type renderer struct {
	kern game.Actions
	g    *game.Game
}

func formatScore(score int) string { return fmt.Sprintf("(%d points)", score) }

func formatCard(index int, name string) string {
	return fmt.Sprintf("[%d] %s", index, name)
}

func (r renderer) formatArea(player *game.Player, area *game.Area) string {
	ok, contents, count := r.kern.LookAt(player, area)
	if !ok {
		return fmt.Sprintf("%s (%d cards)", area.ID, count)
	}

	var b strings.Builder
	b.WriteString(area.ID)
	if area.Flags.Has(game.FlagPlayArea) {
		b.WriteString(" " + formatScore(r.kern.ScoreArea(area)))
	} else {
		b.WriteString(" (visible)")
	}
	for i, c := range contents {
		b.WriteString("\n" + formatCard(i+1, c.Name()))
	}
	return b.String()
}

// sortedAreas returns the game's areas in a stable display order: play
// areas keep center first, the rest sort by id.
func (r renderer) sortedAreas() []*game.Area {
	ids := make([]string, 0, len(r.g.AllAreas))
	for id := range r.g.AllAreas {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*game.Area, len(ids))
	for i, id := range ids {
		out[i] = r.g.AllAreas[id]
	}
	return out
}

// update renders the two display fields for one player: play areas in
// the play field, everything else in the hand field.
func (r renderer) update(player *game.Player) (hand, play string) {
	var handB, playB []string
	for _, area := range r.sortedAreas() {
		formatted := r.formatArea(player, area)
		if area.Flags.Has(game.FlagPlayArea) {
			playB = append(playB, formatted)
		} else {
			handB = append(handB, formatted)
		}
	}
	return strings.Join(handB, "\n\n"), strings.Join(playB, "\n\n")
}

// finalUpdate prepends everyone's authoritative score to the play field.
func (r renderer) finalUpdate(player *game.Player) (hand, play string) {
	names := make([]string, 0, len(r.g.Players))
	for name := range r.g.Players {
		names = append(names, name)
	}
	sort.Strings(names)

	var scores strings.Builder
	for _, name := range names {
		p := r.g.Players[name]
		scores.WriteString(fmt.Sprintf("%s: %s\n", name, formatScore(r.kern.ScorePlayer(p))))
	}

	hand, play = r.update(player)
	return hand, scores.String() + "\n" + play
}
