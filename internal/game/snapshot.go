package game

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
)

// Snapshot is a point-in-time copy of a game's observable state, used
// for the admin state endpoint and for diagnosing divergent games. It
// carries no behavior and cannot be used to mutate the game.
type Snapshot struct {
	TurnNum        int              `json:"turn_num"`
	CurrentPlayer  string           `json:"current_player,omitempty"`
	TurnOrder      []string         `json:"turn_order"`
	TurnQueue      []string         `json:"turn_queue,omitempty"`
	MaxPlayed      int              `json:"max_played"`
	Played         int              `json:"played"`
	MaxDrawn       int              `json:"max_drawn"`
	Drawn          int              `json:"drawn"`
	Over           bool             `json:"over"`
	Areas          []AreaSnapshot   `json:"areas"`
	Players        []PlayerSnapshot `json:"players"`
	Checksum       string           `json:"checksum"`
	ChecksumFields int              `json:"checksum_version"`
}

// AreaSnapshot copies one area, contents in dispatch order.
type AreaSnapshot struct {
	ID      string         `json:"id"`
	Flags   []string       `json:"flags,omitempty"`
	Owners  []string       `json:"owners,omitempty"`
	Viewers []string       `json:"viewers,omitempty"`
	Cards   []CardSnapshot `json:"cards"`
}

// CardSnapshot copies one card's author-visible fields.
type CardSnapshot struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Val   int      `json:"val"`
	Flags []string `json:"flags,omitempty"`
	Tags  []string `json:"tags,omitempty"`
}

// PlayerSnapshot names a player's seat and areas.
type PlayerSnapshot struct {
	Username string `json:"username"`
	Hand     string `json:"hand,omitempty"`
	Area     string `json:"area,omitempty"`
}

const snapshotChecksumVersion = 1

// TakeSnapshot copies the game state. The caller must hold the game's
// serialization (the room actor); the snapshot itself is safe to share
// afterwards.
func (g *Game) TakeSnapshot() Snapshot {
	snap := Snapshot{
		TurnNum:        g.TurnNum,
		MaxPlayed:      g.MaxCardsPlayedThisTurn,
		Played:         g.CardsPlayedThisTurn,
		MaxDrawn:       g.MaxCardsDrawnThisTurn,
		Drawn:          g.CardsDrawnThisTurn,
		Over:           g.Over,
		ChecksumFields: snapshotChecksumVersion,
	}
	if g.CurrentPlayer != nil {
		snap.CurrentPlayer = g.CurrentPlayer.Username
	}
	for _, p := range g.TurnOrder {
		snap.TurnOrder = append(snap.TurnOrder, p.Username)
	}
	for _, p := range g.TurnQueue {
		snap.TurnQueue = append(snap.TurnQueue, p.Username)
	}

	ids := make([]string, 0, len(g.AllAreas))
	for id := range g.AllAreas {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		snap.Areas = append(snap.Areas, snapshotArea(g.AllAreas[id]))
	}

	names := make([]string, 0, len(g.Players))
	for name := range g.Players {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		p := g.Players[name]
		ps := PlayerSnapshot{Username: name}
		if p.Hand != nil {
			ps.Hand = p.Hand.ID
		}
		if p.Area != nil {
			ps.Area = p.Area.ID
		}
		snap.Players = append(snap.Players, ps)
	}

	snap.Checksum = snap.computeChecksum()
	return snap
}

func snapshotArea(a *Area) AreaSnapshot {
	as := AreaSnapshot{ID: a.ID}
	for f := range a.Flags {
		as.Flags = append(as.Flags, string(f))
	}
	sort.Strings(as.Flags)
	for _, o := range a.Owners {
		as.Owners = append(as.Owners, o.Username)
	}
	for _, v := range a.Viewers {
		as.Viewers = append(as.Viewers, v.Username)
	}
	for _, c := range a.Contents {
		cs := CardSnapshot{ID: c.ID.String(), Name: c.Name, Val: c.Val}
		for f := range c.Flags {
			cs.Flags = append(cs.Flags, string(f))
		}
		sort.Strings(cs.Flags)
		for t := range c.Tags {
			cs.Tags = append(cs.Tags, t)
		}
		sort.Strings(cs.Tags)
		as.Cards = append(as.Cards, cs)
	}
	return as
}

// computeChecksum hashes a canonical representation of the snapshot.
// Two snapshots of equal state hash equal regardless of map iteration
// order; card instance IDs are excluded so checksums compare across
// games with identical layouts.
func (s Snapshot) computeChecksum() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "GAME:%d|%s|%d/%d|%d/%d|%t\n",
		s.TurnNum, s.CurrentPlayer, s.Played, s.MaxPlayed, s.Drawn, s.MaxDrawn, s.Over)
	fmt.Fprintf(&buf, "ORDER:%v|%v\n", s.TurnOrder, s.TurnQueue)
	for _, a := range s.Areas {
		fmt.Fprintf(&buf, "AREA:%s|%v|%v|%v\n", a.ID, a.Flags, a.Owners, a.Viewers)
		for _, c := range a.Cards {
			fmt.Fprintf(&buf, "CARD:%s|%d|%v|%v\n", c.Name, c.Val, c.Flags, c.Tags)
		}
	}
	for _, p := range s.Players {
		fmt.Fprintf(&buf, "PLAYER:%s|%s|%s\n", p.Username, p.Hand, p.Area)
	}
	sum := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:])
}
