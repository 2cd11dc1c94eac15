// internal/game/snapshot.go
package game

import (
	"github.com/google/uuid"

	"github.com/mwalan/Trabalho-2-Redes/internal/models"
)

// PlayerView is one player's entry in a snapshot. Hand is populated only
// when the snapshot is built for that player; everyone else sees the
// count.
type PlayerView struct {
	ID       uuid.UUID     `json:"id"`
	HandSize int           `json:"hand_size"`
	Hand     []models.Card `json:"hand,omitempty"`
	Safe     bool          `json:"safe"`
}

// Snapshot is a complete, consistent view of a room's game, redacted for
// one recipient. Clients re-render entirely from the latest snapshot; the
// server is the sole source of truth.
type Snapshot struct {
	Room        string       `json:"room"`
	Host        uuid.UUID    `json:"host"`
	Started     bool         `json:"started"`
	Players     []PlayerView `json:"players"`
	CurrentTurn int          `json:"current_turn"`
	Direction   int          `json:"direction"`
	ActiveColor models.Color `json:"active_color"`
	DiscardTop  *models.Card `json:"discard_top,omitempty"`
	DeckSize    int          `json:"deck_size"`
	DiscardSize int          `json:"discard_size"`
	Winner      *uuid.UUID   `json:"winner,omitempty"`
}

// SnapshotFor renders the game state from viewer's perspective: full hand
// contents for the viewer, hand sizes only for everyone else. Room and
// Host are filled in by the owning room. Assumes the room lock is held.
func (g *Game) SnapshotFor(viewer uuid.UUID) Snapshot {
	snap := Snapshot{
		Started:     g.Started,
		CurrentTurn: g.CurrentPlayerIndex,
		Direction:   g.Direction,
		ActiveColor: g.ActiveColor,
		DeckSize:    len(g.Deck),
		DiscardSize: len(g.Discard),
	}
	if len(g.Discard) > 0 {
		top := g.Discard[len(g.Discard)-1]
		snap.DiscardTop = &top
	}
	if g.Winner != uuid.Nil {
		w := g.Winner
		snap.Winner = &w
	}

	snap.Players = make([]PlayerView, 0, len(g.Players))
	for _, p := range g.Players {
		view := PlayerView{
			ID:       p.ID,
			HandSize: len(p.Hand),
			Safe:     g.Safe[p.ID],
		}
		if p.ID == viewer {
			view.Hand = make([]models.Card, len(p.Hand))
			copy(view.Hand, p.Hand)
		}
		snap.Players = append(snap.Players, view)
	}
	return snap
}
