// internal/game/game.go
package game

import (
	"github.com/google/uuid"

	"github.com/mwalan/Trabalho-2-Redes/internal/models"
)

// InitialHandSize is how many cards each player is dealt when joining.
const InitialHandSize = 7

// Game holds the authoritative state of one UNO match. It carries no lock
// of its own: the owning Room serializes every mutation, so all methods
// assume the room lock is held.
//
// The card-conservation invariant holds at all times: the multiset union
// of Deck, Discard and every hand is exactly the 108-card starting deck.
type Game struct {
	// Players in join order, which is also turn order.
	Players []*models.Player

	// Deck is the draw pile, depleted from the tail. Discard grows at the
	// tail; its last element is the card showing on the table.
	Deck    []models.Card
	Discard []models.Card

	CurrentPlayerIndex int
	// Direction is +1 clockwise, -1 counter-clockwise.
	Direction int

	// ActiveColor is the color legal plays must match. It differs from the
	// top discard's color after a wild is played.
	ActiveColor models.Color

	// Safe holds players who declared a one-card hand and are immune to
	// the declare penalty.
	Safe map[uuid.UUID]bool

	Started bool
	// Winner stays uuid.Nil until a hand empties; once set the game is
	// finished and no further state transition is accepted.
	Winner uuid.UUID
}

// NewGame shuffles a fresh deck and flips the starting discard. If the
// flipped card is a wild the active color defaults to red.
func NewGame() *Game {
	deck := models.NewDeck()
	models.ShuffleDeck(deck)

	g := &Game{
		Deck:      deck,
		Direction: 1,
		Safe:      make(map[uuid.UUID]bool),
	}

	top := g.Deck[len(g.Deck)-1]
	g.Deck = g.Deck[:len(g.Deck)-1]
	g.Discard = append(g.Discard, top)
	if top.IsWild() {
		g.ActiveColor = models.ColorRed
	} else {
		g.ActiveColor = top.Color
	}
	return g
}

// AddPlayer appends p to the turn order. The caller is responsible for the
// capacity and started checks; dealing happens via Draw.
func (g *Game) AddPlayer(p *models.Player) {
	g.Players = append(g.Players, p)
}

// Start moves the game from waiting to in progress.
func (g *Game) Start() error {
	if g.Started {
		return models.ErrGameInProgress
	}
	if len(g.Players) < 2 {
		return models.ErrNotEnoughPlayers
	}
	g.Started = true
	return nil
}

// Finished reports whether a winner has been decided.
func (g *Game) Finished() bool { return g.Winner != uuid.Nil }

// PlayerByID returns the player with the given session id, or nil.
func (g *Game) PlayerByID(id uuid.UUID) *models.Player {
	for _, p := range g.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (g *Game) playerIndex(id uuid.UUID) int {
	for i, p := range g.Players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// Draw moves up to n cards from the draw pile into the player's hand,
// recycling the discard pile when the draw pile runs dry. If every card is
// already held the remaining draws are silently skipped; that is an
// accepted terminal edge case, not an error.
func (g *Game) Draw(playerID uuid.UUID, n int) {
	p := g.PlayerByID(playerID)
	if p == nil {
		return
	}
	for i := 0; i < n; i++ {
		if !g.drawOne(p) {
			break
		}
	}
}

// drawOne pops one card into p's hand, returning false when no card is
// available anywhere. A draw that leaves the hand at any size other than
// exactly one revokes a stale safe declaration.
func (g *Game) drawOne(p *models.Player) bool {
	if len(g.Deck) == 0 {
		g.recycleDiscard()
	}
	if len(g.Deck) == 0 {
		return false
	}

	card := g.Deck[len(g.Deck)-1]
	g.Deck = g.Deck[:len(g.Deck)-1]
	p.Hand = append(p.Hand, card)

	if len(p.Hand) != 1 && g.Safe[p.ID] {
		delete(g.Safe, p.ID)
	}
	return true
}

// recycleDiscard shuffles everything but the top discard back into the
// draw pile. With a single discard there is nothing to recycle.
func (g *Game) recycleDiscard() {
	if len(g.Discard) < 2 {
		return
	}
	top := g.Discard[len(g.Discard)-1]
	g.Deck = append(g.Deck, g.Discard[:len(g.Discard)-1]...)
	g.Discard = []models.Card{top}
	models.ShuffleDeck(g.Deck)
}

// PlayCard validates and applies a play by the current player. All
// validation happens before any mutation so a rejected play leaves hand,
// discard and turn untouched. chosenColor is required for wild cards and
// ignored otherwise.
func (g *Game) PlayCard(playerID uuid.UUID, handIndex int, chosenColor models.Color) error {
	if !g.Started {
		return models.ErrGameNotStarted
	}
	if g.Finished() {
		return models.ErrGameOver
	}

	idx := g.playerIndex(playerID)
	if idx != g.CurrentPlayerIndex {
		return models.ErrNotYourTurn
	}
	p := g.Players[idx]
	if handIndex < 0 || handIndex >= len(p.Hand) {
		return models.ErrInvalidIndex
	}

	card := p.Hand[handIndex]
	top := g.Discard[len(g.Discard)-1]
	legal := card.Color == g.ActiveColor || card.IsWild() || card.Face == top.Face
	if !legal {
		return models.ErrIllegalPlay
	}
	if card.IsWild() && !chosenColor.IsReal() {
		return models.ErrColorRequired
	}

	p.Hand = append(p.Hand[:handIndex], p.Hand[handIndex+1:]...)
	g.Discard = append(g.Discard, card)

	if card.IsWild() {
		g.ActiveColor = chosenColor
	} else {
		g.ActiveColor = card.Color
	}

	if len(p.Hand) == 0 {
		g.Winner = playerID
		return nil
	}

	// Down to one card: any earlier declaration is stale, the player must
	// declare again or risk the penalty.
	if len(p.Hand) == 1 {
		delete(g.Safe, playerID)
	}

	switch card.Face {
	case models.FaceSkip:
		g.advance(2)
	case models.FaceReverse:
		if len(g.Players) == 2 {
			// With two players a reverse behaves exactly like a skip.
			g.advance(2)
		} else {
			g.Direction = -g.Direction
			g.advance(1)
		}
	case models.FaceDrawTwo:
		g.penalizeNext(2)
		g.advance(2)
	case models.FaceWildFour:
		g.penalizeNext(4)
		g.advance(2)
	default:
		g.advance(1)
	}
	return nil
}

// penalizeNext makes the player next in turn order draw n cards.
func (g *Game) penalizeNext(n int) {
	victim := g.Players[g.stepIndex(1)]
	g.Draw(victim.ID, n)
}

// DrawAndPass gives the current player one card and passes the turn. This
// is the DrawCard request: drawing ends the turn.
func (g *Game) DrawAndPass(playerID uuid.UUID) error {
	if !g.Started {
		return models.ErrGameNotStarted
	}
	if g.Finished() {
		return models.ErrGameOver
	}
	if g.playerIndex(playerID) != g.CurrentPlayerIndex {
		return models.ErrNotYourTurn
	}
	g.Draw(playerID, 1)
	g.advance(1)
	return nil
}

// Declare is the combined announce/accuse action. The caller both protects
// itself (if it holds exactly one card) and penalizes every other
// undeclared one-card hand with a two-card draw, atomically, so two
// players can never accuse each other across a race window. Returns
// whether any state changed.
func (g *Game) Declare(playerID uuid.UUID) bool {
	if !g.Started || g.Finished() {
		return false
	}
	changed := false

	if p := g.PlayerByID(playerID); p != nil {
		if len(p.Hand) == 1 && !g.Safe[playerID] {
			g.Safe[playerID] = true
			changed = true
		}
	}

	for _, other := range g.Players {
		if other.ID == playerID {
			continue
		}
		if len(other.Hand) == 1 && !g.Safe[other.ID] {
			g.Draw(other.ID, 2)
			changed = true
		}
	}
	return changed
}

// RemovePlayer drops a session from the game, returning its cards to the
// bottom of the draw pile so no card ever leaves the 108-card set, and
// re-clamps the turn pointer against the remaining players. Returns false
// if the player was not present (removal is idempotent).
func (g *Game) RemovePlayer(playerID uuid.UUID) bool {
	idx := g.playerIndex(playerID)
	if idx == -1 {
		return false
	}
	p := g.Players[idx]

	if len(p.Hand) > 0 {
		returned := make([]models.Card, 0, len(p.Hand)+len(g.Deck))
		returned = append(returned, p.Hand...)
		g.Deck = append(returned, g.Deck...)
		p.Hand = nil
	}
	delete(g.Safe, playerID)

	g.Players = append(g.Players[:idx], g.Players[idx+1:]...)
	if len(g.Players) == 0 {
		g.CurrentPlayerIndex = 0
		return true
	}
	if idx < g.CurrentPlayerIndex {
		g.CurrentPlayerIndex--
	}
	g.CurrentPlayerIndex = mod(g.CurrentPlayerIndex, len(g.Players))
	return true
}

// stepIndex computes the player index steps seats away in the current
// direction, against the live player count.
func (g *Game) stepIndex(steps int) int {
	return mod(g.CurrentPlayerIndex+g.Direction*steps, len(g.Players))
}

func (g *Game) advance(steps int) {
	g.CurrentPlayerIndex = g.stepIndex(steps)
}

func mod(x, n int) int {
	return ((x % n) + n) % n
}
