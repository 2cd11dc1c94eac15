// internal/room/room.go
package room

import (
	"sync"

	"github.com/google/uuid"

	"github.com/mwalan/Trabalho-2-Redes/internal/game"
	"github.com/mwalan/Trabalho-2-Redes/internal/models"
)

// MaxPlayers caps a room at four seats.
const MaxPlayers = 4

// StateNotifier delivers a per-recipient snapshot to one session. The
// registry wires it in at room creation; it is always invoked after the
// room lock has been released.
type StateNotifier func(p *models.Player, snap game.Snapshot)

// Room is one isolated game instance: a name, a host, an ordered session
// list (owned by the embedded game) and the game state machine itself. All
// mutations are serialized through Mu. Each room has its own lock, so rooms
// do not contend with each other.
type Room struct {
	Name string

	// Host is the session with authority to start the game. The first
	// joiner becomes host; on departure the earliest remaining joiner
	// inherits it.
	Host uuid.UUID

	Game *game.Game

	// OnEmpty fires after the last session leaves; the registry uses it
	// to destroy the room.
	OnEmpty func(name string)

	notify StateNotifier

	// closed is set when the last session leaves, just before OnEmpty
	// fires. A handler may still hold a pointer to the room after the
	// registry dropped it; closed keeps such a zombie from accepting a
	// join while its name is already free for reuse.
	closed bool

	Mu sync.Mutex
}

// NewRoom allocates a waiting room with a freshly shuffled game.
func NewRoom(name string, notify StateNotifier) *Room {
	return &Room{
		Name:   name,
		Game:   game.NewGame(),
		notify: notify,
	}
}

// delivery is a snapshot queued for a session while the lock was held and
// sent after it was released.
type delivery struct {
	player *models.Player
	snap   game.Snapshot
}

// statesLocked builds one redacted snapshot per seated session.
// Assumes the lock is held.
func (r *Room) statesLocked() []delivery {
	out := make([]delivery, 0, len(r.Game.Players))
	for _, p := range r.Game.Players {
		snap := r.Game.SnapshotFor(p.ID)
		snap.Room = r.Name
		snap.Host = r.Host
		out = append(out, delivery{player: p, snap: snap})
	}
	return out
}

// deliver pushes queued snapshots out. Must be called without the lock: a
// slow or dead recipient only affects its own outbound queue, and its
// eventual removal runs through the normal disconnect path.
func (r *Room) deliver(out []delivery) {
	if r.notify == nil {
		return
	}
	for _, d := range out {
		r.notify(d.player, d.snap)
	}
}

// BroadcastState sends every seated session its current view.
func (r *Room) BroadcastState() {
	r.Mu.Lock()
	out := r.statesLocked()
	r.Mu.Unlock()
	r.deliver(out)
}

// Join seats a new session: appends it to the turn order, assigns the host
// if the seat is the first one, deals the initial hand and broadcasts the
// updated state.
func (r *Room) Join(p *models.Player) error {
	r.Mu.Lock()
	if r.closed {
		r.Mu.Unlock()
		return models.ErrRoomNotFound
	}
	if r.Game.Started {
		r.Mu.Unlock()
		return models.ErrGameInProgress
	}
	if r.Game.PlayerByID(p.ID) != nil {
		r.Mu.Unlock()
		return models.ErrAlreadySeated
	}
	if len(r.Game.Players) >= MaxPlayers {
		r.Mu.Unlock()
		return models.ErrRoomFull
	}

	r.Game.AddPlayer(p)
	if r.Host == uuid.Nil {
		r.Host = p.ID
	}
	r.Game.Draw(p.ID, game.InitialHandSize)

	out := r.statesLocked()
	r.Mu.Unlock()
	r.deliver(out)
	return nil
}

// Leave removes a session from the room. It is the single cleanup path for
// both a voluntary leave and a dropped connection, and it is idempotent: a
// second call for the same session is a no-op. The leaver's host status
// migrates to the earliest remaining joiner; an emptied room is destroyed
// via OnEmpty.
func (r *Room) Leave(sessionID uuid.UUID) {
	r.Mu.Lock()
	if !r.Game.RemovePlayer(sessionID) {
		r.Mu.Unlock()
		return
	}
	if r.Host == sessionID {
		if len(r.Game.Players) > 0 {
			r.Host = r.Game.Players[0].ID
		} else {
			r.Host = uuid.Nil
		}
	}

	empty := len(r.Game.Players) == 0
	var out []delivery
	if empty {
		r.closed = true
	} else {
		out = r.statesLocked()
	}
	onEmpty := r.OnEmpty
	r.Mu.Unlock()

	if empty {
		if onEmpty != nil {
			onEmpty(r.Name)
		}
		return
	}
	r.deliver(out)
}

// Start flips the room into play. Only the host may start, and only with
// at least two seated players.
func (r *Room) Start(requester uuid.UUID) error {
	r.Mu.Lock()
	if requester != r.Host {
		r.Mu.Unlock()
		return models.ErrNotHost
	}
	if err := r.Game.Start(); err != nil {
		r.Mu.Unlock()
		return err
	}
	out := r.statesLocked()
	r.Mu.Unlock()
	r.deliver(out)
	return nil
}

// Play applies a card play for the session and broadcasts on success.
func (r *Room) Play(sessionID uuid.UUID, handIndex int, chosenColor models.Color) error {
	r.Mu.Lock()
	if err := r.Game.PlayCard(sessionID, handIndex, chosenColor); err != nil {
		r.Mu.Unlock()
		return err
	}
	out := r.statesLocked()
	r.Mu.Unlock()
	r.deliver(out)
	return nil
}

// DrawCard gives the current player one card, passes the turn and
// broadcasts on success.
func (r *Room) DrawCard(sessionID uuid.UUID) error {
	r.Mu.Lock()
	if err := r.Game.DrawAndPass(sessionID); err != nil {
		r.Mu.Unlock()
		return err
	}
	out := r.statesLocked()
	r.Mu.Unlock()
	r.deliver(out)
	return nil
}

// Declare runs the combined announce/accuse action and broadcasts only
// when it changed anything.
func (r *Room) Declare(sessionID uuid.UUID) bool {
	r.Mu.Lock()
	changed := r.Game.Declare(sessionID)
	var out []delivery
	if changed {
		out = r.statesLocked()
	}
	r.Mu.Unlock()
	if changed {
		r.deliver(out)
	}
	return changed
}
