// internal/room/room_test.go
package room

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwalan/Trabalho-2-Redes/internal/game"
	"github.com/mwalan/Trabalho-2-Redes/internal/models"
)

// mockNotifier records every snapshot delivery instead of hitting the wire.
type mockNotifier struct {
	mu         sync.Mutex
	deliveries map[uuid.UUID][]game.Snapshot
}

func newMockNotifier() *mockNotifier {
	return &mockNotifier{deliveries: make(map[uuid.UUID][]game.Snapshot)}
}

func (mn *mockNotifier) notify(p *models.Player, snap game.Snapshot) {
	mn.mu.Lock()
	defer mn.mu.Unlock()
	mn.deliveries[p.ID] = append(mn.deliveries[p.ID], snap)
}

func (mn *mockNotifier) last(id uuid.UUID) *game.Snapshot {
	mn.mu.Lock()
	defer mn.mu.Unlock()
	snaps := mn.deliveries[id]
	if len(snaps) == 0 {
		return nil
	}
	return &snaps[len(snaps)-1]
}

func newTestPlayer() *models.Player {
	return &models.Player{ID: uuid.New()}
}

func TestCreateJoinStart(t *testing.T) {
	mn := newMockNotifier()
	reg := NewRegistry(mn.notify)

	r, err := reg.Create("mesa")
	require.NoError(t, err)

	p1 := newTestPlayer()
	p2 := newTestPlayer()
	require.NoError(t, r.Join(p1))
	require.NoError(t, r.Join(p2))

	assert.Equal(t, p1.ID, r.Host)
	assert.Len(t, p1.Hand, game.InitialHandSize)
	assert.Len(t, p2.Hand, game.InitialHandSize)

	// Only the host may start.
	assert.ErrorIs(t, r.Start(p2.ID), models.ErrNotHost)
	require.NoError(t, r.Start(p1.ID))
	assert.True(t, r.Game.Started)

	// Turn order follows join order.
	assert.Equal(t, p1.ID, r.Game.Players[r.Game.CurrentPlayerIndex].ID)

	snap := mn.last(p1.ID)
	require.NotNil(t, snap)
	assert.Equal(t, "mesa", snap.Room)
	assert.Equal(t, p1.ID, snap.Host)
	assert.True(t, snap.Started)
}

func TestCreateDuplicateName(t *testing.T) {
	reg := NewRegistry(nil)
	_, err := reg.Create("mesa")
	require.NoError(t, err)

	_, err = reg.Create("mesa")
	assert.ErrorIs(t, err, models.ErrRoomExists)
}

func TestJoinFullRoom(t *testing.T) {
	reg := NewRegistry(nil)
	r, err := reg.Create("mesa")
	require.NoError(t, err)

	for i := 0; i < MaxPlayers; i++ {
		require.NoError(t, r.Join(newTestPlayer()))
	}
	assert.ErrorIs(t, r.Join(newTestPlayer()), models.ErrRoomFull)
}

func TestJoinAfterStart(t *testing.T) {
	reg := NewRegistry(nil)
	r, err := reg.Create("mesa")
	require.NoError(t, err)

	host := newTestPlayer()
	require.NoError(t, r.Join(host))
	require.NoError(t, r.Join(newTestPlayer()))
	require.NoError(t, r.Start(host.ID))

	assert.ErrorIs(t, r.Join(newTestPlayer()), models.ErrGameInProgress)
}

func TestStartNeedsTwoPlayers(t *testing.T) {
	reg := NewRegistry(nil)
	r, err := reg.Create("mesa")
	require.NoError(t, err)

	host := newTestPlayer()
	require.NoError(t, r.Join(host))
	assert.ErrorIs(t, r.Start(host.ID), models.ErrNotEnoughPlayers)
}

func TestHostMigration(t *testing.T) {
	mn := newMockNotifier()
	reg := NewRegistry(mn.notify)
	r, err := reg.Create("mesa")
	require.NoError(t, err)

	p1 := newTestPlayer()
	p2 := newTestPlayer()
	p3 := newTestPlayer()
	require.NoError(t, r.Join(p1))
	require.NoError(t, r.Join(p2))
	require.NoError(t, r.Join(p3))
	require.NoError(t, r.Start(p1.ID))

	r.Leave(p1.ID)

	// The earliest remaining joiner inherits the host role and the game
	// carries on without the leaver.
	assert.Equal(t, p2.ID, r.Host)
	assert.Len(t, r.Game.Players, 2)

	snap := mn.last(p2.ID)
	require.NotNil(t, snap)
	assert.Equal(t, p2.ID, snap.Host)
	assert.Len(t, snap.Players, 2)
}

func TestLeaveIsIdempotent(t *testing.T) {
	reg := NewRegistry(nil)
	r, err := reg.Create("mesa")
	require.NoError(t, err)

	p1 := newTestPlayer()
	p2 := newTestPlayer()
	require.NoError(t, r.Join(p1))
	require.NoError(t, r.Join(p2))

	r.Leave(p1.ID)
	r.Leave(p1.ID)

	assert.Len(t, r.Game.Players, 1)
	assert.Equal(t, p2.ID, r.Host)
}

func TestJoinAfterRoomDestroyed(t *testing.T) {
	reg := NewRegistry(nil)
	r, err := reg.Create("mesa")
	require.NoError(t, err)

	p1 := newTestPlayer()
	require.NoError(t, r.Join(p1))
	r.Leave(p1.ID)

	// A handler may still hold the pointer it got before the last leave
	// emptied the room. The dead room must not accept a late join; the
	// name is already free and a fresh room may claim it.
	assert.ErrorIs(t, r.Join(newTestPlayer()), models.ErrRoomNotFound)
	assert.Empty(t, r.Game.Players)

	fresh, err := reg.Create("mesa")
	require.NoError(t, err)
	require.NoError(t, fresh.Join(newTestPlayer()))

	got, err := reg.Get("mesa")
	require.NoError(t, err)
	assert.Same(t, fresh, got)
}

func TestJoinSameSessionTwice(t *testing.T) {
	reg := NewRegistry(nil)
	r, err := reg.Create("mesa")
	require.NoError(t, err)

	p := newTestPlayer()
	require.NoError(t, r.Join(p))

	// A resumed session must not end up seated twice, e.g. when a
	// reconnecting client joins before its ghost predecessor's ping
	// failure has cleaned the old seat up.
	dup := &models.Player{ID: p.ID}
	assert.ErrorIs(t, r.Join(dup), models.ErrAlreadySeated)
	assert.Len(t, r.Game.Players, 1)
}

func TestEmptyRoomIsDestroyed(t *testing.T) {
	reg := NewRegistry(nil)
	r, err := reg.Create("mesa")
	require.NoError(t, err)

	p := newTestPlayer()
	require.NoError(t, r.Join(p))
	r.Leave(p.ID)

	_, err = reg.Get("mesa")
	assert.ErrorIs(t, err, models.ErrRoomNotFound)

	// The freed name is reusable immediately.
	_, err = reg.Create("mesa")
	assert.NoError(t, err)
}

func TestListRooms(t *testing.T) {
	reg := NewRegistry(nil)

	waiting, err := reg.Create("b-waiting")
	require.NoError(t, err)
	require.NoError(t, waiting.Join(newTestPlayer()))

	playing, err := reg.Create("a-playing")
	require.NoError(t, err)
	host := newTestPlayer()
	require.NoError(t, playing.Join(host))
	require.NoError(t, playing.Join(newTestPlayer()))
	require.NoError(t, playing.Start(host.ID))

	list := reg.List()
	require.Len(t, list, 2)

	assert.Equal(t, RoomInfo{Name: "a-playing", Players: 2, Status: "playing"}, list[0])
	assert.Equal(t, RoomInfo{Name: "b-waiting", Players: 1, Status: "waiting"}, list[1])
}

func TestPlayErrorDoesNotBroadcast(t *testing.T) {
	mn := newMockNotifier()
	reg := NewRegistry(mn.notify)
	r, err := reg.Create("mesa")
	require.NoError(t, err)

	p1 := newTestPlayer()
	p2 := newTestPlayer()
	require.NoError(t, r.Join(p1))
	require.NoError(t, r.Join(p2))
	require.NoError(t, r.Start(p1.ID))

	mn.mu.Lock()
	before := len(mn.deliveries[p2.ID])
	mn.mu.Unlock()

	// Not p2's turn: the rejection goes back to the caller only.
	err = r.Play(p2.ID, 0, "")
	assert.ErrorIs(t, err, models.ErrNotYourTurn)

	mn.mu.Lock()
	after := len(mn.deliveries[p2.ID])
	mn.mu.Unlock()
	assert.Equal(t, before, after)
}

func TestDrawCardPassesTurn(t *testing.T) {
	reg := NewRegistry(nil)
	r, err := reg.Create("mesa")
	require.NoError(t, err)

	p1 := newTestPlayer()
	p2 := newTestPlayer()
	require.NoError(t, r.Join(p1))
	require.NoError(t, r.Join(p2))
	require.NoError(t, r.Start(p1.ID))

	require.NoError(t, r.DrawCard(p1.ID))
	assert.Len(t, p1.Hand, game.InitialHandSize+1)
	assert.Equal(t, p2.ID, r.Game.Players[r.Game.CurrentPlayerIndex].ID)
}

func TestDeclareThroughRoom(t *testing.T) {
	mn := newMockNotifier()
	reg := NewRegistry(mn.notify)
	r, err := reg.Create("mesa")
	require.NoError(t, err)

	p1 := newTestPlayer()
	p2 := newTestPlayer()
	require.NoError(t, r.Join(p1))
	require.NoError(t, r.Join(p2))
	require.NoError(t, r.Start(p1.ID))

	// Nothing to announce or accuse: no broadcast either.
	mn.mu.Lock()
	before := len(mn.deliveries[p1.ID])
	mn.mu.Unlock()
	assert.False(t, r.Declare(p1.ID))
	mn.mu.Lock()
	assert.Equal(t, before, len(mn.deliveries[p1.ID]))
	mn.mu.Unlock()

	// Force p2 down to one undeclared card, then p1 accuses.
	r.Mu.Lock()
	r.Game.Deck = append(r.Game.Deck, p2.Hand[1:]...)
	p2.Hand = p2.Hand[:1]
	r.Mu.Unlock()

	assert.True(t, r.Declare(p1.ID))
	assert.Len(t, p2.Hand, 3)

	snap := mn.last(p1.ID)
	require.NotNil(t, snap)
}
