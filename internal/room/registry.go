// internal/room/registry.go
package room

import (
	"sort"
	"sync"

	"github.com/mwalan/Trabalho-2-Redes/internal/models"
)

// Registry is the process-wide name -> room map. Its lock guards only the
// map itself; per-room state is guarded by each room's own lock.
type Registry struct {
	mu     sync.Mutex
	rooms  map[string]*Room
	notify StateNotifier
}

// NewRegistry builds an empty registry whose rooms deliver snapshots
// through notify.
func NewRegistry(notify StateNotifier) *Registry {
	return &Registry{
		rooms:  make(map[string]*Room),
		notify: notify,
	}
}

// Create registers a new room under a unique name. The room's OnEmpty hook
// is wired to delete it from the registry when the last session leaves.
func (reg *Registry) Create(name string) (*Room, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, ok := reg.rooms[name]; ok {
		return nil, models.ErrRoomExists
	}

	r := NewRoom(name, reg.notify)
	r.OnEmpty = reg.Delete
	reg.rooms[name] = r
	return r, nil
}

// Get looks up a room by name.
func (reg *Registry) Get(name string) (*Room, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	r, ok := reg.rooms[name]
	if !ok {
		return nil, models.ErrRoomNotFound
	}
	return r, nil
}

// Delete removes a room from the registry. Idempotent.
func (reg *Registry) Delete(name string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	delete(reg.rooms, name)
}

// RoomInfo is one entry of the public room listing.
type RoomInfo struct {
	Name    string `json:"name"`
	Players int    `json:"players"`
	Status  string `json:"status"`
}

// List returns every room's name, seat count and phase, sorted by name.
// The registry lock is held only long enough to copy the map; each room is
// then locked briefly on its own, so a busy room never stalls the whole
// listing.
func (reg *Registry) List() []RoomInfo {
	reg.mu.Lock()
	rooms := make([]*Room, 0, len(reg.rooms))
	for _, r := range reg.rooms {
		rooms = append(rooms, r)
	}
	reg.mu.Unlock()

	out := make([]RoomInfo, 0, len(rooms))
	for _, r := range rooms {
		r.Mu.Lock()
		info := RoomInfo{
			Name:    r.Name,
			Players: len(r.Game.Players),
		}
		if r.Game.Started {
			info.Status = "playing"
		} else {
			info.Status = "waiting"
		}
		r.Mu.Unlock()
		out = append(out, info)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
