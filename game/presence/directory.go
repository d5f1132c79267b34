package presence

import (
	"sort"
	"sync"

	"github.com/wricardo/royal-game-of-ur/game/engine"
	"github.com/wricardo/royal-game-of-ur/game/service"
)

type entry struct {
	name   string
	handle service.Handle
}

// Directory is the bidirectional mapping between stable player identity
// and active connection handle.
type Directory struct {
	entries map[engine.PlayerID]*entry
	mu      sync.RWMutex
}

// NewDirectory creates an empty presence directory.
func NewDirectory() *Directory {
	return &Directory{
		entries: make(map[engine.PlayerID]*entry),
	}
}

// Bind associates the identity with a live handle, replacing any previous
// one.
func (d *Directory) Bind(id engine.PlayerID, name string, h service.Handle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.entries[id] = &entry{name: name, handle: h}
}

// Unbind removes the identity's binding.
func (d *Directory) Unbind(id engine.PlayerID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.entries, id)
}

// Resolve returns the identity's live handle, or NullHandle if the player
// is offline or unknown.
func (d *Directory) Resolve(id engine.PlayerID) service.Handle {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if e, ok := d.entries[id]; ok && e.handle != nil {
		return e.handle
	}
	return service.NullHandle{}
}

// Name returns the display name bound with the identity.
func (d *Directory) Name(id engine.PlayerID) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	e, ok := d.entries[id]
	if !ok {
		return "", false
	}
	return e.name, true
}

// Online returns all currently bound identities, ordered by id.
func (d *Directory) Online() []service.PlayerInfo {
	d.mu.RLock()
	defer d.mu.RUnlock()

	result := make([]service.PlayerInfo, 0, len(d.entries))
	for id, e := range d.entries {
		result = append(result, service.PlayerInfo{ID: id, Name: e.name})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// Broadcast emits an event to every online player. Handles are collected
// under the read lock and emitted outside it, so a slow handle cannot
// stall bind/unbind.
func (d *Directory) Broadcast(event string, payload any) {
	d.mu.RLock()
	handles := make([]service.Handle, 0, len(d.entries))
	for _, e := range d.entries {
		if e.handle != nil {
			handles = append(handles, e.handle)
		}
	}
	d.mu.RUnlock()

	for _, h := range handles {
		h.Emit(event, payload)
	}
}
