package rooms

import (
	"strings"
	"sync"

	"github.com/samber/lo"
	"golang.org/x/exp/slices"
)

// Hooks observe room creation and destruction. They run after the registry
// lock is released, so they may call back into the registry.
type Hooks struct {
	Created   func(code string)
	Destroyed func(code string)
}

// Registry maps room codes to their members. A connection is a member of at
// most one room.
type Registry struct {
	sync.RWMutex
	rooms    map[string][]string
	memberOf map[string]string
	hooks    Hooks
}

func NewRegistry(hooks Hooks) *Registry {
	return &Registry{
		rooms:    make(map[string][]string),
		memberOf: make(map[string]string),
		hooks:    hooks,
	}
}

// NormalizeCode makes room codes case-insensitive.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Join adds connID to the room, creating the room if it doesn't exist. A
// connection already in another room is moved; the code of the room it left
// is returned with moved set.
func (r *Registry) Join(code, connID string) (previous string, moved bool) {
	code = NormalizeCode(code)

	var created, destroyed []string

	func() {
		r.Lock()
		defer r.Unlock()

		if current, ok := r.memberOf[connID]; ok {
			if current == code {
				return
			}
			previous, moved = current, true
			if r.remove(current, connID) {
				destroyed = append(destroyed, current)
			}
		}

		room, ok := r.rooms[code]
		if !ok {
			room = make([]string, 0, 4)
			created = append(created, code)
		}

		r.rooms[code] = append(room, connID)
		r.memberOf[connID] = code
	}()

	r.notify(created, destroyed)

	return previous, moved
}

// Leave removes connID from its room and returns the code of that room.
func (r *Registry) Leave(connID string) (string, bool) {
	var destroyed []string

	code, ok := func() (string, bool) {
		r.Lock()
		defer r.Unlock()

		code, ok := r.memberOf[connID]
		if !ok {
			return "", false
		}

		if r.remove(code, connID) {
			destroyed = append(destroyed, code)
		}

		return code, true
	}()

	r.notify(nil, destroyed)

	return code, ok
}

// remove deletes connID from the room and reports whether the room was torn
// down. The caller holds the lock.
func (r *Registry) remove(code, connID string) bool {
	delete(r.memberOf, connID)

	room := r.rooms[code]
	if index := slices.Index(room, connID); index >= 0 {
		room = slices.Delete(room, index, index+1)
	}

	if len(room) == 0 {
		delete(r.rooms, code)
		return true
	}

	r.rooms[code] = room
	return false
}

func (r *Registry) notify(created, destroyed []string) {
	if r.hooks.Destroyed != nil {
		lo.ForEach(destroyed, func(code string, _ int) { r.hooks.Destroyed(code) })
	}
	if r.hooks.Created != nil {
		lo.ForEach(created, func(code string, _ int) { r.hooks.Created(code) })
	}
}

// MembersOf returns a copy of the room's members in join order.
func (r *Registry) MembersOf(code string) []string {
	r.RLock()
	defer r.RUnlock()

	return slices.Clone(r.rooms[NormalizeCode(code)])
}

func (r *Registry) RoomOf(connID string) (string, bool) {
	r.RLock()
	defer r.RUnlock()

	code, ok := r.memberOf[connID]
	return code, ok
}

func (r *Registry) Exists(code string) bool {
	r.RLock()
	defer r.RUnlock()

	_, ok := r.rooms[NormalizeCode(code)]
	return ok
}

func (r *Registry) Codes() []string {
	r.RLock()
	defer r.RUnlock()

	codes := lo.Keys(r.rooms)
	slices.Sort(codes)

	return codes
}

func (r *Registry) Len() int {
	r.RLock()
	defer r.RUnlock()

	return len(r.rooms)
}
