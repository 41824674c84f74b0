// Package ecs provides the entity arena, typed component stores, and the
// stable identity registry used by the simulation.
package ecs

import "sort"

// Entity encodes a 32-bit slot index in the lower bits and a 32-bit
// generation in the upper bits. The generation increments on destroy so
// stale handles never resolve to a reused slot. The zero Entity is never
// issued and means "no entity".
type Entity uint64

// None is the zero handle.
const None Entity = 0

func newEntity(index, generation uint32) Entity {
	return Entity(uint64(generation)<<32 | uint64(index))
}

// Index returns the slot index.
func (e Entity) Index() uint32 { return uint32(e) }

// Generation returns the slot generation.
func (e Entity) Generation() uint32 { return uint32(e >> 32) }

// Arena allocates entity handles with generational indices and a free list.
type Arena struct {
	generations []uint32
	alive       []bool
	freeList    []uint32
	count       int
}

// NewArena returns an empty arena.
func NewArena() *Arena {
	return &Arena{
		generations: make([]uint32, 0, 512),
		alive:       make([]bool, 0, 512),
	}
}

// Create allocates a live handle.
//
// Postcondition: The returned handle is Alive and distinct from every other live handle.
func (a *Arena) Create() Entity {
	a.count++
	if n := len(a.freeList); n > 0 {
		idx := a.freeList[n-1]
		a.freeList = a.freeList[:n-1]
		a.alive[idx] = true
		return newEntity(idx, a.generations[idx])
	}
	idx := uint32(len(a.generations))
	// generation starts at 1 so no live handle equals None
	a.generations = append(a.generations, 1)
	a.alive = append(a.alive, true)
	return newEntity(idx, 1)
}

// Alive reports whether e refers to a live slot of the same generation.
func (a *Arena) Alive(e Entity) bool {
	idx := e.Index()
	if int(idx) >= len(a.generations) {
		return false
	}
	return a.alive[idx] && a.generations[idx] == e.Generation()
}

// Release frees e's slot. Stale or already-released handles are ignored.
//
// Postcondition: Returns true if e was live; e is no longer Alive.
func (a *Arena) Release(e Entity) bool {
	if !a.Alive(e) {
		return false
	}
	idx := e.Index()
	a.alive[idx] = false
	a.generations[idx]++
	a.freeList = append(a.freeList, idx)
	a.count--
	return true
}

// Count returns the number of live entities.
func (a *Arena) Count() int {
	return a.count
}

// Live returns every live handle in slot order.
func (a *Arena) Live() []Entity {
	out := make([]Entity, 0, a.count)
	for idx, ok := range a.alive {
		if ok {
			out = append(out, newEntity(uint32(idx), a.generations[idx]))
		}
	}
	return out
}

// SortByIndex orders handles by slot index in place.
func SortByIndex(es []Entity) {
	sort.Slice(es, func(i, j int) bool { return es[i].Index() < es[j].Index() })
}
