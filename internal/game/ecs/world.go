package ecs

// remover is the type-erased view of a Store used for bulk destruction.
type remover interface {
	Remove(Entity)
	RemoveBatch([]Entity)
}

// World owns the entity arena, one store per component type, and the
// stable identity registry. It is not safe for concurrent use; the turn
// pipeline drives it from a single goroutine.
type World struct {
	arena    *Arena
	Identity *Identity

	Positions          *Store[Position]
	Renderables        *Store[Renderable]
	Movements          *Store[Movement]
	Colliders          *Store[Collider]
	Rooms              *Store[BelongsToRoom]
	ExitTriggers       *Store[ExitTrigger]
	CombatStats        *Store[CombatStats]
	Damages            *Store[AppliesDamage]
	Attacks            *Store[WantsToAttack]
	PendingDamage      *Store[PendingDamage]
	Dead               *Store[Dead]
	Descriptions       *Store[Description]
	Inventories        *Store[Inventory]
	Players            *Store[Player]
	AIs                *Store[AI]
	Pickups            *Store[PickupTrigger]
	Enemies            *Store[Enemy]
	ActiveDescriptions *Store[ActiveDescription]
	CombatLogs         *Store[CombatLog]
	Debug              *Store[Debug]

	stores []remover
}

// NewWorld returns an empty world.
func NewWorld() *World {
	w := &World{
		arena:              NewArena(),
		Identity:           NewIdentity(),
		Positions:          NewStore[Position](),
		Renderables:        NewStore[Renderable](),
		Movements:          NewStore[Movement](),
		Colliders:          NewStore[Collider](),
		Rooms:              NewStore[BelongsToRoom](),
		ExitTriggers:       NewStore[ExitTrigger](),
		CombatStats:        NewStore[CombatStats](),
		Damages:            NewStore[AppliesDamage](),
		Attacks:            NewStore[WantsToAttack](),
		PendingDamage:      NewStore[PendingDamage](),
		Dead:               NewStore[Dead](),
		Descriptions:       NewStore[Description](),
		Inventories:        NewStore[Inventory](),
		Players:            NewStore[Player](),
		AIs:                NewStore[AI](),
		Pickups:            NewStore[PickupTrigger](),
		Enemies:            NewStore[Enemy](),
		ActiveDescriptions: NewStore[ActiveDescription](),
		CombatLogs:         NewStore[CombatLog](),
		Debug:              NewStore[Debug](),
	}
	w.stores = []remover{
		w.Positions, w.Renderables, w.Movements, w.Colliders, w.Rooms,
		w.ExitTriggers, w.CombatStats, w.Damages, w.Attacks, w.PendingDamage,
		w.Dead, w.Descriptions, w.Inventories, w.Players, w.AIs, w.Pickups,
		w.Enemies, w.ActiveDescriptions, w.CombatLogs, w.Debug,
	}
	return w
}

// Create allocates a new entity with no components.
func (w *World) Create() Entity {
	return w.arena.Create()
}

// Alive reports whether e is a live handle.
func (w *World) Alive(e Entity) bool {
	return w.arena.Alive(e)
}

// Destroy removes e and all its components. Stale handles are ignored.
//
// Postcondition: e is not Alive and has no components or stable identity.
func (w *World) Destroy(e Entity) {
	if !w.arena.Alive(e) {
		return
	}
	for _, s := range w.stores {
		s.Remove(e)
	}
	w.Identity.Forget(e)
	w.arena.Release(e)
}

// DestroyBatch removes many entities; stale handles are skipped.
func (w *World) DestroyBatch(es []Entity) {
	live := make([]Entity, 0, len(es))
	for _, e := range es {
		if w.arena.Alive(e) {
			live = append(live, e)
		}
	}
	if len(live) == 0 {
		return
	}
	for _, s := range w.stores {
		s.RemoveBatch(live)
	}
	for _, e := range live {
		w.Identity.Forget(e)
		w.arena.Release(e)
	}
}

// Entities returns every live entity in slot order.
func (w *World) Entities() []Entity {
	return w.arena.Live()
}

// Count returns the number of live entities.
func (w *World) Count() int {
	return w.arena.Count()
}

// InRoom returns the entities owned by room, in slot order.
func (w *World) InRoom(room int) []Entity {
	var out []Entity
	for _, e := range w.Rooms.Entities() {
		if r, _ := w.Rooms.Get(e); r.Room == room {
			out = append(out, e)
		}
	}
	return out
}

// PlayerEntity returns the first player entity.
func (w *World) PlayerEntity() (Entity, bool) {
	players := w.Players.Entities()
	if len(players) == 0 {
		return None, false
	}
	return players[0], true
}

// At returns the entities positioned at p, in slot order.
func (w *World) At(p Position) []Entity {
	var out []Entity
	for _, e := range w.Positions.Entities() {
		if pos, _ := w.Positions.Get(e); pos == p {
			out = append(out, e)
		}
	}
	return out
}

// Name returns the display name of e, or "" if it has no description.
func (w *World) Name(e Entity) string {
	if d, ok := w.Descriptions.Get(e); ok {
		return d.Name
	}
	return ""
}
