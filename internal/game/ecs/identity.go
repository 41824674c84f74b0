package ecs

// StableID is a durable identifier for persistable entities. Unlike an
// Entity handle it survives save and load.
type StableID uint64

// Identity binds stable identifiers to live entities.
type Identity struct {
	next     StableID
	byID     map[StableID]Entity
	byEntity map[Entity]StableID
}

// NewIdentity returns an empty registry. The first assigned identifier is 1.
func NewIdentity() *Identity {
	return &Identity{
		next:     1,
		byID:     make(map[StableID]Entity),
		byEntity: make(map[Entity]StableID),
	}
}

// Assign gives e a fresh stable identifier, or returns its existing one.
func (r *Identity) Assign(e Entity) StableID {
	if id, ok := r.byEntity[e]; ok {
		return id
	}
	id := r.next
	r.next++
	r.byID[id] = e
	r.byEntity[e] = id
	return id
}

// Bind attaches a known identifier to e, replacing any prior binding of
// either side. Future Assign calls never reissue id.
func (r *Identity) Bind(e Entity, id StableID) {
	if old, ok := r.byID[id]; ok {
		delete(r.byEntity, old)
	}
	if old, ok := r.byEntity[e]; ok {
		delete(r.byID, old)
	}
	r.byID[id] = e
	r.byEntity[e] = id
	if id >= r.next {
		r.next = id + 1
	}
}

// Lookup returns the entity bound to id.
func (r *Identity) Lookup(id StableID) (Entity, bool) {
	e, ok := r.byID[id]
	return e, ok
}

// ID returns the stable identifier bound to e.
func (r *Identity) ID(e Entity) (StableID, bool) {
	id, ok := r.byEntity[e]
	return id, ok
}

// Forget drops e's binding.
func (r *Identity) Forget(e Entity) {
	if id, ok := r.byEntity[e]; ok {
		delete(r.byID, id)
		delete(r.byEntity, e)
	}
}

// Bound returns every bound entity in slot order.
func (r *Identity) Bound() []Entity {
	out := make([]Entity, 0, len(r.byEntity))
	for e := range r.byEntity {
		out = append(out, e)
	}
	SortByIndex(out)
	return out
}

// Len returns the number of bindings.
func (r *Identity) Len() int {
	return len(r.byID)
}
