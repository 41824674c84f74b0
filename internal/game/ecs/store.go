package ecs

// Store is a container for one component type, keyed by entity.
// Iteration order follows insertion; removal preserves the order of the rest.
type Store[T any] struct {
	components map[Entity]T
	entities   []Entity
}

// NewStore creates an empty component store for T.
func NewStore[T any]() *Store[T] {
	return &Store[T]{
		components: make(map[Entity]T),
		entities:   make([]Entity, 0, 64),
	}
}

// Set inserts or replaces the component for e.
func (s *Store[T]) Set(e Entity, val T) {
	if _, exists := s.components[e]; !exists {
		s.entities = append(s.entities, e)
	}
	s.components[e] = val
}

// Get returns the component for e.
func (s *Store[T]) Get(e Entity) (T, bool) {
	val, ok := s.components[e]
	return val, ok
}

// Has reports whether e has the component.
func (s *Store[T]) Has(e Entity) bool {
	_, ok := s.components[e]
	return ok
}

// Remove deletes e's component if present.
func (s *Store[T]) Remove(e Entity) {
	if _, exists := s.components[e]; !exists {
		return
	}
	delete(s.components, e)
	for i, entity := range s.entities {
		if entity == e {
			s.entities = append(s.entities[:i], s.entities[i+1:]...)
			break
		}
	}
}

// RemoveBatch deletes many entities in a single pass.
func (s *Store[T]) RemoveBatch(entities []Entity) {
	if len(entities) == 0 || len(s.components) == 0 {
		return
	}
	removed := 0
	for _, e := range entities {
		if _, exists := s.components[e]; exists {
			delete(s.components, e)
			removed++
		}
	}
	if removed == 0 {
		return
	}
	writeIdx := 0
	for _, e := range s.entities {
		if _, keep := s.components[e]; keep {
			s.entities[writeIdx] = e
			writeIdx++
		}
	}
	s.entities = s.entities[:writeIdx]
}

// Entities returns a copy of every entity holding the component, sorted by slot index.
func (s *Store[T]) Entities() []Entity {
	out := make([]Entity, len(s.entities))
	copy(out, s.entities)
	SortByIndex(out)
	return out
}

// Len returns the number of entities holding the component.
func (s *Store[T]) Len() int {
	return len(s.entities)
}

// Clear removes every component.
func (s *Store[T]) Clear() {
	s.components = make(map[Entity]T)
	s.entities = s.entities[:0]
}
