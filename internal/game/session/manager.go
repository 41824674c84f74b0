package session

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Entry is a registered game and the client playing it.
type Entry struct {
	Game       *Game
	RemoteAddr string
	Started    time.Time
}

// Manager tracks every game currently being played.
// All methods are safe for concurrent use.
type Manager struct {
	mu    sync.RWMutex
	games map[uuid.UUID]*Entry
	now   func() time.Time
}

// NewManager creates an empty session Manager.
func NewManager() *Manager {
	return &Manager{
		games: make(map[uuid.UUID]*Entry),
		now:   time.Now,
	}
}

// Add registers g as played from remoteAddr.
//
// Precondition: g is non-nil.
// Postcondition: Returns the entry, or an error if g.ID is already registered.
func (m *Manager) Add(g *Game, remoteAddr string) (*Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.games[g.ID]; exists {
		return nil, fmt.Errorf("session %s already registered", g.ID)
	}
	e := &Entry{Game: g, RemoteAddr: remoteAddr, Started: m.now()}
	m.games[g.ID] = e
	return e, nil
}

// Remove unregisters a game. It does not close it.
//
// Postcondition: Returns an error if id is not registered.
func (m *Manager) Remove(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.games[id]; !exists {
		return fmt.Errorf("session %s not found", id)
	}
	delete(m.games, id)
	return nil
}

// Get returns the entry for id.
//
// Postcondition: Returns (entry, true) if found, or (nil, false) otherwise.
func (m *Manager) Get(id uuid.UUID) (*Entry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.games[id]
	return e, ok
}

// Count returns the number of registered games.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.games)
}

// IDs returns the registered session ids in lexical order.
func (m *Manager) IDs() []uuid.UUID {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]uuid.UUID, 0, len(m.games))
	for id := range m.games {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}
