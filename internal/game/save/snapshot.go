// Package save captures the session into a Snapshot and restores it. The
// durable stores live under internal/storage.
package save

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/castle/internal/game/overlay"
)

// ErrNoSnapshot is returned by Store.Load when nothing has been saved.
var ErrNoSnapshot = errors.New("no saved session")

// Store persists snapshots. Load returns the most recent one.
type Store interface {
	Save(ctx context.Context, snap Snapshot) error
	Load(ctx context.Context) (Snapshot, error)
}

// Getter is implemented by stores that keep more than one snapshot.
type Getter interface {
	// Get returns the snapshot with the given id, or ErrNoSnapshot.
	Get(ctx context.Context, id uuid.UUID) (Snapshot, error)
}

// Point is a saved grid position.
type Point struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// Stats is saved hit-point state.
type Stats struct {
	Health    int `yaml:"health"`
	MaxHealth int `yaml:"max_health"`
}

// Describe is a saved description.
type Describe struct {
	Key  string `yaml:"key"`
	Name string `yaml:"name"`
	Text string `yaml:"text"`
}

// Entity is one persistable entity. Absent components are nil or zero.
type Entity struct {
	ID          uint64    `yaml:"id"`
	Player      bool      `yaml:"player,omitempty"`
	Position    *Point    `yaml:"position,omitempty"`
	Glyph       rune      `yaml:"glyph,omitempty"`
	Z           int       `yaml:"z,omitempty"`
	Pickup      string    `yaml:"pickup,omitempty"`
	Room        *int      `yaml:"room,omitempty"`
	Description *Describe `yaml:"description,omitempty"`
	Enemy       string    `yaml:"enemy,omitempty"`
	Stats       *Stats    `yaml:"stats,omitempty"`
	Damage      *int      `yaml:"damage,omitempty"`
	Inventory   []string  `yaml:"inventory,omitempty"`
	Mover       bool      `yaml:"mover,omitempty"`
	Collider    bool      `yaml:"collider,omitempty"`
	AI          bool      `yaml:"ai,omitempty"`
	Debug       bool      `yaml:"debug,omitempty"`
	LogLines    int       `yaml:"log_lines,omitempty"`
}

// Snapshot is a whole saved session.
type Snapshot struct {
	ID        uuid.UUID        `yaml:"id"`
	SavedAt   time.Time        `yaml:"saved_at"`
	Room      int              `yaml:"room"`
	Redirects map[int]int      `yaml:"redirects,omitempty"`
	Overlay   []overlay.Record `yaml:"overlay,omitempty"`
	Entities  []Entity         `yaml:"entities"`
}

// Marshal encodes snap as YAML.
func Marshal(snap Snapshot) ([]byte, error) {
	data, err := yaml.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot %s: %w", snap.ID, err)
	}
	return data, nil
}

// Unmarshal decodes a YAML snapshot.
func Unmarshal(data []byte) (Snapshot, error) {
	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decoding snapshot: %w", err)
	}
	return snap, nil
}
