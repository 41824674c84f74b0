// Package session assembles independent games from shared static content and
// tracks the games that are currently being played.
package session

import (
	"fmt"

	"github.com/cory-johannsen/castle/internal/config"
	"github.com/cory-johannsen/castle/internal/game/inventory"
	"github.com/cory-johannsen/castle/internal/game/npc"
	"github.com/cory-johannsen/castle/internal/game/overlay"
	"github.com/cory-johannsen/castle/internal/game/spawn"
	"github.com/cory-johannsen/castle/internal/game/world"
)

// Content is the data every game is built from. It is never mutated once
// loaded and may be shared between goroutines.
type Content struct {
	Table   *world.Table
	Items   *inventory.Catalog
	Enemies *npc.Catalog
	// Overlay holds the pristine dynamic records. Each game restores a private copy.
	Overlay []overlay.Record
	// ScriptsDir holds Lua item hooks. Empty disables scripting.
	ScriptsDir string
	// ScriptLimit caps opcodes per hook call. 0 uses the scripting default.
	ScriptLimit int
	StartRoom   int
	Player      spawn.PlayerSpec
}

// LoadContent reads the map, catalogs and overlay named by cfg and applies
// overlay geometry to the room table.
//
// Postcondition: Returns content whose start room and overlay entries are
// valid, or an error.
func LoadContent(cfg config.Config) (*Content, error) {
	table, err := world.LoadFile(cfg.Data.MapFile, cfg.World.RoomCount)
	if err != nil {
		return nil, err
	}
	if !table.Valid(cfg.World.StartRoom) {
		return nil, fmt.Errorf("start room %d out of range for %d rooms", cfg.World.StartRoom, table.Len())
	}

	items, err := inventory.LoadCatalog(cfg.Data.ItemsFile)
	if err != nil {
		return nil, err
	}
	enemies, err := npc.LoadCatalog(cfg.Data.EnemiesFile)
	if err != nil {
		return nil, err
	}

	store, err := overlay.LoadFile(cfg.Data.OverlayFile, table.Len())
	if err != nil {
		return nil, err
	}
	if err := store.Validate(items.Has, enemies.Has); err != nil {
		return nil, fmt.Errorf("validating overlay: %w", err)
	}
	if err := store.ApplyGeometry(table); err != nil {
		return nil, fmt.Errorf("applying geometry overrides: %w", err)
	}

	return &Content{
		Table:       table,
		Items:       items,
		Enemies:     enemies,
		Overlay:     store.Records(),
		ScriptsDir:  cfg.Data.ScriptsDir,
		ScriptLimit: cfg.Data.ScriptInstructionLimit,
		StartRoom:   cfg.World.StartRoom,
		Player: spawn.PlayerSpec{
			X:        cfg.World.PlayerX,
			Y:        cfg.World.PlayerY,
			Health:   cfg.Player.Health,
			Damage:   cfg.Player.Damage,
			LogLines: cfg.Player.LogLines,
			Debug:    cfg.World.Debug,
		},
	}, nil
}
