// Package spawn builds room and player entities from catalog data.
package spawn

import (
	"github.com/cory-johannsen/castle/internal/game/ecs"
	"github.com/cory-johannsen/castle/internal/game/inventory"
	"github.com/cory-johannsen/castle/internal/game/npc"
)

// PlayerGlyph is the player's display rune.
const PlayerGlyph = '♣'

// Z-orders for room content.
const (
	ZTile   = 0
	ZObject = 1
)

// Spawner creates persistable room entities. Every entity it builds is bound
// to a fresh stable identifier.
type Spawner struct {
	w       *ecs.World
	items   *inventory.Catalog
	enemies *npc.Catalog
}

// New returns a Spawner writing into w.
//
// Precondition: all arguments are non-nil.
func New(w *ecs.World, items *inventory.Catalog, enemies *npc.Catalog) *Spawner {
	return &Spawner{w: w, items: items, enemies: enemies}
}

// SpawnItem creates a pickup for the named catalog item at (x, y).
//
// Postcondition: Returns an error wrapping inventory.ErrUnknownItem if name
// matches no item; no entity is created in that case.
func (s *Spawner) SpawnItem(room int, name string, x, y int) (ecs.Entity, error) {
	it, err := s.items.Lookup(name)
	if err != nil {
		return ecs.None, err
	}
	e := s.w.Create()
	s.w.Positions.Set(e, ecs.Position{X: x, Y: y})
	s.w.Renderables.Set(e, ecs.Renderable{Glyph: it.Glyph, Z: ZObject})
	s.w.Pickups.Set(e, ecs.PickupTrigger{Item: it.ID()})
	s.w.Rooms.Set(e, ecs.BelongsToRoom{Room: room})
	s.w.Descriptions.Set(e, ecs.Description{Key: it.ID(), Name: it.Name, Text: it.Description})
	s.w.Identity.Assign(e)
	return e, nil
}

// SpawnDescription creates a position-less lookable keyword.
func (s *Spawner) SpawnDescription(room int, keyword, text string) (ecs.Entity, error) {
	e := s.w.Create()
	s.w.Rooms.Set(e, ecs.BelongsToRoom{Room: room})
	s.w.Descriptions.Set(e, ecs.Description{Key: keyword, Name: keyword, Text: text})
	s.w.Identity.Assign(e)
	return e, nil
}

// SpawnEnemy creates an enemy from the named template at (x, y). A nil
// health starts the enemy at the template maximum. Enemies that deal damage
// also chase the player.
//
// Postcondition: Returns an error wrapping npc.ErrUnknownEnemy if name
// matches no template; no entity is created in that case.
func (s *Spawner) SpawnEnemy(room int, name string, x, y int, health *int) (ecs.Entity, error) {
	t, err := s.enemies.Lookup(name)
	if err != nil {
		return ecs.None, err
	}
	hp := t.Health
	if health != nil {
		hp = *health
	}
	e := s.w.Create()
	s.w.Positions.Set(e, ecs.Position{X: x, Y: y})
	s.w.Renderables.Set(e, ecs.Renderable{Glyph: t.Glyph, Z: ZObject})
	s.w.Movements.Set(e, ecs.Movement{})
	s.w.Colliders.Set(e, ecs.Collider{})
	s.w.CombatStats.Set(e, ecs.CombatStats{Health: hp, MaxHealth: t.Health})
	s.w.Rooms.Set(e, ecs.BelongsToRoom{Room: room})
	s.w.Descriptions.Set(e, ecs.Description{Key: t.ID(), Name: t.Name, Text: t.Description})
	s.w.Enemies.Set(e, ecs.Enemy{Template: t.ID()})
	if t.Damage != nil {
		s.w.Damages.Set(e, ecs.AppliesDamage{Damage: *t.Damage})
		s.w.AIs.Set(e, ecs.AI{})
	}
	s.w.Identity.Assign(e)
	return e, nil
}

// PlayerSpec configures the player entity.
type PlayerSpec struct {
	X, Y     int
	Health   int
	Damage   int
	LogLines int
	Debug    bool
}

// SpawnPlayer creates the room-independent player entity.
//
// Postcondition: The player has no BelongsToRoom component and a stable identifier.
func SpawnPlayer(w *ecs.World, spec PlayerSpec) ecs.Entity {
	e := w.Create()
	w.Players.Set(e, ecs.Player{})
	w.Positions.Set(e, ecs.Position{X: spec.X, Y: spec.Y})
	w.Renderables.Set(e, ecs.Renderable{Glyph: PlayerGlyph, Z: ZObject})
	w.Movements.Set(e, ecs.Movement{})
	w.Colliders.Set(e, ecs.Collider{})
	w.CombatStats.Set(e, ecs.CombatStats{Health: spec.Health, MaxHealth: spec.Health})
	w.Damages.Set(e, ecs.AppliesDamage{Damage: spec.Damage})
	w.Inventories.Set(e, ecs.Inventory{})
	w.ActiveDescriptions.Set(e, ecs.ActiveDescription{})
	w.CombatLogs.Set(e, ecs.CombatLog{Max: spec.LogLines})
	if spec.Debug {
		w.Debug.Set(e, ecs.Debug{})
	}
	w.Identity.Assign(e)
	return e
}
