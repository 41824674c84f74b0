package ecs

import "github.com/cory-johannsen/castle/internal/game/world"

// Position is a grid cell. Trigger-only edge entities sit one cell outside the grid.
type Position struct {
	X, Y int
}

// Add returns p displaced by (dx, dy).
func (p Position) Add(dx, dy int) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// Renderable is a glyph with a z-order; higher Z draws on top.
type Renderable struct {
	Glyph rune
	Z     int
}

// Movement holds the accumulated movement intent of an entity and the
// outcome of the most recent resolution.
type Movement struct {
	DX, DY int
	// Moved reports that an actual move occurred this tick.
	Moved bool
	// Blocked reports that an attempted move failed this tick.
	Blocked bool
	// BlockedDX and BlockedDY hold the displacement of the last failed move.
	BlockedDX, BlockedDY int
}

// Intent returns the desired displacement clamped to [-1,1] per axis.
func (m Movement) Intent() (int, int) {
	return clamp(m.DX), clamp(m.DY)
}

// Attempting reports whether the clamped intent is non-zero.
func (m Movement) Attempting() bool {
	dx, dy := m.Intent()
	return dx != 0 || dy != 0
}

func clamp(v int) int {
	switch {
	case v > 1:
		return 1
	case v < -1:
		return -1
	default:
		return v
	}
}

// Collider marks an entity that occupies its cell.
type Collider struct{}

// BelongsToRoom ties an entity to the room whose departure destroys it.
type BelongsToRoom struct {
	Room int
}

// ExitTrigger sends the player to another room when stepped on.
type ExitTrigger struct {
	Direction world.Direction
	To        int
}

// CombatStats holds hit points.
type CombatStats struct {
	Health    int
	MaxHealth int
}

// AppliesDamage lets an entity deal damage by bumping into a target.
type AppliesDamage struct {
	Damage int
}

// WantsToAttack is a single pending melee engagement. A later engagement
// in the same tick overwrites the earlier one.
type WantsToAttack struct {
	Target Entity
}

// PendingDamage accumulates damage for one tick.
type PendingDamage struct {
	Amounts    []int
	Instigator Entity
}

// Total returns the sum of Amounts.
func (p PendingDamage) Total() int {
	sum := 0
	for _, a := range p.Amounts {
		sum += a
	}
	return sum
}

// Dead tags an entity for removal.
type Dead struct{}

// Description makes an entity lookable. Key is the lookup key; Name the display name.
type Description struct {
	Key  string
	Name string
	Text string
}

// Inventory is the ordered list of carried item names.
type Inventory struct {
	Items []string
}

// Contains reports whether the named item is carried.
func (inv Inventory) Contains(item string) bool {
	for _, it := range inv.Items {
		if it == item {
			return true
		}
	}
	return false
}

// Player tags the player entity.
type Player struct{}

// AI marks an entity that moves toward the nearest player.
type AI struct{}

// PickupTrigger makes an entity collectable; Item is the catalog name.
type PickupTrigger struct {
	Item string
}

// Enemy records the catalog template an entity was spawned from.
type Enemy struct {
	Template string
}

// ActiveDescription is the last command response shown to the player.
type ActiveDescription struct {
	Text string
}

// CombatLog is a bounded list of combat messages, oldest first.
type CombatLog struct {
	Lines []string
	Max   int
	// Pushed counts every line ever pushed, including dropped ones.
	Pushed uint64
}

// Push appends a line, dropping the oldest lines beyond Max.
func (l *CombatLog) Push(line string) {
	l.Pushed++
	l.Lines = append(l.Lines, line)
	if l.Max > 0 && len(l.Lines) > l.Max {
		l.Lines = append([]string(nil), l.Lines[len(l.Lines)-l.Max:]...)
	}
}

// Debug grants the debug command capability.
type Debug struct{}
