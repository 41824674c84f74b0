// Package movement resolves simultaneous movement intents against colliders.
package movement

import (
	"github.com/cory-johannsen/castle/internal/game/ecs"
	"github.com/cory-johannsen/castle/internal/game/world"
)

// Outcome summarizes one resolution pass.
type Outcome struct {
	// Attempted counts entities with a non-zero intent.
	Attempted int
	// Moved lists entities that changed cell, in slot order.
	Moved []ecs.Entity
	// Blocked lists entities whose move failed, in slot order.
	Blocked []ecs.Entity
}

// Resolve moves every entity with a Movement intent by its clamped
// displacement. A collidable mover enters a cell only when no collider
// occupies it after the moves already granted this pass; cells vacated by
// granted movers free up, and a cell claimed by one mover blocks every later
// mover. Passes repeat until nothing more can move, so a chain of movers
// stepping into each other's cells succeeds in any slot order. Cells outside
// the grid are only enterable where an exit trigger sits.
//
// Postcondition: Every Movement has zero intent; Moved and Blocked reflect
// this call only; blocked movers record the attempted displacement.
func Resolve(w *ecs.World) Outcome {
	occupied := make(map[ecs.Position]int)
	for _, e := range w.Colliders.Entities() {
		if pos, ok := w.Positions.Get(e); ok {
			occupied[pos]++
		}
	}
	enterable := make(map[ecs.Position]bool)
	for _, e := range w.ExitTriggers.Entities() {
		if pos, ok := w.Positions.Get(e); ok && !inGrid(pos) {
			enterable[pos] = true
		}
	}

	var out Outcome
	var pending []ecs.Entity
	for _, e := range w.Movements.Entities() {
		mv, _ := w.Movements.Get(e)
		mv.Moved = false
		mv.Blocked = false
		w.Movements.Set(e, mv)
		if !w.Positions.Has(e) || !mv.Attempting() {
			continue
		}
		out.Attempted++
		pending = append(pending, e)
	}

	for changed := true; changed && len(pending) > 0; {
		changed = false
		remaining := pending[:0]
		for _, e := range pending {
			mv, _ := w.Movements.Get(e)
			pos, _ := w.Positions.Get(e)
			dx, dy := mv.Intent()
			target := pos.Add(dx, dy)

			if !inGrid(target) && !enterable[target] {
				remaining = append(remaining, e)
				continue
			}
			collider := w.Colliders.Has(e)
			if collider && occupied[target] > 0 {
				remaining = append(remaining, e)
				continue
			}
			if collider {
				occupied[pos]--
				occupied[target]++
			}
			w.Positions.Set(e, target)
			mv.Moved = true
			w.Movements.Set(e, mv)
			out.Moved = append(out.Moved, e)
			changed = true
		}
		pending = remaining
	}

	for _, e := range pending {
		mv, _ := w.Movements.Get(e)
		mv.Blocked = true
		mv.BlockedDX, mv.BlockedDY = mv.Intent()
		w.Movements.Set(e, mv)
		out.Blocked = append(out.Blocked, e)
	}

	Clear(w)
	ecs.SortByIndex(out.Moved)
	return out
}

// Clear drops every pending intent without moving anything. Moved, Blocked
// and the last blocked displacement are left as they are.
func Clear(w *ecs.World) {
	for _, e := range w.Movements.Entities() {
		mv, _ := w.Movements.Get(e)
		mv.DX, mv.DY = 0, 0
		w.Movements.Set(e, mv)
	}
}

func inGrid(p ecs.Position) bool {
	return p.X >= 0 && p.X < world.Width && p.Y >= 0 && p.Y < world.Height
}

// Intend adds a displacement to e's accumulated intent.
//
// Postcondition: Returns false if e has no Movement component.
func Intend(w *ecs.World, e ecs.Entity, dx, dy int) bool {
	mv, ok := w.Movements.Get(e)
	if !ok {
		return false
	}
	mv.DX += dx
	mv.DY += dy
	w.Movements.Set(e, mv)
	return true
}
