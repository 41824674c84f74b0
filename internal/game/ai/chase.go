// Package ai drives enemy movement intent.
package ai

import (
	"math"

	"github.com/cory-johannsen/castle/internal/game/ecs"
	"github.com/cory-johannsen/castle/internal/game/movement"
)

// Chase adds one step toward the nearest player to every AI entity's
// movement intent. Ties in distance go to the player in the lower slot.
//
// Postcondition: Returns the number of entities that received an intent.
func Chase(w *ecs.World) int {
	players := w.Players.Entities()
	if len(players) == 0 {
		return 0
	}
	n := 0
	for _, e := range w.AIs.Entities() {
		pos, ok := w.Positions.Get(e)
		if !ok {
			continue
		}
		target, ok := nearest(w, pos, players)
		if !ok {
			continue
		}
		if movement.Intend(w, e, sign(target.X-pos.X), sign(target.Y-pos.Y)) {
			n++
		}
	}
	return n
}

func nearest(w *ecs.World, from ecs.Position, players []ecs.Entity) (ecs.Position, bool) {
	best := math.MaxInt
	var found ecs.Position
	ok := false
	for _, p := range players {
		pos, has := w.Positions.Get(p)
		if !has {
			continue
		}
		dx, dy := pos.X-from.X, pos.Y-from.Y
		if d := dx*dx + dy*dy; d < best {
			best = d
			found = pos
			ok = true
		}
	}
	return found, ok
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
