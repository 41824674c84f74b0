package inventory

import (
	"strings"

	"github.com/cory-johannsen/castle/internal/game/action"
	"github.com/cory-johannsen/castle/internal/game/ecs"
)

// Collect moves at most one pickup per player into that player's inventory
// when the player moved this tick onto the pickup's cell. Collected pickups
// are queued for deletion.
//
// Postcondition: Returns the IDs of the collected items in player order.
func Collect(w *ecs.World, q *action.Queue) []string {
	var collected []string
	var picked []ecs.Entity
	for _, p := range w.Players.Entities() {
		mv, ok := w.Movements.Get(p)
		if !ok || !mv.Moved {
			continue
		}
		pos, ok := w.Positions.Get(p)
		if !ok {
			continue
		}
		inv, ok := w.Inventories.Get(p)
		if !ok {
			continue
		}
		for _, e := range w.Pickups.Entities() {
			if contains(picked, e) {
				continue
			}
			if ppos, ok := w.Positions.Get(e); !ok || ppos != pos {
				continue
			}
			trig, _ := w.Pickups.Get(e)
			inv.Items = append(inv.Items, trig.Item)
			picked = append(picked, e)
			collected = append(collected, trig.Item)
			break
		}
		w.Inventories.Set(p, inv)
	}
	if len(picked) > 0 {
		q.Push(action.DeleteEntities{Entities: picked})
	}
	return collected
}

func contains(es []ecs.Entity, e ecs.Entity) bool {
	for _, x := range es {
		if x == e {
			return true
		}
	}
	return false
}

// Describe renders a carried-items listing using catalog display names.
func Describe(c *Catalog, inv ecs.Inventory) string {
	if len(inv.Items) == 0 {
		return "you are carrying nothing"
	}
	names := make([]string, 0, len(inv.Items))
	for _, id := range inv.Items {
		if it, err := c.Lookup(id); err == nil {
			names = append(names, strings.ToLower(it.Name))
			continue
		}
		names = append(names, id)
	}
	return "you are carrying: " + strings.Join(names, ", ")
}
