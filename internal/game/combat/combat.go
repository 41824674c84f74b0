// Package combat resolves melee bumps into damage and death.
package combat

import (
	"fmt"

	"github.com/cory-johannsen/castle/internal/game/action"
	"github.com/cory-johannsen/castle/internal/game/ecs"
)

// Engage records a melee engagement for every damage-dealing mover whose
// move was blocked this tick by something occupying the attempted cell.
// Occupants with combat stats are preferred over scenery. A later
// engagement by the same attacker overwrites the earlier one.
//
// Postcondition: Returns the number of engagements recorded.
func Engage(w *ecs.World) int {
	n := 0
	for _, e := range w.Damages.Entities() {
		mv, ok := w.Movements.Get(e)
		if !ok || !mv.Blocked {
			continue
		}
		pos, ok := w.Positions.Get(e)
		if !ok {
			continue
		}
		target, ok := occupant(w, e, pos.Add(mv.BlockedDX, mv.BlockedDY))
		if !ok {
			continue
		}
		w.Attacks.Set(e, ecs.WantsToAttack{Target: target})
		n++
	}
	return n
}

func occupant(w *ecs.World, self ecs.Entity, cell ecs.Position) (ecs.Entity, bool) {
	fallback := ecs.None
	for _, e := range w.At(cell) {
		if e == self {
			continue
		}
		if w.CombatStats.Has(e) {
			return e, true
		}
		if fallback == ecs.None {
			fallback = e
		}
	}
	return fallback, fallback != ecs.None
}

// Hit is the damage one target took in a tick.
type Hit struct {
	Target ecs.Entity
	// Instigator is the last attacker, in slot order, to damage Target.
	Instigator ecs.Entity
	// Damage is the summed damage applied.
	Damage int
	// Killed reports that this hit tagged Target Dead.
	Killed bool
}

// ApplyDamage converts engagements into pending damage and applies the
// accumulated damage to living targets. A target with its own combat log
// reads "you were hit"; otherwise every player's log reads "<name> was hit!".
// Targets whose health drops to zero or below are tagged Dead.
//
// Postcondition: No WantsToAttack or PendingDamage components remain.
// Returns one Hit per damaged target in target slot order.
func ApplyDamage(w *ecs.World) []Hit {
	for _, e := range w.Attacks.Entities() {
		atk, _ := w.Attacks.Get(e)
		dmg, ok := w.Damages.Get(e)
		if !ok || !w.Alive(atk.Target) {
			continue
		}
		pd, _ := w.PendingDamage.Get(atk.Target)
		pd.Amounts = append(pd.Amounts, dmg.Damage)
		pd.Instigator = e
		w.PendingDamage.Set(atk.Target, pd)
	}
	w.Attacks.Clear()

	var hits []Hit
	for _, e := range w.PendingDamage.Entities() {
		stats, ok := w.CombatStats.Get(e)
		if !ok || stats.Health <= 0 {
			continue
		}
		pd, _ := w.PendingDamage.Get(e)
		hit := Hit{Target: e, Instigator: pd.Instigator, Damage: pd.Total()}
		stats.Health -= hit.Damage
		w.CombatStats.Set(e, stats)
		logHit(w, e)
		if stats.Health <= 0 && !w.Dead.Has(e) {
			w.Dead.Set(e, ecs.Dead{})
			hit.Killed = true
		}
		hits = append(hits, hit)
	}
	w.PendingDamage.Clear()
	return hits
}

// Killed returns the targets of hits that tagged them Dead.
func Killed(hits []Hit) []ecs.Entity {
	var out []ecs.Entity
	for _, h := range hits {
		if h.Killed {
			out = append(out, h.Target)
		}
	}
	return out
}

func logHit(w *ecs.World, target ecs.Entity) {
	if log, ok := w.CombatLogs.Get(target); ok {
		log.Push("you were hit")
		w.CombatLogs.Set(target, log)
		return
	}
	name := w.Name(target)
	if name == "" {
		name = "unknown"
	}
	msg := fmt.Sprintf("%s was hit!", name)
	for _, p := range w.Players.Entities() {
		if log, ok := w.CombatLogs.Get(p); ok {
			log.Push(msg)
			w.CombatLogs.Set(p, log)
		}
	}
}

// CollectDead returns a deletion request for every Dead entity, or nil when
// there is nothing to delete.
func CollectDead(w *ecs.World) action.Action {
	dead := w.Dead.Entities()
	if len(dead) == 0 {
		return nil
	}
	return action.DeleteEntities{Entities: dead}
}
