package save

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cory-johannsen/castle/internal/game/ecs"
	"github.com/cory-johannsen/castle/internal/game/overlay"
	"github.com/cory-johannsen/castle/internal/game/room"
)

// Capture snapshots the session: the current room, redirects, every overlay
// record, and every entity with a stable identifier.
//
// Precondition: ctrl has entered a room.
// Postcondition: The snapshot carries a fresh uuid and now in UTC.
func Capture(w *ecs.World, ctrl *room.Controller, store *overlay.Store, now time.Time) Snapshot {
	snap := Snapshot{
		ID:        uuid.New(),
		SavedAt:   now.UTC(),
		Room:      ctrl.Current(),
		Redirects: ctrl.Redirects(),
		Overlay:   store.Records(),
	}
	for _, e := range w.Identity.Bound() {
		snap.Entities = append(snap.Entities, captureEntity(w, e))
	}
	return snap
}

func captureEntity(w *ecs.World, e ecs.Entity) Entity {
	id, _ := w.Identity.ID(e)
	out := Entity{
		ID:       uint64(id),
		Player:   w.Players.Has(e),
		Mover:    w.Movements.Has(e),
		Collider: w.Colliders.Has(e),
		AI:       w.AIs.Has(e),
		Debug:    w.Debug.Has(e),
	}
	if p, ok := w.Positions.Get(e); ok {
		out.Position = &Point{X: p.X, Y: p.Y}
	}
	if r, ok := w.Renderables.Get(e); ok {
		out.Glyph, out.Z = r.Glyph, r.Z
	}
	if t, ok := w.Pickups.Get(e); ok {
		out.Pickup = t.Item
	}
	if r, ok := w.Rooms.Get(e); ok {
		idx := r.Room
		out.Room = &idx
	}
	if d, ok := w.Descriptions.Get(e); ok {
		out.Description = &Describe{Key: d.Key, Name: d.Name, Text: d.Text}
	}
	if en, ok := w.Enemies.Get(e); ok {
		out.Enemy = en.Template
	}
	if s, ok := w.CombatStats.Get(e); ok {
		out.Stats = &Stats{Health: s.Health, MaxHealth: s.MaxHealth}
	}
	if d, ok := w.Damages.Get(e); ok {
		dmg := d.Damage
		out.Damage = &dmg
	}
	if inv, ok := w.Inventories.Get(e); ok {
		out.Inventory = append([]string(nil), inv.Items...)
	}
	if l, ok := w.CombatLogs.Get(e); ok {
		out.LogLines = l.Max
	}
	return out
}

// Restore replaces the session with snap. The overlay is restored first;
// the saved room is rebuilt from static geometry; saved entities are then
// recreated under their original stable identifiers. The existing player
// entity is reused so handles held by the caller stay valid.
//
// Postcondition: Returns an error, with the world unchanged, if the room is
// out of range or the overlay cannot be restored.
func Restore(w *ecs.World, ctrl *room.Controller, store *overlay.Store, snap Snapshot) error {
	if !ctrl.Table().Valid(snap.Room) {
		return fmt.Errorf("snapshot %s: room %d out of range", snap.ID, snap.Room)
	}
	for from, to := range snap.Redirects {
		if !ctrl.Table().Valid(from) || !ctrl.Table().Valid(to) {
			return fmt.Errorf("snapshot %s: redirect %d->%d out of range", snap.ID, from, to)
		}
	}
	if err := store.Restore(snap.Overlay); err != nil {
		return fmt.Errorf("snapshot %s: %w", snap.ID, err)
	}
	ctrl.SetRedirects(snap.Redirects)
	ctrl.Rebuild(snap.Room)

	var stale []ecs.Entity
	for _, e := range w.Identity.Bound() {
		if !w.Players.Has(e) {
			stale = append(stale, e)
		}
	}
	w.DestroyBatch(stale)

	player, hasPlayer := w.PlayerEntity()
	for _, rec := range snap.Entities {
		var e ecs.Entity
		if rec.Player && hasPlayer {
			e = player
			hasPlayer = false
		} else {
			e = w.Create()
		}
		apply(w, e, rec)
		w.Identity.Bind(e, ecs.StableID(rec.ID))
	}
	return nil
}

func apply(w *ecs.World, e ecs.Entity, rec Entity) {
	if rec.Player {
		w.Players.Set(e, ecs.Player{})
		w.ActiveDescriptions.Set(e, ecs.ActiveDescription{})
		w.CombatLogs.Set(e, ecs.CombatLog{Max: rec.LogLines})
		w.Inventories.Set(e, ecs.Inventory{Items: append([]string(nil), rec.Inventory...)})
	}
	if rec.Position != nil {
		w.Positions.Set(e, ecs.Position{X: rec.Position.X, Y: rec.Position.Y})
	}
	if rec.Glyph != 0 {
		w.Renderables.Set(e, ecs.Renderable{Glyph: rec.Glyph, Z: rec.Z})
	}
	if rec.Pickup != "" {
		w.Pickups.Set(e, ecs.PickupTrigger{Item: rec.Pickup})
	}
	if rec.Room != nil {
		w.Rooms.Set(e, ecs.BelongsToRoom{Room: *rec.Room})
	}
	if rec.Description != nil {
		w.Descriptions.Set(e, ecs.Description{Key: rec.Description.Key, Name: rec.Description.Name, Text: rec.Description.Text})
	}
	if rec.Enemy != "" {
		w.Enemies.Set(e, ecs.Enemy{Template: rec.Enemy})
	}
	if rec.Stats != nil {
		w.CombatStats.Set(e, ecs.CombatStats{Health: rec.Stats.Health, MaxHealth: rec.Stats.MaxHealth})
	}
	if rec.Damage != nil {
		w.Damages.Set(e, ecs.AppliesDamage{Damage: *rec.Damage})
	}
	setTag(w.Movements, e, rec.Mover, ecs.Movement{})
	setTag(w.Colliders, e, rec.Collider, ecs.Collider{})
	setTag(w.AIs, e, rec.AI, ecs.AI{})
	setTag(w.Debug, e, rec.Debug, ecs.Debug{})
}

func setTag[T any](s *ecs.Store[T], e ecs.Entity, on bool, v T) {
	if on {
		s.Set(e, v)
		return
	}
	s.Remove(e)
}
