package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/castle/internal/game/action"
	"github.com/cory-johannsen/castle/internal/game/ecs"
)

func newPlayer(w *ecs.World, x, y int, moved bool) ecs.Entity {
	p := w.Create()
	w.Players.Set(p, ecs.Player{})
	w.Positions.Set(p, ecs.Position{X: x, Y: y})
	w.Movements.Set(p, ecs.Movement{Moved: moved})
	w.Inventories.Set(p, ecs.Inventory{})
	return p
}

func newPickup(w *ecs.World, item string, x, y int) ecs.Entity {
	e := w.Create()
	w.Positions.Set(e, ecs.Position{X: x, Y: y})
	w.Pickups.Set(e, ecs.PickupTrigger{Item: item})
	return e
}

func TestCollect_MovedOntoPickup(t *testing.T) {
	w := ecs.NewWorld()
	p := newPlayer(w, 4, 16, true)
	lamp := newPickup(w, "lamp", 4, 16)
	newPickup(w, "hourglass", 5, 17)

	var q action.Queue
	got := Collect(w, &q)
	assert.Equal(t, []string{"lamp"}, got)

	inv, _ := w.Inventories.Get(p)
	assert.Equal(t, []string{"lamp"}, inv.Items)
	require.Equal(t, 1, q.Len())
	assert.Equal(t, []action.Action{action.DeleteEntities{Entities: []ecs.Entity{lamp}}}, q.Drain())
}

func TestCollect_NoMoveNoPickup(t *testing.T) {
	w := ecs.NewWorld()
	newPlayer(w, 4, 16, false)
	newPickup(w, "lamp", 4, 16)

	var q action.Queue
	assert.Empty(t, Collect(w, &q))
	assert.Equal(t, 0, q.Len())
}

func TestCollect_OnePerStep(t *testing.T) {
	w := ecs.NewWorld()
	p := newPlayer(w, 1, 1, true)
	newPickup(w, "lamp", 1, 1)
	newPickup(w, "book", 1, 1)

	var q action.Queue
	Collect(w, &q)
	inv, _ := w.Inventories.Get(p)
	assert.Equal(t, []string{"lamp"}, inv.Items)
}

func TestDescribe(t *testing.T) {
	c, err := NewCatalog([]Item{{Name: "Magic Wand", Key: "wand", Glyph: '─'}})
	require.NoError(t, err)
	assert.Equal(t, "you are carrying nothing", Describe(c, ecs.Inventory{}))
	assert.Equal(t, "you are carrying: magic wand, relic", Describe(c, ecs.Inventory{Items: []string{"wand", "relic"}}))
}
