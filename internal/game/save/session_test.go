package save

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/castle/internal/game/ecs"
	"github.com/cory-johannsen/castle/internal/game/inventory"
	"github.com/cory-johannsen/castle/internal/game/npc"
	"github.com/cory-johannsen/castle/internal/game/overlay"
	"github.com/cory-johannsen/castle/internal/game/room"
	"github.com/cory-johannsen/castle/internal/game/spawn"
	"github.com/cory-johannsen/castle/internal/game/world"
)

type fixture struct {
	w      *ecs.World
	store  *overlay.Store
	ctrl   *room.Controller
	player ecs.Entity
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	blank := func() *world.Room { return &world.Room{Description: make([]string, world.DescriptionLines)} }
	table := world.NewTable([]*world.Room{blank(), blank(), blank()})

	items, err := inventory.NewCatalog([]inventory.Item{{Name: "Lamp", Key: "lamp", Description: "a brass lamp", Glyph: '♠'}})
	require.NoError(t, err)
	dmg := 2
	enemies, err := npc.NewCatalog([]npc.Template{{Name: "Ogre", Key: "ogre", Glyph: '☺', Health: 5, Damage: &dmg}})
	require.NoError(t, err)

	w := ecs.NewWorld()
	store := overlay.NewStore(3)
	store.Set(overlay.Record{
		Room:    1,
		Items:   []overlay.Item{{Item: "lamp", X: 4, Y: 16}},
		Enemies: []overlay.Enemy{{Name: "ogre", X: 10, Y: 10}},
	})
	store.Set(overlay.Record{Room: 2, Descriptions: []overlay.Description{{Keyword: "mural", Text: "faded"}}})
	ctrl := room.NewController(w, table, store, spawn.New(w, items, enemies), zap.NewNop())
	player := spawn.SpawnPlayer(w, spawn.PlayerSpec{X: 12, Y: 9, Health: 10, Damage: 10, LogLines: 2, Debug: true})
	ctrl.ChangeRoom(1, room.NoRoom)
	return &fixture{w: w, store: store, ctrl: ctrl, player: player}
}

func (f *fixture) enemy(t *testing.T) ecs.Entity {
	t.Helper()
	es := f.w.Enemies.Entities()
	require.Len(t, es, 1)
	return es[0]
}

func TestCapture_RecordsSession(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Redirect(2, 0)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("x", 3600))

	snap := Capture(f.w, f.ctrl, f.store, now)
	assert.NotEqual(t, uuid.Nil, snap.ID)
	assert.Equal(t, now.UTC(), snap.SavedAt)
	assert.Equal(t, 1, snap.Room)
	assert.Equal(t, map[int]int{2: 0}, snap.Redirects)
	assert.Len(t, snap.Overlay, 2)
	// player, lamp, ogre
	require.Len(t, snap.Entities, 3)

	var player Entity
	for _, e := range snap.Entities {
		if e.Player {
			player = e
		}
	}
	assert.Equal(t, &Point{X: 12, Y: 9}, player.Position)
	assert.Nil(t, player.Room)
	assert.True(t, player.Debug)
	assert.Equal(t, 2, player.LogLines)
}

func TestCapture_StaticGeometryExcluded(t *testing.T) {
	f := newFixture(t)
	snap := Capture(f.w, f.ctrl, f.store, time.Now())
	for _, e := range snap.Entities {
		assert.False(t, e.Position != nil && e.Glyph == 0 && !e.Player, "trigger entity %d captured", e.ID)
	}
}

func TestRestore_RoundTrip(t *testing.T) {
	f := newFixture(t)
	ogre := f.enemy(t)
	stats, _ := f.w.CombatStats.Get(ogre)
	stats.Health = 2
	f.w.CombatStats.Set(ogre, stats)
	ogreID, _ := f.w.Identity.ID(ogre)
	playerID, _ := f.w.Identity.ID(f.player)
	f.w.Inventories.Set(f.player, ecs.Inventory{Items: []string{"wand"}})

	snap := Capture(f.w, f.ctrl, f.store, time.Now())

	f.ctrl.Enter(2)
	f.w.Positions.Set(f.player, ecs.Position{X: 1, Y: 1})
	f.w.Inventories.Set(f.player, ecs.Inventory{})
	require.Empty(t, f.w.Enemies.Entities())

	require.NoError(t, Restore(f.w, f.ctrl, f.store, snap))
	assert.Equal(t, 1, f.ctrl.Current())

	restored, ok := f.w.Identity.Lookup(ogreID)
	require.True(t, ok)
	got, _ := f.w.CombatStats.Get(restored)
	assert.Equal(t, ecs.CombatStats{Health: 2, MaxHealth: 5}, got)
	assert.True(t, f.w.AIs.Has(restored))
	assert.True(t, f.w.Colliders.Has(restored))
	r, _ := f.w.Rooms.Get(restored)
	assert.Equal(t, 1, r.Room)

	p, ok := f.w.Identity.Lookup(playerID)
	require.True(t, ok)
	assert.Equal(t, f.player, p)
	pos, _ := f.w.Positions.Get(f.player)
	assert.Equal(t, ecs.Position{X: 12, Y: 9}, pos)
	inv, _ := f.w.Inventories.Get(f.player)
	assert.Equal(t, []string{"wand"}, inv.Items)

	assert.Len(t, f.w.Pickups.Entities(), 1)
	assert.Len(t, f.w.Players.Entities(), 1)
}

func TestRestore_IdentityNotReissued(t *testing.T) {
	f := newFixture(t)
	snap := Capture(f.w, f.ctrl, f.store, time.Now())
	require.NoError(t, Restore(f.w, f.ctrl, f.store, snap))

	saved := make(map[uint64]bool)
	for _, e := range snap.Entities {
		saved[e.ID] = true
	}
	fresh := f.w.Identity.Assign(f.w.Create())
	assert.False(t, saved[uint64(fresh)])
}

func TestRestore_RejectsBadRoom(t *testing.T) {
	f := newFixture(t)
	snap := Capture(f.w, f.ctrl, f.store, time.Now())
	snap.Room = 9
	before := f.w.Count()
	assert.Error(t, Restore(f.w, f.ctrl, f.store, snap))
	assert.Equal(t, before, f.w.Count())
	assert.Equal(t, 1, f.ctrl.Current())
}

func TestRestore_RejectsBadOverlay(t *testing.T) {
	f := newFixture(t)
	snap := Capture(f.w, f.ctrl, f.store, time.Now())
	snap.Overlay = append(snap.Overlay, overlay.Record{Room: 40, Items: []overlay.Item{{Item: "lamp"}}})
	assert.Error(t, Restore(f.w, f.ctrl, f.store, snap))
	assert.Len(t, f.store.Get(1).Items, 1)
}

func TestMarshal_RoundTrip(t *testing.T) {
	f := newFixture(t)
	f.ctrl.Redirect(2, 0)
	snap := Capture(f.w, f.ctrl, f.store, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))

	data, err := Marshal(snap)
	require.NoError(t, err)
	back, err := Unmarshal(data)
	require.NoError(t, err)
	assert.Equal(t, snap.ID, back.ID)
	assert.True(t, snap.SavedAt.Equal(back.SavedAt))
	assert.Equal(t, snap.Redirects, back.Redirects)
	assert.Equal(t, snap.Entities, back.Entities)
	assert.Equal(t, snap.Overlay, back.Overlay)
}

func TestUnmarshal_Malformed(t *testing.T) {
	_, err := Unmarshal([]byte("entities: {"))
	assert.Error(t, err)
}
