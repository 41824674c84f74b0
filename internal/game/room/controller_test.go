package room

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/castle/internal/game/ecs"
	"github.com/cory-johannsen/castle/internal/game/inventory"
	"github.com/cory-johannsen/castle/internal/game/npc"
	"github.com/cory-johannsen/castle/internal/game/overlay"
	"github.com/cory-johannsen/castle/internal/game/spawn"
	"github.com/cory-johannsen/castle/internal/game/world"
)

type fixture struct {
	w      *ecs.World
	store  *overlay.Store
	ctrl   *Controller
	player ecs.Entity
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	room0 := &world.Room{
		Tiles: []world.Tile{
			{Code: 219, Glyph: '█', Collidable: true, X: 0, Y: 0},
			{Code: 'U', Glyph: 'U', X: 5, Y: 5},
			{Code: 'D', Glyph: 'D', X: 6, Y: 5},
		},
		Description: []string{"Great hall               ", "", "", "", ""},
		Exits:       []world.Exit{{Direction: world.North, To: 1}, {Direction: world.West, To: 2}, {Direction: world.Up, To: 2}},
	}
	room1 := &world.Room{
		Tiles:       []world.Tile{{Code: 178, Glyph: '▓', Collidable: true, X: 1, Y: 1}},
		Description: make([]string, world.DescriptionLines),
		Exits:       []world.Exit{{Direction: world.South, To: 0}},
	}
	room2 := &world.Room{Description: make([]string, world.DescriptionLines)}
	table := world.NewTable([]*world.Room{room0, room1, room2})

	items, err := inventory.NewCatalog([]inventory.Item{{Name: "Lamp", Key: "lamp", Glyph: '♠'}})
	require.NoError(t, err)
	enemies, err := npc.NewCatalog([]npc.Template{{Name: "Ogre", Key: "ogre", Glyph: '☺', Health: 3}})
	require.NoError(t, err)

	w := ecs.NewWorld()
	store := overlay.NewStore(3)
	store.Set(overlay.Record{
		Room:    1,
		Items:   []overlay.Item{{Item: "lamp", X: 4, Y: 16}},
		Enemies: []overlay.Enemy{{Name: "ogre", X: 10, Y: 10}},
	})
	ctrl := NewController(w, table, store, spawn.New(w, items, enemies), zap.NewNop())
	player := spawn.SpawnPlayer(w, spawn.PlayerSpec{X: 12, Y: 9, Health: 10, Damage: 10, LogLines: 2})
	return &fixture{w: w, store: store, ctrl: ctrl, player: player}
}

func count[T any](w *ecs.World, s *ecs.Store[T], room int) int {
	n := 0
	for _, e := range w.InRoom(room) {
		if s.Has(e) {
			n++
		}
	}
	return n
}

func TestChangeRoom_BuildsStaticAndEdgeEntities(t *testing.T) {
	f := newFixture(t)
	f.ctrl.ChangeRoom(0, NoRoom)
	assert.Equal(t, 0, f.ctrl.Current())

	// 3 tiles, 22 north edge triggers, 18 west edge triggers
	assert.Len(t, f.w.InRoom(0), 3+22+18)
	assert.Equal(t, 1, count(f.w, f.w.Colliders, 0))
	assert.Equal(t, 3, count(f.w, f.w.Renderables, 0))

	upTile := f.w.At(ecs.Position{X: 5, Y: 5})
	require.Len(t, upTile, 1)
	trig, ok := f.w.ExitTriggers.Get(upTile[0])
	require.True(t, ok)
	assert.Equal(t, ecs.ExitTrigger{Direction: world.Up, To: 2}, trig)

	downTile := f.w.At(ecs.Position{X: 6, Y: 5})
	require.Len(t, downTile, 1)
	assert.False(t, f.w.ExitTriggers.Has(downTile[0]), "D tile without a Down exit is not a trigger")

	north := f.w.At(ecs.Position{X: 1, Y: -1})
	require.Len(t, north, 1)
	trig, _ = f.w.ExitTriggers.Get(north[0])
	assert.Equal(t, ecs.ExitTrigger{Direction: world.North, To: 1}, trig)
	assert.Empty(t, f.w.At(ecs.Position{X: 0, Y: -1}), "corner columns have no north trigger")
	assert.Len(t, f.w.At(ecs.Position{X: -1, Y: 17}), 1)
	assert.Empty(t, f.w.At(ecs.Position{X: 24, Y: 0}), "no east exit, no east triggers")
}

func TestChangeRoom_PostCondition(t *testing.T) {
	f := newFixture(t)
	f.ctrl.ChangeRoom(0, NoRoom)
	f.ctrl.ChangeRoom(1, 0)

	assert.Empty(t, f.w.InRoom(0))
	for _, e := range f.w.Entities() {
		if e == f.player {
			continue
		}
		r, ok := f.w.Rooms.Get(e)
		require.True(t, ok, "every non-player entity belongs to a room")
		assert.Equal(t, 1, r.Room)
	}
	assert.True(t, f.w.Alive(f.player))
	assert.Equal(t, 1, count(f.w, f.w.Pickups, 1))
	assert.Equal(t, 1, count(f.w, f.w.Enemies, 1))
}

func TestChangeRoom_OverlayRoundTrip(t *testing.T) {
	f := newFixture(t)
	f.ctrl.ChangeRoom(1, NoRoom)
	for _, e := range f.w.InRoom(1) {
		if f.w.Enemies.Has(e) {
			f.w.CombatStats.Set(e, ecs.CombatStats{Health: 1, MaxHealth: 3})
			f.w.Positions.Set(e, ecs.Position{X: 11, Y: 10})
		}
	}
	f.ctrl.ChangeRoom(0, 1)

	rec := f.store.Get(1)
	require.Len(t, rec.Enemies, 1)
	assert.Equal(t, 11, rec.Enemies[0].X)
	require.NotNil(t, rec.Enemies[0].Health)
	assert.Equal(t, 1, *rec.Enemies[0].Health)

	f.ctrl.ChangeRoom(1, 0)
	var ogre ecs.Entity
	for _, e := range f.w.InRoom(1) {
		if f.w.Enemies.Has(e) {
			ogre = e
		}
	}
	require.NotEqual(t, ecs.None, ogre)
	stats, _ := f.w.CombatStats.Get(ogre)
	assert.Equal(t, 1, stats.Health)
	assert.Equal(t, rec, f.store.Capture(f.w, 1))
}

func TestChangeRoom_PanicsOutOfRange(t *testing.T) {
	f := newFixture(t)
	assert.Panics(t, func() { f.ctrl.ChangeRoom(3, NoRoom) })
}

func TestRedirect(t *testing.T) {
	f := newFixture(t)
	f.ctrl.ChangeRoom(0, NoRoom)
	f.ctrl.Redirect(1, 2)
	assert.Equal(t, 2, f.ctrl.Resolve(1))
	assert.Equal(t, 2, f.ctrl.Enter(1))
	assert.Equal(t, 2, f.ctrl.Current())

	f.ctrl.Redirect(2, 1)
	assert.Equal(t, 2, f.ctrl.Resolve(1), "cycles stop at the last unseen room")
	assert.Equal(t, map[int]int{1: 2, 2: 1}, f.ctrl.Redirects())

	f.ctrl.Redirect(1, 1)
	assert.Equal(t, map[int]int{2: 1}, f.ctrl.Redirects())
	assert.Panics(t, func() { f.ctrl.Redirect(0, 9) })
}

func TestRebuild_SkipsOverlay(t *testing.T) {
	f := newFixture(t)
	f.ctrl.ChangeRoom(0, NoRoom)
	f.ctrl.Rebuild(1)
	assert.Equal(t, 1, f.ctrl.Current())
	assert.Empty(t, f.w.InRoom(0))
	assert.Equal(t, 0, count(f.w, f.w.Pickups, 1))
	assert.Equal(t, 1, count(f.w, f.w.Colliders, 1))
	assert.Equal(t, []overlay.Item{{Item: "lamp", X: 4, Y: 16}}, f.store.Get(1).Items)
}

func TestDescription(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, "Great hall", f.ctrl.Description(0)[0])
}

func TestArrive(t *testing.T) {
	cases := map[world.Direction]ecs.Position{
		world.North:   {X: 12, Y: 17},
		world.South:   {X: 12, Y: 0},
		world.East:    {X: 0, Y: 9},
		world.West:    {X: 23, Y: 9},
		world.Up:      {X: 12, Y: 9},
		world.Invalid: {X: 12, Y: 9},
	}
	for dir, want := range cases {
		w := ecs.NewWorld()
		p := spawn.SpawnPlayer(w, spawn.PlayerSpec{X: 12, Y: 9, Health: 1, LogLines: 1})
		Arrive(w, dir)
		got, _ := w.Positions.Get(p)
		assert.Equal(t, want, got, "direction %s", dir)
	}
}
