package turn

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/castle/internal/game/command"
	"github.com/cory-johannsen/castle/internal/game/ecs"
	"github.com/cory-johannsen/castle/internal/game/inventory"
	"github.com/cory-johannsen/castle/internal/game/npc"
	"github.com/cory-johannsen/castle/internal/game/overlay"
	"github.com/cory-johannsen/castle/internal/game/room"
	"github.com/cory-johannsen/castle/internal/game/save"
	"github.com/cory-johannsen/castle/internal/game/spawn"
	"github.com/cory-johannsen/castle/internal/game/world"
)

type memStore struct {
	snaps []save.Snapshot
	err   error
}

func (m *memStore) Save(_ context.Context, s save.Snapshot) error {
	if m.err != nil {
		return m.err
	}
	m.snaps = append(m.snaps, s)
	return nil
}

func (m *memStore) Load(context.Context) (save.Snapshot, error) {
	if len(m.snaps) == 0 {
		return save.Snapshot{}, save.ErrNoSnapshot
	}
	return m.snaps[len(m.snaps)-1], nil
}

func (m *memStore) Get(_ context.Context, id uuid.UUID) (save.Snapshot, error) {
	for _, s := range m.snaps {
		if s.ID == id {
			return s, nil
		}
	}
	return save.Snapshot{}, save.ErrNoSnapshot
}

// newestOnly hides memStore.Get.
type newestOnly struct {
	save.Store
}

type fixture struct {
	w      *ecs.World
	store  *overlay.Store
	ctrl   *room.Controller
	saves  *memStore
	p      *Pipeline
	player ecs.Entity
}

func blankRoom(exits ...world.Exit) *world.Room {
	return &world.Room{Description: []string{"A bare room", "", "", "", ""}, Exits: exits}
}

// newFixture builds rooms 0..2 where 0 and 1 connect north/south and room 0
// leads west to room 2.
func newFixture(t *testing.T, recs ...overlay.Record) *fixture {
	t.Helper()
	table := world.NewTable([]*world.Room{
		blankRoom(world.Exit{Direction: world.North, To: 1}, world.Exit{Direction: world.West, To: 2}),
		blankRoom(world.Exit{Direction: world.South, To: 0}),
		blankRoom(world.Exit{Direction: world.East, To: 0}),
	})
	items, err := inventory.NewCatalog([]inventory.Item{
		{Name: "Lamp", Description: "a brass lamp", Glyph: 'l'},
		{Name: "Magic Wand", Key: "wand", Description: "a wand", Glyph: '/'},
	})
	require.NoError(t, err)
	weak, strong := 1, 20
	enemies, err := npc.NewCatalog([]npc.Template{
		{Name: "Rat", Glyph: 'r', Health: 3},
		{Name: "Ogre", Glyph: 'O', Health: 30, Damage: &strong},
		{Name: "Imp", Glyph: 'i', Health: 50, Damage: &weak},
	})
	require.NoError(t, err)

	w := ecs.NewWorld()
	store := overlay.NewStore(3)
	for _, r := range recs {
		store.Set(r)
	}
	ctrl := room.NewController(w, table, store, spawn.New(w, items, enemies), zap.NewNop())
	player := spawn.SpawnPlayer(w, spawn.PlayerSpec{X: 5, Y: 5, Health: 10, Damage: 10, LogLines: 2, Debug: true})
	ctrl.ChangeRoom(0, room.NoRoom)

	resolver := command.NewResolver(command.DefaultRegistry(), items, nil, zap.NewNop())
	saves := &memStore{}
	return &fixture{
		w:      w,
		store:  store,
		ctrl:   ctrl,
		saves:  saves,
		p:      New(w, ctrl, store, resolver, saves, zap.NewNop()),
		player: player,
	}
}

func (f *fixture) pos() ecs.Position {
	p, _ := f.w.Positions.Get(f.player)
	return p
}

func (f *fixture) place(x, y int) {
	f.w.Positions.Set(f.player, ecs.Position{X: x, Y: y})
}

func TestTick_NorthboundArrivalAtBottomRow(t *testing.T) {
	f := newFixture(t)
	f.place(5, 0)

	res := f.p.Tick(context.Background(), Input{DY: -1})
	assert.Equal(t, 1, res.Room)
	assert.Equal(t, ecs.Position{X: 5, Y: world.Height - 1}, f.pos())
}

func TestTick_RoundTripThroughRooms(t *testing.T) {
	f := newFixture(t)
	f.place(5, 0)
	ctx := context.Background()

	f.p.Tick(ctx, Input{DY: -1})
	res := f.p.Tick(ctx, Input{DY: 1})
	assert.Equal(t, 0, res.Room)
	assert.Equal(t, ecs.Position{X: 5, Y: 0}, f.pos())
	assert.Empty(t, f.w.InRoom(1))
}

func TestTick_WestEdgeArrivesOnEastColumn(t *testing.T) {
	f := newFixture(t)
	f.place(0, 7)

	res := f.p.Tick(context.Background(), Input{DX: -1})
	assert.Equal(t, 2, res.Room)
	assert.Equal(t, ecs.Position{X: world.Width - 1, Y: 7}, f.pos())
}

func TestTick_NoExitMeansWall(t *testing.T) {
	f := newFixture(t)
	f.place(world.Width-1, 7)

	res := f.p.Tick(context.Background(), Input{DX: 1})
	assert.Equal(t, 0, res.Room)
	assert.Equal(t, ecs.Position{X: world.Width - 1, Y: 7}, f.pos())
}

func TestTick_CommandResponse(t *testing.T) {
	f := newFixture(t)
	res := f.p.Tick(context.Background(), Input{Command: "look"})
	assert.Equal(t, "A bare room", res.Response)

	res = f.p.Tick(context.Background(), Input{Command: "xyzzy"})
	assert.Equal(t, command.NotUnderstood, res.Response)
}

func TestTick_Quit(t *testing.T) {
	f := newFixture(t)
	res := f.p.Tick(context.Background(), Input{Command: "quit"})
	assert.True(t, res.Quit)
}

func TestTick_QuitStopsLaterStages(t *testing.T) {
	f := newFixture(t, overlay.Record{Room: 0, Items: []overlay.Item{{Item: "lamp", X: 6, Y: 5}}})
	res := f.p.Tick(context.Background(), Input{DX: 1, Command: "quit"})
	assert.True(t, res.Quit)
	assert.Empty(t, res.Picked)
	assert.Equal(t, ecs.Position{X: 5, Y: 5}, f.pos())
	assert.Len(t, f.w.Pickups.Entities(), 1)

	f.place(5, 0)
	res = f.p.Tick(context.Background(), Input{DY: -1, Command: "quit"})
	assert.True(t, res.Quit)
	assert.Equal(t, 0, res.Room, "a step onto an exit is not taken after quit")
	mv, _ := f.w.Movements.Get(f.player)
	assert.False(t, mv.Attempting())
}

func TestTick_PickupOnStep(t *testing.T) {
	f := newFixture(t, overlay.Record{Room: 0, Items: []overlay.Item{{Item: "lamp", X: 6, Y: 5}}})
	res := f.p.Tick(context.Background(), Input{DX: 1})
	assert.Equal(t, []string{"lamp"}, res.Picked)
	inv, _ := f.w.Inventories.Get(f.player)
	assert.Equal(t, []string{"lamp"}, inv.Items)
	assert.Empty(t, f.w.Pickups.Entities())
}

func TestTick_BumpKillsEnemy(t *testing.T) {
	f := newFixture(t, overlay.Record{Room: 0, Enemies: []overlay.Enemy{{Name: "rat", X: 6, Y: 5}}})
	rat := f.w.Enemies.Entities()[0]
	res := f.p.Tick(context.Background(), Input{DX: 1})
	assert.False(t, res.GameOver)
	assert.Equal(t, []string{"Rat was hit!"}, res.Log)
	assert.Equal(t, uint64(1), res.LogSeq)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, rat, res.Hits[0].Target)
	assert.Equal(t, f.player, res.Hits[0].Instigator)
	assert.True(t, res.Hits[0].Killed)
	assert.Empty(t, f.w.Enemies.Entities())
	assert.Equal(t, ecs.Position{X: 5, Y: 5}, f.pos())
}

func TestTick_PlayerDeathEndsGame(t *testing.T) {
	f := newFixture(t, overlay.Record{Room: 0, Enemies: []overlay.Enemy{{Name: "ogre", X: 6, Y: 5}}})
	res := f.p.Tick(context.Background(), Input{DX: 1})
	assert.True(t, res.GameOver)

	res = f.p.Tick(context.Background(), Input{})
	assert.True(t, res.GameOver)
}

func TestTick_EnemiesOnlyChaseWhenPlayerMoves(t *testing.T) {
	f := newFixture(t, overlay.Record{Room: 0, Enemies: []overlay.Enemy{{Name: "imp", X: 10, Y: 5}}})
	imp := f.w.Enemies.Entities()[0]

	f.p.Tick(context.Background(), Input{Command: "look"})
	p, _ := f.w.Positions.Get(imp)
	assert.Equal(t, ecs.Position{X: 10, Y: 5}, p)

	f.p.Tick(context.Background(), Input{DY: 1})
	p, _ = f.w.Positions.Get(imp)
	assert.Equal(t, ecs.Position{X: 9, Y: 5}, p)
}

func TestTick_DebugRedirect(t *testing.T) {
	f := newFixture(t)
	res := f.p.Tick(context.Background(), Input{Command: "go 2"})
	require.Equal(t, 2, res.Room)

	f.p.Tick(context.Background(), Input{Command: "redirect 1 2"})
	assert.Equal(t, map[int]int{1: 2}, f.ctrl.Redirects())

	f.p.Tick(context.Background(), Input{Command: "go 0"})
	f.place(5, 0)
	res = f.p.Tick(context.Background(), Input{DY: -1})
	assert.Equal(t, 2, res.Room)
}

func TestTick_DebugGoUnknownRoomIgnored(t *testing.T) {
	f := newFixture(t)
	res := f.p.Tick(context.Background(), Input{Command: "go 99"})
	assert.Equal(t, 0, res.Room)
}

func TestTick_WandOutsideSecretRoom(t *testing.T) {
	f := newFixture(t)
	f.w.Inventories.Set(f.player, ecs.Inventory{Items: []string{"wand"}})
	res := f.p.Tick(context.Background(), Input{Command: "wave wand"})
	assert.Equal(t, command.NothingHappens, res.Response)
	assert.Empty(t, f.ctrl.Redirects())
}

func TestTick_SaveAndLoad(t *testing.T) {
	f := newFixture(t, overlay.Record{Room: 0, Items: []overlay.Item{{Item: "lamp", X: 6, Y: 5}}})
	ctx := context.Background()

	res := f.p.Tick(ctx, Input{Command: "dsave"})
	require.Len(t, f.saves.snaps, 1)
	assert.Equal(t, "game saved as "+f.saves.snaps[0].ID.String(), res.Response)

	f.p.Tick(ctx, Input{DX: 1})
	inv, _ := f.w.Inventories.Get(f.player)
	require.Equal(t, []string{"lamp"}, inv.Items)

	res = f.p.Tick(ctx, Input{Command: "dload"})
	assert.Equal(t, "game loaded", res.Response)
	inv, _ = f.w.Inventories.Get(f.player)
	assert.Empty(t, inv.Items)
	assert.Len(t, f.w.Pickups.Entities(), 1)
	assert.Equal(t, ecs.Position{X: 5, Y: 5}, f.pos())
}

func TestTick_LoadByID(t *testing.T) {
	f := newFixture(t, overlay.Record{Room: 0, Items: []overlay.Item{{Item: "lamp", X: 6, Y: 5}}})
	ctx := context.Background()

	f.p.Tick(ctx, Input{Command: "dsave"})
	f.p.Tick(ctx, Input{DX: 1})
	f.p.Tick(ctx, Input{Command: "dsave"})
	require.Len(t, f.saves.snaps, 2)
	first := f.saves.snaps[0].ID

	res := f.p.Tick(ctx, Input{Command: "dload " + first.String()})
	assert.Equal(t, "game loaded", res.Response)
	inv, _ := f.w.Inventories.Get(f.player)
	assert.Empty(t, inv.Items)
	assert.Equal(t, ecs.Position{X: 5, Y: 5}, f.pos())

	res = f.p.Tick(ctx, Input{Command: "dload " + uuid.NewString()})
	assert.Equal(t, "no saved game", res.Response)

	res = f.p.Tick(ctx, Input{Command: "dload not-an-id"})
	assert.Equal(t, command.NotUnderstood, res.Response)
}

func TestTick_LoadByIDNeedsGetter(t *testing.T) {
	f := newFixture(t)
	f.p.saves = newestOnly{f.saves}
	res := f.p.Tick(context.Background(), Input{Command: "dload " + uuid.NewString()})
	assert.Equal(t, "this store keeps only the newest save", res.Response)
}

func TestTick_LoadWithoutSave(t *testing.T) {
	f := newFixture(t)
	res := f.p.Tick(context.Background(), Input{Command: "dload"})
	assert.Equal(t, "no saved game", res.Response)
}

func TestTick_SaveFailure(t *testing.T) {
	f := newFixture(t)
	f.saves.err = errors.New("disk full")
	res := f.p.Tick(context.Background(), Input{Command: "dsave"})
	assert.Equal(t, "save failed", res.Response)
}

func TestTick_QueueEmptyAfterEveryTick(t *testing.T) {
	f := newFixture(t, overlay.Record{Room: 0, Items: []overlay.Item{{Item: "lamp", X: 6, Y: 5}}})
	rapid.Check(t, func(t *rapid.T) {
		dx := rapid.IntRange(-1, 1).Draw(t, "dx")
		dy := rapid.IntRange(-1, 1).Draw(t, "dy")
		cmd := rapid.SampledFrom([]string{"", "look", "inventory", "look lamp", "use lamp", "go 1", "go 0"}).Draw(t, "cmd")
		res := f.p.Tick(context.Background(), Input{DX: dx, DY: dy, Command: cmd})
		if f.p.queue.Len() != 0 {
			t.Fatalf("queue holds %d actions after tick", f.p.queue.Len())
		}
		if !f.ctrl.Table().Valid(res.Room) {
			t.Fatalf("current room %d invalid", res.Room)
		}
		for _, e := range f.w.Rooms.Entities() {
			r, _ := f.w.Rooms.Get(e)
			if r.Room != res.Room {
				t.Fatalf("entity of room %d alive while in room %d", r.Room, res.Room)
			}
		}
	})
}
