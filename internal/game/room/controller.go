// Package room builds and tears down the entities of the room the player is in.
package room

import (
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/castle/internal/game/ecs"
	"github.com/cory-johannsen/castle/internal/game/overlay"
	"github.com/cory-johannsen/castle/internal/game/spawn"
	"github.com/cory-johannsen/castle/internal/game/world"
)

// NoRoom is the current room before the first transition.
const NoRoom = -1

// Controller owns room transitions. It captures the overlay of the room being
// left, destroys that room's entities, and builds the new room from static
// geometry, edge triggers and the overlay.
type Controller struct {
	w         *ecs.World
	table     *world.Table
	overlay   *overlay.Store
	spawner   overlay.Spawner
	logger    *zap.Logger
	current   int
	redirects map[int]int
}

// NewController returns a Controller with no current room.
//
// Precondition: all arguments are non-nil and table.Len() == store.Len().
func NewController(w *ecs.World, table *world.Table, store *overlay.Store, sp overlay.Spawner, logger *zap.Logger) *Controller {
	return &Controller{
		w:         w,
		table:     table,
		overlay:   store,
		spawner:   sp,
		logger:    logger,
		current:   NoRoom,
		redirects: make(map[int]int),
	}
}

// Current returns the current room index, or NoRoom.
func (c *Controller) Current() int {
	return c.current
}

// Table returns the static room table.
func (c *Controller) Table() *world.Table {
	return c.table
}

// Redirect makes every later transition targeting from land in to.
//
// Precondition: both indices address rooms; out-of-range indices panic.
func (c *Controller) Redirect(from, to int) {
	c.table.Room(from)
	c.table.Room(to)
	if from == to {
		delete(c.redirects, from)
		return
	}
	c.redirects[from] = to
	c.logger.Info("room redirected", zap.Int("from", from), zap.Int("to", to))
}

// Redirects returns a copy of the redirect table.
func (c *Controller) Redirects() map[int]int {
	out := make(map[int]int, len(c.redirects))
	for k, v := range c.redirects {
		out[k] = v
	}
	return out
}

// SetRedirects replaces the redirect table.
func (c *Controller) SetRedirects(r map[int]int) {
	c.redirects = make(map[int]int, len(r))
	for k, v := range r {
		c.redirects[k] = v
	}
}

// Resolve follows redirects from room. Chains are followed until a room
// without a redirect, or until a room repeats.
func (c *Controller) Resolve(room int) int {
	seen := map[int]bool{room: true}
	for {
		next, ok := c.redirects[room]
		if !ok || seen[next] {
			return room
		}
		seen[next] = true
		room = next
	}
}

// Enter transitions from the current room to the redirect-resolved target.
//
// Postcondition: Returns the room actually entered.
func (c *Controller) Enter(target int) int {
	to := c.Resolve(target)
	c.ChangeRoom(to, c.current)
	return to
}

// ChangeRoom replaces the entities of oldRoom with those of newRoom. An
// oldRoom outside the table (NoRoom) skips the overlay capture.
//
// Precondition: newRoom addresses a room; an out-of-range index panics.
// Postcondition: Exactly the entities of newRoom plus room-independent
// entities exist; Current() == newRoom.
func (c *Controller) ChangeRoom(newRoom, oldRoom int) {
	room := c.table.Room(newRoom)
	if c.table.Valid(oldRoom) {
		c.overlay.Capture(c.w, oldRoom)
	}
	c.clear(oldRoom)
	c.build(newRoom, room)
	if err := c.overlay.Apply(newRoom, c.spawner); err != nil {
		c.logger.Warn("overlay replay incomplete", zap.Int("room", newRoom), zap.Error(err))
	}
	c.current = newRoom
	c.logger.Info("room changed", zap.Int("from", oldRoom), zap.Int("to", newRoom))
}

// Rebuild replaces the current room's entities with the static geometry of
// room, without capturing or replaying the overlay. Session restore uses it
// before recreating saved entities.
//
// Precondition: room addresses a room; an out-of-range index panics.
func (c *Controller) Rebuild(room int) {
	r := c.table.Room(room)
	c.clear(c.current)
	c.build(room, r)
	c.current = room
}

func (c *Controller) clear(room int) {
	if room == NoRoom {
		return
	}
	owned := c.w.InRoom(room)
	c.w.DestroyBatch(owned)
	c.logger.Debug("room cleared", zap.Int("room", room), zap.Int("entities", len(owned)))
}

func (c *Controller) build(index int, r *world.Room) {
	for _, t := range r.Tiles {
		e := c.w.Create()
		c.w.Positions.Set(e, ecs.Position{X: t.X, Y: t.Y})
		c.w.Renderables.Set(e, ecs.Renderable{Glyph: t.Glyph, Z: spawn.ZTile})
		if t.Collidable {
			c.w.Colliders.Set(e, ecs.Collider{})
		}
		if exit, ok := r.TileExit(t); ok {
			c.w.ExitTriggers.Set(e, ecs.ExitTrigger{Direction: exit.Direction, To: exit.To})
		}
		c.w.Rooms.Set(e, ecs.BelongsToRoom{Room: index})
	}

	if exit, ok := r.ExitFor(world.West); ok {
		for row := 0; row < world.Height; row++ {
			c.edge(index, -1, row, exit)
		}
	}
	if exit, ok := r.ExitFor(world.East); ok {
		for row := 0; row < world.Height; row++ {
			c.edge(index, world.Width, row, exit)
		}
	}
	if exit, ok := r.ExitFor(world.North); ok {
		for col := 1; col < world.Width-1; col++ {
			c.edge(index, col, -1, exit)
		}
	}
	if exit, ok := r.ExitFor(world.South); ok {
		for col := 1; col < world.Width-1; col++ {
			c.edge(index, col, world.Height, exit)
		}
	}
}

func (c *Controller) edge(index, x, y int, exit world.Exit) {
	e := c.w.Create()
	c.w.Positions.Set(e, ecs.Position{X: x, Y: y})
	c.w.ExitTriggers.Set(e, ecs.ExitTrigger{Direction: exit.Direction, To: exit.To})
	c.w.Rooms.Set(e, ecs.BelongsToRoom{Room: index})
}

// Description returns the room's description lines with trailing padding removed.
func (c *Controller) Description(room int) []string {
	lines := c.table.Room(room).Description
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = strings.TrimRight(l, " \x00")
	}
	return out
}

// Arrive places the player on the side of the new room opposite the side it
// left through: leaving North arrives at the bottom row, and so on. Invalid,
// Up and Down keep the position unchanged.
func Arrive(w *ecs.World, dir world.Direction) {
	for _, p := range w.Players.Entities() {
		pos, ok := w.Positions.Get(p)
		if !ok {
			continue
		}
		switch dir {
		case world.North:
			pos.Y = world.Height - 1
		case world.South:
			pos.Y = 0
		case world.East:
			pos.X = 0
		case world.West:
			pos.X = world.Width - 1
		}
		w.Positions.Set(p, pos)
	}
}

