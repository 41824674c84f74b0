package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/castle/internal/game/action"
	"github.com/cory-johannsen/castle/internal/game/command"
	"github.com/cory-johannsen/castle/internal/game/ecs"
	"github.com/cory-johannsen/castle/internal/game/overlay"
	"github.com/cory-johannsen/castle/internal/game/room"
	"github.com/cory-johannsen/castle/internal/game/save"
	"github.com/cory-johannsen/castle/internal/game/spawn"
	"github.com/cory-johannsen/castle/internal/game/turn"
	"github.com/cory-johannsen/castle/internal/observability"
	"github.com/cory-johannsen/castle/internal/scripting"
)

// Game is one player's private simulation. It is driven from a single goroutine.
type Game struct {
	ID         uuid.UUID
	World      *ecs.World
	Controller *room.Controller
	Pipeline   *turn.Pipeline
	Player     ecs.Entity

	scripts   *scripting.Manager
	startRoom int
	logger    *zap.Logger
}

// NewGame builds a game from c. saves may be nil to disable save and load.
//
// Precondition: c and logger are non-nil.
// Postcondition: Returns a game that shares no mutable state with any other
// game, or an error if the overlay or scripts cannot be loaded.
func NewGame(c *Content, saves save.Store, logger *zap.Logger) (*Game, error) {
	id := uuid.New()
	logger = logger.With(zap.Stringer("session", id))

	store := overlay.NewStore(c.Table.Len())
	if err := store.Restore(c.Overlay); err != nil {
		return nil, fmt.Errorf("restoring overlay: %w", err)
	}

	w := ecs.NewWorld()
	ctrl := room.NewController(w, c.Table, store, spawn.New(w, c.Items, c.Enemies), observability.Component(logger, "room"))
	player := spawn.SpawnPlayer(w, c.Player)

	g := &Game{
		ID:         id,
		World:      w,
		Controller: ctrl,
		Player:     player,
		startRoom:  c.StartRoom,
		logger:     logger,
	}

	var hooks command.ItemHooks
	if c.ScriptsDir != "" {
		g.scripts = scripting.NewManager(c.ScriptLimit, observability.Component(logger, "scripting"))
		if err := g.scripts.LoadGlobal(c.ScriptsDir); err != nil {
			g.scripts.Close()
			return nil, err
		}
		hooks = g.scripts
	}

	resolver := command.NewResolver(command.DefaultRegistry(), c.Items, hooks, observability.Component(logger, "command"))
	g.Pipeline = turn.New(w, ctrl, store, resolver, saves, observability.Component(logger, "turn"))

	if g.scripts != nil {
		g.scripts.Redirect = func(from, to int) {
			g.Pipeline.Push(action.RedirectRoom{From: from, To: to})
		}
		g.scripts.HasItem = func(item string) bool {
			inv, _ := w.Inventories.Get(player)
			return inv.Contains(item)
		}
	}
	return g, nil
}

// Start enters the start room.
func (g *Game) Start() {
	g.Controller.ChangeRoom(g.startRoom, room.NoRoom)
	g.logger.Info("game started", zap.Int("room", g.Controller.Current()))
}

// Tick advances the game by one input.
func (g *Game) Tick(ctx context.Context, in turn.Input) turn.Result {
	return g.Pipeline.Tick(ctx, in)
}

// Close releases the game's Lua VMs.
func (g *Game) Close() {
	if g.scripts != nil {
		g.scripts.Close()
	}
	g.logger.Info("game closed", zap.Uint64("ticks", g.Pipeline.Ticks()))
}
