// Package turn runs one simulation tick: input, AI, commands, movement,
// pickups, combat, exits and maintenance, draining deferred actions after
// each stage.
package turn

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/castle/internal/game/action"
	"github.com/cory-johannsen/castle/internal/game/ai"
	"github.com/cory-johannsen/castle/internal/game/combat"
	"github.com/cory-johannsen/castle/internal/game/command"
	"github.com/cory-johannsen/castle/internal/game/ecs"
	"github.com/cory-johannsen/castle/internal/game/inventory"
	"github.com/cory-johannsen/castle/internal/game/movement"
	"github.com/cory-johannsen/castle/internal/game/overlay"
	"github.com/cory-johannsen/castle/internal/game/room"
	"github.com/cory-johannsen/castle/internal/game/save"
	"github.com/cory-johannsen/castle/internal/observability"
)

// Input is one poll of player input. DX and DY are the requested step;
// Command is a typed line, empty when none.
type Input struct {
	DX, DY  int
	Command string
}

// Result reports what the tick produced.
type Result struct {
	// Quit is set once a quit command has been processed.
	Quit bool
	// GameOver is set when the player has died.
	GameOver bool
	// Response is the player's current active description.
	Response string
	// Room is the current room after the tick.
	Room int
	// Log is the player's combat log, oldest first.
	Log []string
	// LogSeq counts every line ever pushed to Log. It changes whenever a
	// line is added, even when Log reads the same as before.
	LogSeq uint64
	// Picked lists items collected this tick.
	Picked []string
	// Hits lists the damage applied this tick.
	Hits []combat.Hit
}

// Pipeline owns the per-session stage state. It is driven from a single goroutine.
type Pipeline struct {
	w        *ecs.World
	ctrl     *room.Controller
	overlay  *overlay.Store
	resolver *command.Resolver
	saves    save.Store
	logger   *zap.Logger
	queue    action.Queue
	tick     uint64
	now      func() time.Time
}

// New returns a Pipeline. saves may be nil, in which case save and load
// requests are answered with a refusal.
//
// Precondition: w, ctrl, store, resolver and logger are non-nil.
func New(w *ecs.World, ctrl *room.Controller, store *overlay.Store, resolver *command.Resolver, saves save.Store, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		w:        w,
		ctrl:     ctrl,
		overlay:  store,
		resolver: resolver,
		saves:    saves,
		logger:   logger,
		now:      time.Now,
	}
}

// Push queues an action from outside a stage, e.g. a script callback. It is
// drained after the stage that is running.
func (p *Pipeline) Push(a action.Action) {
	p.queue.Push(a)
}

// Ticks returns the number of completed ticks.
func (p *Pipeline) Ticks() uint64 {
	return p.tick
}

// Tick advances the simulation by one input poll.
//
// Precondition: the controller has entered a room.
// Postcondition: the action queue is empty.
func (p *Pipeline) Tick(ctx context.Context, in Input) Result {
	var res Result
	player, ok := p.w.PlayerEntity()
	if !ok {
		res.GameOver = true
		res.Room = p.ctrl.Current()
		return res
	}

	moved := in.DX != 0 || in.DY != 0
	if moved {
		movement.Intend(p.w, player, in.DX, in.DY)
		ai.Chase(p.w)
	}
	p.drain(ctx, &res)

	if in.Command != "" {
		text := p.resolver.Resolve(command.Env{
			World:    p.w,
			Actor:    player,
			Room:     p.ctrl.Current(),
			RoomText: p.ctrl.Description(p.ctrl.Current()),
			Queue:    &p.queue,
		}, in.Command)
		p.respond(player, text)
		p.drain(ctx, &res)
	}
	if res.Quit {
		// no stage runs after a quit; pending intents are discarded
		movement.Clear(p.w)
		return p.finish(player, res)
	}

	out := movement.Resolve(p.w)
	p.logger.Debug("movement resolved", observability.Tick(p.tick),
		zap.Int("attempted", out.Attempted), zap.Int("moved", len(out.Moved)), zap.Int("blocked", len(out.Blocked)))

	res.Picked = inventory.Collect(p.w, &p.queue)
	p.drain(ctx, &res)

	if out.Attempted > 0 {
		combat.Engage(p.w)
		res.Hits = combat.ApplyDamage(p.w)
		for _, h := range res.Hits {
			p.logger.Debug("hit", observability.Tick(p.tick),
				zap.Uint64("target", uint64(h.Target)), zap.Uint64("instigator", uint64(h.Instigator)),
				zap.Int("damage", h.Damage))
		}
		if killed := combat.Killed(res.Hits); len(killed) > 0 {
			for _, e := range killed {
				if e == player {
					res.GameOver = true
				}
			}
			p.logger.Debug("combat deaths", observability.Tick(p.tick), zap.Int("killed", len(killed)))
		}
		if a := combat.CollectDead(p.w); a != nil {
			p.queue.Push(a)
		}
		p.drain(ctx, &res)
	}

	if !res.GameOver {
		p.exits(player)
		p.drain(ctx, &res)
	}

	return p.finish(player, res)
}

// finish runs maintenance and fills in the player's view of the tick.
func (p *Pipeline) finish(player ecs.Entity, res Result) Result {
	p.tick++
	res.Room = p.ctrl.Current()
	if d, ok := p.w.ActiveDescriptions.Get(player); ok {
		res.Response = d.Text
	}
	if l, ok := p.w.CombatLogs.Get(player); ok {
		res.Log = append([]string(nil), l.Lines...)
		res.LogSeq = l.Pushed
	}
	return res
}

// exits queues a room change when the player moved onto an exit trigger.
func (p *Pipeline) exits(player ecs.Entity) {
	mv, ok := p.w.Movements.Get(player)
	if !ok || !mv.Moved {
		return
	}
	pos, _ := p.w.Positions.Get(player)
	for _, e := range p.w.At(pos) {
		if t, ok := p.w.ExitTriggers.Get(e); ok {
			p.queue.Push(action.ChangeRoom{To: t.To, Direction: t.Direction})
			return
		}
	}
}

func (p *Pipeline) respond(player ecs.Entity, text string) {
	p.w.ActiveDescriptions.Set(player, ecs.ActiveDescription{Text: text})
}

// drain applies every queued action in order. Actions queued while draining
// are applied in the same call.
func (p *Pipeline) drain(ctx context.Context, res *Result) {
	for p.queue.Len() > 0 {
		for _, a := range p.queue.Drain() {
			p.apply(ctx, a, res)
		}
	}
}

func (p *Pipeline) apply(ctx context.Context, a action.Action, res *Result) {
	table := p.ctrl.Table()
	switch a := a.(type) {
	case action.DeleteEntities:
		p.w.DestroyBatch(a.Entities)
	case action.ChangeRoom:
		if !table.Valid(a.To) {
			p.logger.Warn("room change to unknown room ignored", observability.Tick(p.tick), zap.Int("to", a.To))
			return
		}
		entered := p.ctrl.Enter(a.To)
		room.Arrive(p.w, a.Direction)
		p.logger.Debug("player arrived", observability.Tick(p.tick),
			zap.Int("room", entered), zap.Stringer("direction", a.Direction))
	case action.RedirectRoom:
		if !table.Valid(a.From) || !table.Valid(a.To) {
			p.logger.Warn("redirect naming unknown room ignored", zap.Int("from", a.From), zap.Int("to", a.To))
			return
		}
		p.ctrl.Redirect(a.From, a.To)
	case action.Quit:
		res.Quit = true
	case action.Save:
		p.save(ctx)
	case action.Load:
		p.load(ctx, a.ID)
	default:
		p.logger.Warn("unhandled action", zap.String("kind", a.Kind()))
	}
}

func (p *Pipeline) save(ctx context.Context) {
	player, _ := p.w.PlayerEntity()
	if p.saves == nil {
		p.respond(player, "saving is disabled")
		return
	}
	snap := save.Capture(p.w, p.ctrl, p.overlay, p.now())
	if err := p.saves.Save(ctx, snap); err != nil {
		p.logger.Warn("save failed", zap.Error(err))
		p.respond(player, "save failed")
		return
	}
	p.logger.Info("session saved", zap.Stringer("snapshot", snap.ID), zap.Int("room", snap.Room))
	p.respond(player, "game saved as "+snap.ID.String())
}

func (p *Pipeline) load(ctx context.Context, id uuid.UUID) {
	player, _ := p.w.PlayerEntity()
	if p.saves == nil {
		p.respond(player, "loading is disabled")
		return
	}
	var (
		snap save.Snapshot
		err  error
	)
	if id == uuid.Nil {
		snap, err = p.saves.Load(ctx)
	} else if g, ok := p.saves.(save.Getter); ok {
		snap, err = g.Get(ctx, id)
	} else {
		p.respond(player, "this store keeps only the newest save")
		return
	}
	if errors.Is(err, save.ErrNoSnapshot) {
		p.respond(player, "no saved game")
		return
	}
	if err != nil {
		p.logger.Warn("load failed", zap.Error(err))
		p.respond(player, "load failed")
		return
	}
	if err := save.Restore(p.w, p.ctrl, p.overlay, snap); err != nil {
		p.logger.Warn("restore failed", zap.Stringer("snapshot", snap.ID), zap.Error(err))
		p.respond(player, "load failed")
		return
	}
	p.logger.Info("session loaded", zap.Stringer("snapshot", snap.ID), zap.Int("room", snap.Room))
	p.respond(player, "game loaded")
}
