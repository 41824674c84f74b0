package command

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/castle/internal/game/action"
	"github.com/cory-johannsen/castle/internal/game/ecs"
	"github.com/cory-johannsen/castle/internal/game/inventory"
)

// Fixed responses.
const (
	NotUnderstood  = "i don't understand"
	NotFound       = "you don't see that here"
	NothingHappens = "nothing happens"
	DoesNotWork    = "that doesn't work"
)

// Rooms with built-in item effects.
const (
	ThroneRoom = 0
	SecretRoom = 76
	SecretExit = 1
)

// ItemHooks runs scripted item effects for items without a built-in handler.
type ItemHooks interface {
	OnUse(verb, item string, room int) (string, bool)
}

// Env is the per-tick state a command may read or affect.
type Env struct {
	World *ecs.World
	// Actor is the entity that typed the command.
	Actor ecs.Entity
	// Room is the current room index.
	Room int
	// RoomText is the current room's description lines.
	RoomText []string
	Queue    *action.Queue
}

// Resolver dispatches parsed commands.
type Resolver struct {
	registry *Registry
	items    *inventory.Catalog
	hooks    ItemHooks
	logger   *zap.Logger
}

// NewResolver creates a Resolver.
//
// Precondition: registry, items and logger must be non-nil; hooks may be nil.
func NewResolver(registry *Registry, items *inventory.Catalog, hooks ItemHooks, logger *zap.Logger) *Resolver {
	return &Resolver{registry: registry, items: items, hooks: hooks, logger: logger}
}

// Resolve interprets one line typed by env.Actor and returns the response
// text. Structural effects are pushed onto env.Queue.
//
// Postcondition: Unknown or malformed input yields NotUnderstood and no queued action.
func (r *Resolver) Resolve(env Env, line string) string {
	p := Parse(line)
	debug := env.World.Debug.Has(env.Actor)
	m, ok := r.registry.Lookup(p.Command, debug)
	if !ok {
		return NotUnderstood
	}
	r.logger.Debug("command", zap.String("handler", m.Handler), zap.String("verb", m.Verb), zap.String("target", p.Target))

	switch m.Handler {
	case HandlerLook:
		if p.Target == "" {
			return roomText(env.RoomText)
		}
		return look(env.World, p.Target)
	case HandlerUse:
		return r.use(env, m.Verb, p.Target)
	case HandlerHelp:
		return r.help(p.Target, debug)
	case HandlerInventory:
		inv, _ := env.World.Inventories.Get(env.Actor)
		return inventory.Describe(r.items, inv)
	case HandlerQuit:
		env.Queue.Push(action.Quit{})
		return "goodbye"
	case HandlerGo:
		to, err := intArg(p.Args, 0)
		if err != nil {
			return NotUnderstood
		}
		env.Queue.Push(action.ChangeRoom{To: to})
		return "going to room " + strconv.Itoa(to)
	case HandlerSave:
		env.Queue.Push(action.Save{})
		return "saving"
	case HandlerLoad:
		if len(p.Args) == 0 {
			env.Queue.Push(action.Load{})
			return "loading"
		}
		id, err := uuid.Parse(p.Args[0])
		if err != nil {
			return NotUnderstood
		}
		env.Queue.Push(action.Load{ID: id})
		return "loading " + id.String()
	case HandlerRedirect:
		from, err := intArg(p.Args, 0)
		if err != nil {
			return NotUnderstood
		}
		to, err := intArg(p.Args, 1)
		if err != nil {
			return NotUnderstood
		}
		env.Queue.Push(action.RedirectRoom{From: from, To: to})
		return "redirecting " + strconv.Itoa(from) + " to " + strconv.Itoa(to)
	default:
		return NotUnderstood
	}
}

// help lists the commands visible to the actor, or describes one of them.
func (r *Resolver) help(target string, debug bool) string {
	if target != "" {
		m, ok := r.registry.Lookup(target, debug)
		if !ok {
			return NotUnderstood
		}
		text := m.Name + ": " + strings.ToLower(m.Help)
		if len(m.Aliases) > 0 {
			text += " (also " + strings.Join(m.Aliases, ", ") + ")"
		}
		return text
	}
	visible := r.registry.Visible(debug)
	names := make([]string, 0, len(visible))
	for _, cmd := range visible {
		names = append(names, cmd.Name)
	}
	return "commands: " + strings.Join(names, ", ")
}

func intArg(args []string, i int) (int, error) {
	if i >= len(args) {
		return 0, strconv.ErrSyntax
	}
	return strconv.Atoi(args[i])
}

func roomText(lines []string) string {
	var kept []string
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			kept = append(kept, l)
		}
	}
	if len(kept) == 0 {
		return "you see nothing special"
	}
	return strings.Join(kept, " ")
}

// look finds a described entity by lookup key, then by case-folded display
// name. Key matches win over name matches regardless of slot order.
func look(w *ecs.World, target string) string {
	described := w.Descriptions.Entities()
	for _, e := range described {
		if d, _ := w.Descriptions.Get(e); d.Key == target {
			return d.Text
		}
	}
	for _, e := range described {
		if d, _ := w.Descriptions.Get(e); strings.ToLower(d.Name) == target {
			return d.Text
		}
	}
	return NotFound
}

func (r *Resolver) use(env Env, verb, target string) string {
	if target == "" {
		return NotUnderstood
	}
	item := target
	if it, err := r.items.Lookup(target); err == nil {
		item = it.ID()
	}
	inv, _ := env.World.Inventories.Get(env.Actor)
	switch item {
	case "scepter":
		if !inv.Contains("scepter") {
			return "you don't have a scepter"
		}
		if verb != "use" && verb != "wave" {
			return DoesNotWork
		}
		if env.Room == ThroneRoom {
			return "you win!"
		}
		return NothingHappens
	case "wand":
		if !inv.Contains("wand") {
			return "you don't have a wand"
		}
		if verb != "use" && verb != "wave" {
			return DoesNotWork
		}
		if env.Room == SecretRoom {
			env.Queue.Push(action.RedirectRoom{From: SecretRoom, To: SecretExit})
			return "a secret passage opens!"
		}
		return NothingHappens
	}

	if !inv.Contains(item) {
		return NotUnderstood
	}
	if r.hooks == nil {
		return NothingHappens
	}
	if text, ok := r.hooks.OnUse(verb, item, env.Room); ok {
		return text
	}
	return NothingHappens
}
