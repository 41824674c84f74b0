// Package command parses free-text player input and resolves it into a
// response and queued actions.
package command

// Categories for organizing commands.
const (
	CategoryWorld  = "world"
	CategoryItem   = "item"
	CategorySystem = "system"
	CategoryDebug  = "debug"
)

// Handler identifiers dispatched by Resolver.Resolve.
const (
	HandlerLook      = "look"
	HandlerUse       = "use"
	HandlerInventory = "inventory"
	HandlerQuit      = "quit"
	HandlerHelp      = "help"
	HandlerGo        = "go"
	HandlerSave      = "dsave"
	HandlerLoad      = "dload"
	HandlerRedirect  = "redirect"
)

// Command defines a player-invocable command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Help is the short help text.
	Help string
	// Category groups the command.
	Category string
	// Handler selects the resolver branch.
	Handler string
}

// Debug reports whether the command requires the Debug capability.
func (c *Command) Debug() bool {
	return c.Category == CategoryDebug
}

// BuiltinCommands returns all built-in commands. The use handler keeps the
// typed verb, so wave, show and play are aliases that still reach item
// handlers as distinct verbs.
func BuiltinCommands() []Command {
	return []Command{
		{Name: "look", Aliases: []string{"l"}, Help: "Look at the room or at something in it", Category: CategoryWorld, Handler: HandlerLook},

		{Name: "use", Aliases: []string{"wave", "show", "play"}, Help: "Use a carried item", Category: CategoryItem, Handler: HandlerUse},
		{Name: "inventory", Aliases: []string{"i", "inv"}, Help: "List carried items", Category: CategoryItem, Handler: HandlerInventory},

		{Name: "help", Aliases: []string{"?"}, Help: "List commands, or explain one", Category: CategorySystem, Handler: HandlerHelp},
		{Name: "quit", Aliases: []string{"exit"}, Help: "Leave the castle", Category: CategorySystem, Handler: HandlerQuit},

		{Name: "go", Help: "Jump to a room by index", Category: CategoryDebug, Handler: HandlerGo},
		{Name: "dsave", Help: "Save the session", Category: CategoryDebug, Handler: HandlerSave},
		{Name: "dload", Help: "Load the newest save, or the save with the given id", Category: CategoryDebug, Handler: HandlerLoad},
		{Name: "redirect", Help: "Redirect entries into one room to another", Category: CategoryDebug, Handler: HandlerRedirect},
	}
}
