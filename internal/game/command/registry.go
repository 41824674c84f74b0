package command

import (
	"fmt"
	"strings"
)

// Match is a command found for a typed verb.
type Match struct {
	*Command
	// Verb is the word the player typed. Aliases of use keep it, so item
	// handlers can tell "wave" from "play".
	Verb string
}

// Registry maps every verb, canonical or alias, to its command. Debug
// commands are only visible to actors holding the Debug capability.
type Registry struct {
	verbs map[string]*Command
	order []*Command
}

// NewRegistry creates a Registry populated with the given commands.
//
// Precondition: every verb is a single lowercase word used by one command.
// Postcondition: Returns a Registry or an error naming the first bad or
// colliding verb.
func NewRegistry(cmds []Command) (*Registry, error) {
	r := &Registry{
		verbs: make(map[string]*Command, len(cmds)),
		order: make([]*Command, 0, len(cmds)),
	}
	for i := range cmds {
		cmd := &cmds[i]
		if cmd.Name == "" || cmd.Handler == "" {
			return nil, fmt.Errorf("command %d: name and handler are required", i)
		}
		verbs := append([]string{cmd.Name}, cmd.Aliases...)
		for _, verb := range verbs {
			if verb == "" || verb != strings.ToLower(verb) || strings.ContainsAny(verb, " \t") {
				return nil, fmt.Errorf("command %q: verb %q must be one lowercase word", cmd.Name, verb)
			}
			if prev, ok := r.verbs[verb]; ok {
				return nil, fmt.Errorf("verb %q registered by both %q and %q", verb, prev.Name, cmd.Name)
			}
			r.verbs[verb] = cmd
		}
		r.order = append(r.order, cmd)
	}
	return r, nil
}

// DefaultRegistry creates a Registry with all built-in commands.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(BuiltinCommands())
	if err != nil {
		panic(fmt.Sprintf("building default registry: %v", err))
	}
	return r
}

// Lookup finds the command for verb as seen by an actor. A debug command
// looked up without the debug capability is reported as unknown.
//
// Postcondition: Returns (match, true) with match.Verb == verb, or (Match{}, false).
func (r *Registry) Lookup(verb string, debug bool) (Match, bool) {
	cmd, ok := r.verbs[verb]
	if !ok || (cmd.Debug() && !debug) {
		return Match{}, false
	}
	return Match{Command: cmd, Verb: verb}, true
}

// Commands returns all registered commands in registration order.
func (r *Registry) Commands() []*Command {
	return append([]*Command(nil), r.order...)
}

// Visible returns the commands an actor may use, in registration order.
func (r *Registry) Visible(debug bool) []*Command {
	out := make([]*Command, 0, len(r.order))
	for _, cmd := range r.order {
		if cmd.Debug() && !debug {
			continue
		}
		out = append(out, cmd)
	}
	return out
}
