package handlers

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/castle/internal/game/room"
	"github.com/cory-johannsen/castle/internal/game/turn"
	"github.com/cory-johannsen/castle/internal/game/world"
)

// RenderRoom formats the current room as a header, its non-blank description
// lines and its exits.
func RenderRoom(ctrl *room.Controller) []string {
	current := ctrl.Current()
	lines := []string{fmt.Sprintf("[room %d]", current)}
	for _, l := range ctrl.Description(current) {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}

	var dirs []string
	seen := make(map[world.Direction]bool)
	for _, e := range ctrl.Table().Room(current).Exits {
		if e.Direction == world.Invalid || seen[e.Direction] {
			continue
		}
		seen[e.Direction] = true
		dirs = append(dirs, e.Direction.String())
	}
	if len(dirs) > 0 {
		lines = append(lines, "exits: "+strings.Join(dirs, ", "))
	}
	return lines
}

// Transcript formats tick results for one game. The active response and
// combat log persist between ticks, so each is written only when it is new.
type Transcript struct {
	seq uint64
}

// Lines returns the text for one tick. The response is shown for ticks that
// carried a command; the combat log is shown when a line was pushed since
// the last one shown, even if the visible lines read the same.
func (t *Transcript) Lines(in turn.Input, res turn.Result) []string {
	var lines []string
	if in.Command != "" && res.Response != "" {
		lines = append(lines, res.Response)
	}
	for _, item := range res.Picked {
		lines = append(lines, fmt.Sprintf("you pick up the %s", item))
	}
	if res.LogSeq != t.seq {
		for _, l := range res.Log {
			lines = append(lines, "  "+l)
		}
		t.seq = res.LogSeq
	}
	if res.GameOver {
		lines = append(lines, "you have died")
	}
	return lines
}
