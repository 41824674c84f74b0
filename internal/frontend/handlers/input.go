// Package handlers drives games from line-oriented text: it parses input
// lines, renders tick results and runs the play loop for a connection.
package handlers

import (
	"strings"

	"github.com/cory-johannsen/castle/internal/game/turn"
)

// steps maps movement words to grid displacements. North is -Y.
var steps = map[string][2]int{
	"n": {0, -1}, "north": {0, -1},
	"s": {0, 1}, "south": {0, 1},
	"e": {1, 0}, "east": {1, 0},
	"w": {-1, 0}, "west": {-1, 0},
	"ne": {1, -1}, "nw": {-1, -1},
	"se": {1, 1}, "sw": {-1, 1},
}

// ParseInput turns one line into tick input. A lone movement word becomes a
// step; an empty line is a wait; anything else is a command.
func ParseInput(line string) turn.Input {
	line = strings.TrimSpace(line)
	if d, ok := steps[strings.ToLower(line)]; ok {
		return turn.Input{DX: d[0], DY: d[1]}
	}
	return turn.Input{Command: line}
}
