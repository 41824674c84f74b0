// Package world provides the static room model: tiles, exits, directions,
// and the binary map decoder that produces them.
package world

import "fmt"

// Room grid dimensions.
const (
	Width  = 24
	Height = 18
	// DescriptionLines is the number of description lines per room.
	DescriptionLines = 5
	// DescriptionWidth is the byte width of one description line.
	DescriptionWidth = 25
	// ExitBytes is the byte width of the exit string.
	ExitBytes = 18
	// RecordSize is the size in bytes of one room record.
	RecordSize = Width*Height + DescriptionLines*DescriptionWidth + ExitBytes
)

// Direction identifies the side of a room an exit leaves from.
type Direction int

// Exit directions. Invalid marks an unrecognized exit letter; such exits are
// kept but never match a trigger.
const (
	Invalid Direction = iota
	North
	South
	East
	West
	Up
	Down
)

// String returns the lowercase direction name.
func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case South:
		return "south"
	case East:
		return "east"
	case West:
		return "west"
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return "invalid"
	}
}

// Opposite returns the opposite direction. Invalid is its own opposite.
func (d Direction) Opposite() Direction {
	switch d {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	case West:
		return East
	case Up:
		return Down
	case Down:
		return Up
	default:
		return Invalid
	}
}

// DirectionFromLetter maps an exit letter to its direction.
//
// Postcondition: Returns Invalid for any letter other than N, S, E, W, U, D.
func DirectionFromLetter(b byte) Direction {
	switch b {
	case 'N':
		return North
	case 'S':
		return South
	case 'E':
		return East
	case 'W':
		return West
	case 'U':
		return Up
	case 'D':
		return Down
	default:
		return Invalid
	}
}

// Exit is a passage from a room to a destination room index.
type Exit struct {
	Direction Direction
	// To is the 0-indexed destination room.
	To int
}

// Tile is one non-blank cell of a room grid.
type Tile struct {
	// Code is the raw byte from the map file.
	Code byte
	// Glyph is the display rune derived from Code.
	Glyph rune
	// Collidable reports whether the tile blocks movement.
	Collidable bool
	X, Y      int
}

// Room is the immutable geometry of one room.
type Room struct {
	// Tiles lists the non-blank tiles in row-major order.
	Tiles []Tile
	// Description holds exactly DescriptionLines lines.
	Description []string
	// Exits lists exits in the order they appear in the exit string.
	Exits []Exit
}

// ExitFor returns the first exit in the given direction, if one exists.
//
// Postcondition: Returns (exit, true) if found, or (Exit{}, false) otherwise.
func (r *Room) ExitFor(dir Direction) (Exit, bool) {
	for _, e := range r.Exits {
		if e.Direction == dir {
			return e, true
		}
	}
	return Exit{}, false
}

// TileExit returns the exit a tile triggers. Only 'U' and 'D' tiles trigger
// exits, and only when the room has a matching Up or Down exit.
func (r *Room) TileExit(t Tile) (Exit, bool) {
	switch t.Code {
	case 'U':
		return r.ExitFor(Up)
	case 'D':
		return r.ExitFor(Down)
	default:
		return Exit{}, false
	}
}

// Validate checks the structural invariants of a decoded room.
//
// Postcondition: Returns nil if all tiles are inside the grid and the
// description has exactly DescriptionLines lines.
func (r *Room) Validate() error {
	if len(r.Description) != DescriptionLines {
		return fmt.Errorf("room has %d description lines, want %d", len(r.Description), DescriptionLines)
	}
	for _, t := range r.Tiles {
		if t.X < 0 || t.X >= Width || t.Y < 0 || t.Y >= Height {
			return fmt.Errorf("tile at (%d,%d) outside %dx%d grid", t.X, t.Y, Width, Height)
		}
	}
	return nil
}
