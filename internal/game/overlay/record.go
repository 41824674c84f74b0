// Package overlay stores the mutable per-room state that outlives the
// room's entities: items on the floor, description overrides, live
// enemies, and optional geometry overrides.
package overlay

import (
	"bytes"
	"fmt"

	"github.com/cory-johannsen/castle/internal/game/world"
)

// Item is a pickup lying in a room.
type Item struct {
	Item string `yaml:"item"`
	X    int    `yaml:"x"`
	Y    int    `yaml:"y"`
}

// Description is a lookable keyword with no position.
type Description struct {
	Keyword string `yaml:"keyword"`
	Text    string `yaml:"text"`
}

// Enemy is a living enemy. Health is nil when the enemy is at full health
// from the catalog.
type Enemy struct {
	Name   string `yaml:"name"`
	X      int    `yaml:"x"`
	Y      int    `yaml:"y"`
	Health *int   `yaml:"health,omitempty"`
}

// Geometry replaces a room's static record. Tiles holds up to world.Height
// rows of up to world.Width raw tile codes; missing cells are blank.
type Geometry struct {
	Tiles       [][]int  `yaml:"tiles,flow"`
	Description []string `yaml:"description"`
	Exits       string   `yaml:"exits"`
}

// Record is the overlay of one room.
type Record struct {
	Room         int           `yaml:"room"`
	Items        []Item        `yaml:"items,omitempty"`
	Descriptions []Description `yaml:"descriptions,omitempty"`
	Enemies      []Enemy       `yaml:"enemies,omitempty"`
	Geometry     *Geometry     `yaml:"geometry,omitempty"`
}

// Empty reports whether the record carries no state.
func (r Record) Empty() bool {
	return len(r.Items) == 0 && len(r.Descriptions) == 0 && len(r.Enemies) == 0 && r.Geometry == nil
}

// Encode renders the geometry as a raw map record.
//
// Postcondition: Returns exactly world.RecordSize bytes, or an error if a
// dimension or code is out of range.
func (g *Geometry) Encode() ([]byte, error) {
	if len(g.Tiles) > world.Height {
		return nil, fmt.Errorf("geometry has %d rows, max %d", len(g.Tiles), world.Height)
	}
	if len(g.Description) > world.DescriptionLines {
		return nil, fmt.Errorf("geometry has %d description lines, max %d", len(g.Description), world.DescriptionLines)
	}
	if len(g.Exits) > world.ExitBytes {
		return nil, fmt.Errorf("geometry exit string %q longer than %d bytes", g.Exits, world.ExitBytes)
	}
	rec := bytes.Repeat([]byte{' '}, world.RecordSize)
	for y, row := range g.Tiles {
		if len(row) > world.Width {
			return nil, fmt.Errorf("geometry row %d has %d cells, max %d", y, len(row), world.Width)
		}
		for x, code := range row {
			if code < 0 || code > 255 {
				return nil, fmt.Errorf("geometry tile (%d,%d) code %d out of byte range", x, y, code)
			}
			rec[y*world.Width+x] = byte(code)
		}
	}
	base := world.Width * world.Height
	for i, line := range g.Description {
		if len(line) > world.DescriptionWidth {
			return nil, fmt.Errorf("geometry description line %d longer than %d bytes", i, world.DescriptionWidth)
		}
		copy(rec[base+i*world.DescriptionWidth:], line)
	}
	copy(rec[base+world.DescriptionLines*world.DescriptionWidth:], g.Exits)
	return rec, nil
}

// Decode parses the geometry with the map decoder.
func (g *Geometry) Decode() (*world.Room, error) {
	rec, err := g.Encode()
	if err != nil {
		return nil, err
	}
	return world.DecodeRoom(rec)
}
