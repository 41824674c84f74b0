package world

import (
	"fmt"
	"os"
)

// Table is the dense, index-addressed set of static rooms. It is built once at
// startup; only Override may replace records, and only before play begins.
type Table struct {
	rooms []*Room
}

// NewTable wraps rooms in a Table.
func NewTable(rooms []*Room) *Table {
	return &Table{rooms: rooms}
}

// LoadFile decodes the map file at path. A count of 0 derives the room count
// from the file size.
//
// Postcondition: Returns the Table or an error; a missing file is an error.
func LoadFile(path string, count int) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening map %q: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat map %q: %w", path, err)
	}
	t, err := DecodeMap(f, info.Size(), count)
	if err != nil {
		return nil, fmt.Errorf("decoding map %q: %w", path, err)
	}
	return t, nil
}

// Len returns the number of rooms.
func (t *Table) Len() int {
	return len(t.rooms)
}

// Valid reports whether i addresses a room.
func (t *Table) Valid(i int) bool {
	return i >= 0 && i < len(t.rooms)
}

// Room returns room i.
//
// Precondition: 0 <= i < Len(). An out-of-range index is a programming error and panics.
func (t *Table) Room(i int) *Room {
	if !t.Valid(i) {
		panic(fmt.Sprintf("world: room index %d out of range [0,%d)", i, len(t.rooms)))
	}
	return t.rooms[i]
}

// Override replaces room i.
//
// Precondition: 0 <= i < Len() and room is non-nil.
func (t *Table) Override(i int, room *Room) {
	if !t.Valid(i) {
		panic(fmt.Sprintf("world: override index %d out of range [0,%d)", i, len(t.rooms)))
	}
	t.rooms[i] = room
}
