package importer

import (
	"bytes"
	"fmt"
	"os"

	"github.com/cory-johannsen/castle/internal/game/overlay"
	"github.com/cory-johannsen/castle/internal/game/world"
)

// MapSource reads the binary room map.
type MapSource struct {
	// Count is the number of records to read. 0 derives it from the file size.
	Count int
}

// NewMapSource creates a MapSource reading count rooms.
func NewMapSource(count int) *MapSource {
	return &MapSource{Count: count}
}

// Load returns one record per room, each carrying a geometry override.
//
// Postcondition: Record i describes room i; errors wrap world.ErrTruncated
// for short or misaligned files.
func (s *MapSource) Load(path string) ([]overlay.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading map %q: %w", path, err)
	}
	count := s.Count
	if count <= 0 {
		if count, err = world.RoomCount(int64(len(data))); err != nil {
			return nil, err
		}
	}
	if count*world.RecordSize > len(data) {
		return nil, fmt.Errorf("map holds %d bytes, %d rooms need %d: %w", len(data), count, count*world.RecordSize, world.ErrTruncated)
	}

	recs := make([]overlay.Record, 0, count)
	for i := 0; i < count; i++ {
		raw := data[i*world.RecordSize : (i+1)*world.RecordSize]
		recs = append(recs, overlay.Record{Room: i, Geometry: Geometry(raw)})
	}
	return recs, nil
}

// Geometry lifts one raw record into an editable geometry. Trailing blank
// cells and rows, and trailing padding in text, are dropped.
//
// Precondition: len(raw) >= world.RecordSize.
func Geometry(raw []byte) *overlay.Geometry {
	g := &overlay.Geometry{}

	rows := make([][]int, world.Height)
	last := -1
	for y := 0; y < world.Height; y++ {
		row := bytes.TrimRight(raw[y*world.Width:(y+1)*world.Width], " ")
		cells := make([]int, len(row))
		for x, c := range row {
			cells[x] = int(c)
		}
		rows[y] = cells
		if len(cells) > 0 {
			last = y
		}
	}
	g.Tiles = rows[:last+1]

	base := world.Width * world.Height
	for i := 0; i < world.DescriptionLines; i++ {
		line := raw[base+i*world.DescriptionWidth : base+(i+1)*world.DescriptionWidth]
		g.Description = append(g.Description, string(bytes.TrimRight(line, " \x00")))
	}

	exits := raw[base+world.DescriptionLines*world.DescriptionWidth : world.RecordSize]
	g.Exits = string(bytes.TrimRight(exits, " \x00"))
	return g
}
