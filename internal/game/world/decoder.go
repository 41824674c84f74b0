package world

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"unicode/utf8"
)

// ErrTruncated is returned when the map data ends before a full record.
var ErrTruncated = errors.New("truncated room record")

// ErrInvalidDescription is returned when description bytes are not valid UTF-8.
var ErrInvalidDescription = errors.New("invalid room description text")

// blankCode marks an empty grid cell; such cells produce no tile.
const blankCode = 32

var exitPattern = regexp.MustCompile(`([A-Z])(\d+)`)

var glyphs = map[byte]rune{
	178: '▓',
	205: '═',
	219: '█',
	218: '┌',
	196: '─',
	191: '┐',
	192: '└',
	217: '┘',
	177: '▒',
	176: '░',
	179: '│',
	226: 'Γ',
	224: 'α',
	195: '├',
	107: 'k',
	98:  'b',
	247: '≈',
}

// Glyph maps a raw tile code to its display rune.
//
// Postcondition: Codes missing from the glyph table map to the rune with the same value.
func Glyph(code byte) rune {
	if g, ok := glyphs[code]; ok {
		return g
	}
	return rune(code)
}

// Collidable reports whether a tile code blocks movement. Codes 0, 'U' and 'D'
// are walkable; everything else blocks.
func Collidable(code byte) bool {
	switch code {
	case 0, 'U', 'D':
		return false
	default:
		return true
	}
}

// DecodeRoom decodes one room record.
//
// Precondition: rec must hold at least RecordSize bytes.
// Postcondition: Returns the decoded room, or an error wrapping ErrTruncated
// or ErrInvalidDescription.
func DecodeRoom(rec []byte) (*Room, error) {
	if len(rec) < RecordSize {
		return nil, fmt.Errorf("record of %d bytes, want %d: %w", len(rec), RecordSize, ErrTruncated)
	}
	tiles := rec[:Width*Height]
	desc := rec[Width*Height : Width*Height+DescriptionLines*DescriptionWidth]
	exits := rec[Width*Height+DescriptionLines*DescriptionWidth : RecordSize]

	room := &Room{
		Tiles:       DecodeTiles(tiles),
		Description: make([]string, 0, DescriptionLines),
	}
	for i := 0; i < DescriptionLines; i++ {
		line := desc[i*DescriptionWidth : (i+1)*DescriptionWidth]
		if !utf8.Valid(line) {
			return nil, fmt.Errorf("description line %d: %w", i, ErrInvalidDescription)
		}
		room.Description = append(room.Description, string(line))
	}
	room.Exits = ParseExits(exits)
	return room, nil
}

// DecodeTiles converts a row-major grid of tile codes into tiles, skipping blanks.
//
// Precondition: len(codes) must not exceed Width*Height.
func DecodeTiles(codes []byte) []Tile {
	tiles := make([]Tile, 0, len(codes))
	for i, code := range codes {
		if code == blankCode {
			continue
		}
		tiles = append(tiles, Tile{
			Code:       code,
			Glyph:      Glyph(code),
			Collidable: Collidable(code),
			X:          i % Width,
			Y:          i / Width,
		})
	}
	return tiles
}

// ParseExits extracts exits from an exit string such as "N12E45". Room numbers
// in the string are 1-indexed and returned 0-indexed.
//
// Postcondition: Exits appear in string order; unknown letters yield Invalid.
func ParseExits(b []byte) []Exit {
	matches := exitPattern.FindAllSubmatch(b, -1)
	exits := make([]Exit, 0, len(matches))
	for _, m := range matches {
		n, err := strconv.Atoi(string(m[2]))
		if err != nil {
			// digit runs too long for int; nothing sensible to point at
			continue
		}
		exits = append(exits, Exit{
			Direction: DirectionFromLetter(m[1][0]),
			To:        n - 1,
		})
	}
	return exits
}

// ReadRoomAt decodes room i from r by random access at offset RecordSize*i.
//
// Precondition: i >= 0.
// Postcondition: Returns the decoded room or an error wrapping ErrTruncated
// when fewer than RecordSize bytes are available.
func ReadRoomAt(r io.ReaderAt, i int) (*Room, error) {
	buf := make([]byte, RecordSize)
	n, err := r.ReadAt(buf, int64(i)*RecordSize)
	if n < RecordSize {
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("reading room %d: %w", i, err)
		}
		return nil, fmt.Errorf("reading room %d: %w", i, ErrTruncated)
	}
	room, err := DecodeRoom(buf)
	if err != nil {
		return nil, fmt.Errorf("decoding room %d: %w", i, err)
	}
	return room, nil
}

// RoomCount derives the number of records from a map file size.
//
// Postcondition: Returns an error wrapping ErrTruncated if size is not a
// positive multiple of RecordSize.
func RoomCount(size int64) (int, error) {
	if size <= 0 || size%RecordSize != 0 {
		return 0, fmt.Errorf("map size %d is not a multiple of %d: %w", size, RecordSize, ErrTruncated)
	}
	return int(size / RecordSize), nil
}

// DecodeMap decodes count rooms from r. A count of 0 derives the count from size.
//
// Precondition: size is the total byte length readable from r.
// Postcondition: Returns a Table with exactly count rooms, or an error.
func DecodeMap(r io.ReaderAt, size int64, count int) (*Table, error) {
	if count <= 0 {
		n, err := RoomCount(size)
		if err != nil {
			return nil, err
		}
		count = n
	}
	if int64(count)*RecordSize > size {
		return nil, fmt.Errorf("map holds %d bytes, %d rooms need %d: %w", size, count, int64(count)*RecordSize, ErrTruncated)
	}
	rooms := make([]*Room, 0, count)
	for i := 0; i < count; i++ {
		room, err := ReadRoomAt(r, i)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return NewTable(rooms), nil
}
