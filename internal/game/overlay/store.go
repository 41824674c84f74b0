package overlay

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/castle/internal/game/ecs"
	"github.com/cory-johannsen/castle/internal/game/world"
)

// Spawner creates room entities from overlay data. The overlay store knows
// only data; entity construction belongs to the spawner.
type Spawner interface {
	SpawnItem(room int, item string, x, y int) (ecs.Entity, error)
	SpawnDescription(room int, keyword, text string) (ecs.Entity, error)
	SpawnEnemy(room int, name string, x, y int, health *int) (ecs.Entity, error)
}

// Store is the dense, index-addressed table of room overlays.
type Store struct {
	records []Record
}

// NewStore returns a store with an empty record for each of roomCount rooms.
func NewStore(roomCount int) *Store {
	s := &Store{records: make([]Record, roomCount)}
	for i := range s.records {
		s.records[i].Room = i
	}
	return s
}

// Len returns the number of rooms.
func (s *Store) Len() int {
	return len(s.records)
}

// Get returns a copy of the record for room.
//
// Precondition: 0 <= room < Len(); out-of-range indices panic.
func (s *Store) Get(room int) Record {
	s.check(room)
	return clone(s.records[room])
}

// Set replaces the record for r.Room.
//
// Precondition: 0 <= r.Room < Len(); out-of-range indices panic.
func (s *Store) Set(r Record) {
	s.check(r.Room)
	s.records[r.Room] = clone(r)
}

func (s *Store) check(room int) {
	if room < 0 || room >= len(s.records) {
		panic(fmt.Sprintf("overlay: room index %d out of range [0,%d)", room, len(s.records)))
	}
}

// Capture rewrites the record of room from the entities it currently owns:
// pickups, position-less descriptions, and living enemies. The geometry
// override is carried over unchanged.
//
// Postcondition: The stored record is in canonical order, so capturing an
// unchanged room twice yields equal records.
func (s *Store) Capture(w *ecs.World, room int) Record {
	s.check(room)
	rec := Record{Room: room, Geometry: s.records[room].Geometry}
	for _, e := range w.InRoom(room) {
		switch {
		case w.Pickups.Has(e):
			pos, ok := w.Positions.Get(e)
			if !ok {
				continue
			}
			trig, _ := w.Pickups.Get(e)
			rec.Items = append(rec.Items, Item{Item: trig.Item, X: pos.X, Y: pos.Y})
		case w.Enemies.Has(e):
			if w.Dead.Has(e) {
				continue
			}
			pos, ok := w.Positions.Get(e)
			if !ok {
				continue
			}
			en, _ := w.Enemies.Get(e)
			rec.Enemies = append(rec.Enemies, Enemy{Name: en.Template, X: pos.X, Y: pos.Y, Health: health(w, e)})
		case w.Descriptions.Has(e) && !w.Positions.Has(e) && !w.Players.Has(e):
			d, _ := w.Descriptions.Get(e)
			rec.Descriptions = append(rec.Descriptions, Description{Keyword: d.Key, Text: d.Text})
		}
	}
	canonicalize(&rec)
	s.records[room] = rec
	return clone(rec)
}

func health(w *ecs.World, e ecs.Entity) *int {
	stats, ok := w.CombatStats.Get(e)
	if !ok || stats.Health == stats.MaxHealth {
		return nil
	}
	h := stats.Health
	return &h
}

func canonicalize(r *Record) {
	sort.SliceStable(r.Items, func(i, j int) bool {
		a, b := r.Items[i], r.Items[j]
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		if a.X != b.X {
			return a.X < b.X
		}
		return a.Item < b.Item
	})
	sort.SliceStable(r.Enemies, func(i, j int) bool {
		a, b := r.Enemies[i], r.Enemies[j]
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		if a.X != b.X {
			return a.X < b.X
		}
		return a.Name < b.Name
	})
	sort.SliceStable(r.Descriptions, func(i, j int) bool {
		a, b := r.Descriptions[i], r.Descriptions[j]
		if a.Keyword != b.Keyword {
			return a.Keyword < b.Keyword
		}
		return a.Text < b.Text
	})
}

// Apply replays the record of room through sp. A failing spawn does not stop
// the rest of the replay.
//
// Postcondition: Returns the joined spawn errors, or nil.
func (s *Store) Apply(room int, sp Spawner) error {
	s.check(room)
	rec := s.records[room]
	var errs []error
	for _, it := range rec.Items {
		if _, err := sp.SpawnItem(room, it.Item, it.X, it.Y); err != nil {
			errs = append(errs, fmt.Errorf("room %d item %q: %w", room, it.Item, err))
		}
	}
	for _, d := range rec.Descriptions {
		if _, err := sp.SpawnDescription(room, d.Keyword, d.Text); err != nil {
			errs = append(errs, fmt.Errorf("room %d description %q: %w", room, d.Keyword, err))
		}
	}
	for _, en := range rec.Enemies {
		if _, err := sp.SpawnEnemy(room, en.Name, en.X, en.Y, en.Health); err != nil {
			errs = append(errs, fmt.Errorf("room %d enemy %q: %w", room, en.Name, err))
		}
	}
	return errors.Join(errs...)
}

// ApplyGeometry decodes every geometry override and replaces the matching
// static room in t.
//
// Precondition: t.Len() == Len().
func (s *Store) ApplyGeometry(t *world.Table) error {
	if t.Len() != len(s.records) {
		return fmt.Errorf("overlay covers %d rooms, map has %d", len(s.records), t.Len())
	}
	for _, r := range s.records {
		if r.Geometry == nil {
			continue
		}
		room, err := r.Geometry.Decode()
		if err != nil {
			return fmt.Errorf("room %d geometry: %w", r.Room, err)
		}
		t.Override(r.Room, room)
	}
	return nil
}

// Validate checks every item and enemy name with the given predicates.
//
// Postcondition: Returns an error listing every unknown name, or nil.
func (s *Store) Validate(knownItem, knownEnemy func(string) bool) error {
	var errs []error
	for _, r := range s.records {
		for _, it := range r.Items {
			if !knownItem(it.Item) {
				errs = append(errs, fmt.Errorf("room %d: unknown item %q", r.Room, it.Item))
			}
		}
		for _, en := range r.Enemies {
			if !knownEnemy(en.Name) {
				errs = append(errs, fmt.Errorf("room %d: unknown enemy %q", r.Room, en.Name))
			}
		}
	}
	return errors.Join(errs...)
}

// Records returns copies of every non-empty record in room order.
func (s *Store) Records() []Record {
	var out []Record
	for _, r := range s.records {
		if !r.Empty() {
			out = append(out, clone(r))
		}
	}
	return out
}

// Restore resets every room to empty and then installs recs.
//
// Postcondition: Returns an error, leaving the store unchanged, if any
// record addresses a room outside [0,Len()) or appears twice.
func (s *Store) Restore(recs []Record) error {
	fresh := make([]Record, len(s.records))
	for i := range fresh {
		fresh[i].Room = i
	}
	seen := make(map[int]bool, len(recs))
	for _, r := range recs {
		if r.Room < 0 || r.Room >= len(fresh) {
			return fmt.Errorf("overlay record for room %d outside [0,%d)", r.Room, len(fresh))
		}
		if seen[r.Room] {
			return fmt.Errorf("duplicate overlay record for room %d", r.Room)
		}
		seen[r.Room] = true
		fresh[r.Room] = clone(r)
	}
	s.records = fresh
	return nil
}

// LoadFile reads a YAML list of room records and builds a store for
// roomCount rooms.
//
// Postcondition: A missing file, a malformed file, or an out-of-range or
// duplicated room index is an error.
func LoadFile(path string, roomCount int) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading overlay %q: %w", path, err)
	}
	var recs []Record
	if err := yaml.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("parsing overlay %q: %w", path, err)
	}
	s := NewStore(roomCount)
	if err := s.Restore(recs); err != nil {
		return nil, fmt.Errorf("overlay %q: %w", path, err)
	}
	return s, nil
}

// WriteFile writes every non-empty record to path as YAML.
func (s *Store) WriteFile(path string) error {
	recs := s.Records()
	if recs == nil {
		recs = []Record{}
	}
	data, err := yaml.Marshal(recs)
	if err != nil {
		return fmt.Errorf("encoding overlay: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing overlay %q: %w", path, err)
	}
	return nil
}

func clone(r Record) Record {
	out := Record{Room: r.Room}
	if r.Items != nil {
		out.Items = append([]Item(nil), r.Items...)
	}
	if r.Descriptions != nil {
		out.Descriptions = append([]Description(nil), r.Descriptions...)
	}
	if r.Enemies != nil {
		out.Enemies = make([]Enemy, len(r.Enemies))
		for i, en := range r.Enemies {
			out.Enemies[i] = en
			if en.Health != nil {
				h := *en.Health
				out.Enemies[i].Health = &h
			}
		}
	}
	if r.Geometry != nil {
		g := *r.Geometry
		if r.Geometry.Tiles != nil {
			g.Tiles = make([][]int, len(r.Geometry.Tiles))
			for i, row := range r.Geometry.Tiles {
				g.Tiles[i] = append([]int(nil), row...)
			}
		}
		g.Description = append([]string(nil), r.Geometry.Description...)
		out.Geometry = &g
	}
	return out
}
