// Package file stores session snapshots as a single YAML file.
package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cory-johannsen/castle/internal/game/save"
)

// Store keeps the most recent snapshot at one path.
type Store struct {
	path string
}

// New returns a Store writing to path.
//
// Precondition: path must be non-empty.
func New(path string) *Store {
	return &Store{path: path}
}

// Save replaces the stored snapshot. The file is written to a sibling temp
// file and renamed into place.
func (s *Store) Save(ctx context.Context, snap save.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := save.Marshal(snap)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp save file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing save %q: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing save %q: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing save %q: %w", s.path, err)
	}
	return nil
}

// Load reads the stored snapshot.
//
// Postcondition: Returns save.ErrNoSnapshot if the file does not exist.
func (s *Store) Load(ctx context.Context) (save.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return save.Snapshot{}, err
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return save.Snapshot{}, save.ErrNoSnapshot
	}
	if err != nil {
		return save.Snapshot{}, fmt.Errorf("reading save %q: %w", s.path, err)
	}
	snap, err := save.Unmarshal(data)
	if err != nil {
		return save.Snapshot{}, fmt.Errorf("save %q: %w", s.path, err)
	}
	return snap, nil
}
