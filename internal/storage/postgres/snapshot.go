package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/castle/internal/game/save"
)

// SnapshotRepository persists session snapshots.
type SnapshotRepository struct {
	db *pgxpool.Pool
}

var _ save.Getter = (*SnapshotRepository)(nil)

// NewSnapshotRepository creates a SnapshotRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewSnapshotRepository(db *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Save inserts snap.
//
// Postcondition: Returns an error if a snapshot with the same id exists.
func (r *SnapshotRepository) Save(ctx context.Context, snap save.Snapshot) error {
	body, err := save.Marshal(snap)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO snapshots (id, saved_at, room, body) VALUES ($1, $2, $3, $4)`,
		snap.ID.String(), snap.SavedAt.UTC(), snap.Room, string(body),
	)
	if err != nil {
		return fmt.Errorf("inserting snapshot %s: %w", snap.ID, err)
	}
	return nil
}

// Load returns the most recently saved snapshot.
//
// Postcondition: Returns save.ErrNoSnapshot when none exist.
func (r *SnapshotRepository) Load(ctx context.Context) (save.Snapshot, error) {
	var body string
	err := r.db.QueryRow(ctx,
		`SELECT body FROM snapshots ORDER BY saved_at DESC LIMIT 1`,
	).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return save.Snapshot{}, save.ErrNoSnapshot
	}
	if err != nil {
		return save.Snapshot{}, fmt.Errorf("querying latest snapshot: %w", err)
	}
	return save.Unmarshal([]byte(body))
}

// Get returns the snapshot with the given id.
//
// Postcondition: Returns save.ErrNoSnapshot when no snapshot has that id.
func (r *SnapshotRepository) Get(ctx context.Context, id uuid.UUID) (save.Snapshot, error) {
	var body string
	err := r.db.QueryRow(ctx, `SELECT body FROM snapshots WHERE id = $1`, id.String()).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return save.Snapshot{}, save.ErrNoSnapshot
	}
	if err != nil {
		return save.Snapshot{}, fmt.Errorf("querying snapshot %s: %w", id, err)
	}
	return save.Unmarshal([]byte(body))
}
