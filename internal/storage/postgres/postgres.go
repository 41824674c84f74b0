// Package postgres stores session snapshots in PostgreSQL using pgx v5.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/castle/internal/config"
)

// ErrSchemaMissing is returned when the save tables have not been migrated.
var ErrSchemaMissing = errors.New("save schema not migrated; run cmd/migrate")

// requiredTables are created by migrations/ and read by SnapshotRepository.
var requiredTables = []string{"snapshots"}

// Pool is the snapshot store's connection pool.
type Pool struct {
	pool *pgxpool.Pool
}

// Connect opens a pool sized from cfg and pings the server. It does not
// check the schema, so it can be used before migrations run.
//
// Precondition: cfg must contain valid database connection parameters.
// Postcondition: Returns a reachable Pool or a non-nil error.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &Pool{pool: pool}, nil
}

// Open connects and verifies that the save schema exists.
//
// Postcondition: Returns a Pool ready for snapshot queries, or an error
// wrapping ErrSchemaMissing when migrations have not been applied.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*Pool, error) {
	p, err := Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := p.CheckSchema(ctx); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

// CheckSchema reports whether every table the snapshot store reads exists
// in the current schema.
func (p *Pool) CheckSchema(ctx context.Context) error {
	for _, table := range requiredTables {
		var exists bool
		err := p.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = $1)`,
			table,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("checking table %q: %w", table, err)
		}
		if !exists {
			return fmt.Errorf("table %q: %w", table, ErrSchemaMissing)
		}
	}
	return nil
}

// Health pings the server and checks the schema within timeout.
//
// Precondition: The pool must not be closed.
func (p *Pool) Health(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := p.pool.Ping(ctx); err != nil {
		return fmt.Errorf("pinging database: %w", err)
	}
	return p.CheckSchema(ctx)
}

// Snapshots returns the snapshot repository backed by this pool.
func (p *Pool) Snapshots() *SnapshotRepository {
	return NewSnapshotRepository(p.pool)
}

// Close releases all pool resources.
func (p *Pool) Close() {
	p.pool.Close()
}

// DB returns the underlying pgxpool.Pool.
func (p *Pool) DB() *pgxpool.Pool {
	return p.pool
}
