package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// DB wraps a pgx connection pool.
type DB struct {
	pool *pgxpool.Pool
}

// New connects to PostgreSQL and returns a DB handle.
func New(ctx context.Context, dsn string) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &DB{pool: pool}, nil
}

// Close closes the database connection pool.
func (d *DB) Close() {
	d.pool.Close()
}

// Pool returns the underlying pgx pool.
func (d *DB) Pool() *pgxpool.Pool {
	return d.pool
}

// Routes returns a route repository on this pool.
func (d *DB) Routes() *RouteRepository { return NewRouteRepository(d.pool) }

// Templates returns a template repository on this pool.
func (d *DB) Templates() *TemplateRepository { return NewTemplateRepository(d.pool) }

// Areas returns an observation area repository on this pool.
func (d *DB) Areas() *AreaRepository { return NewAreaRepository(d.pool) }

// Spawns returns a spawn repository on this pool.
func (d *DB) Spawns() *SpawnRepository { return NewSpawnRepository(d.pool) }
