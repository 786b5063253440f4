package db

import (
	"context"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"

	"fieldexplorer/internal/storage"
	"fieldexplorer/migrations"
)

// DB wraps a pgxpool connection pool.
type DB struct {
	Pool  *pgxpool.Pool
	guard *storage.Guard
}

// New creates a new database connection pool.
func New(ctx context.Context, connString string) (*DB, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", classify("ping", err))
	}

	return &DB{Pool: pool}, nil
}

// UseGuard routes every query through g.
func (d *DB) UseGuard(g *storage.Guard) {
	d.guard = g
}

// RunMigrations runs all embedded SQL migrations.
func (d *DB) RunMigrations(connString string) error {
	sourceDriver, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", sourceDriver, connString)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migration failed: %w", err)
	}

	return nil
}

// Ping checks that the database is reachable.
func (d *DB) Ping(ctx context.Context) error {
	_, err := run(ctx, d, "ping", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, d.Pool.Ping(ctx)
	})
	return err
}

// Close closes the connection pool.
func (d *DB) Close() {
	d.Pool.Close()
}

// run executes fn under the configured guard and classifies its error.
func run[T any](ctx context.Context, d *DB, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	return storage.Run(ctx, d.guard, op, func(ctx context.Context) (T, error) {
		v, err := fn(ctx)
		return v, classify(op, err)
	})
}
