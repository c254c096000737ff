// Package postgres is the persistent Checkpointer backend, usable as a
// drop-in replacement for pkg/checkpoint/memory. It stores each
// (thread_id, checkpoint_ns) snapshot as a JSONB row and runs its
// migration on Open via pgx and golang-migrate.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/ospreyai/osprey/pkg/state"
)

//go:embed migrations
var migrationsFS embed.FS

// RowScanner is the part of *sql.Row the Store needs.
type RowScanner interface {
	Scan(dest...any) error
}

// querier is the subset of *sql.DB the Store needs. Narrowing to an
// interface lets tests substitute a hand-rolled fake instead of a live
// Postgres instance.
type querier interface {
	ExecContext(ctx context.Context, query string, args...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args...any) RowScanner
}

// sqlDB adapts *sql.DB to querier: *sql.DB.QueryRowContext returns the
// concrete *sql.Row, which satisfies RowScanner but not querier's exact
// method signature, so it needs this one-method wrapper.
type sqlDB struct {
	*sql.DB
}

func (d sqlDB) QueryRowContext(ctx context.Context, query string, args...any) RowScanner {
	return d.DB.QueryRowContext(ctx, query, args...)
}

// Store persists checkpoints in a Postgres `checkpoints` table.
type Store struct {
	db querier
}

// Config holds the connection settings for the single checkpoint table
// this package needs.
type Config struct {
	Host string
	Port int
	User string
	Password string
	Database string
	SSLMode string
}

func (c Config) dsn() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
 c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,)
}

// Open connects to Postgres, applies the embedded migration, and returns
// a ready Store. The *sql.DB is not exposed; callers that need it for
// health checks should keep their own handle from a parallel dial.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	db, err := sql.Open("pgx", cfg.dsn())
	if err != nil {
 return nil, fmt.Errorf("checkpoint/postgres: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
 _ = db.Close()
 return nil, fmt.Errorf("checkpoint/postgres: ping: %w", err)
	}
	if err := runMigrations(db, cfg.Database); err != nil {
 _ = db.Close()
 return nil, fmt.Errorf("checkpoint/postgres: migrate: %w", err)
	}
	return &Store{db: sqlDB{db}}, nil
}

// NewWithQuerier wraps an already-migrated connection (or a test fake).
// Used by tests and by callers that manage their own *sql.DB lifecycle.
func NewWithQuerier(db querier) *Store {
	return &Store{db: db}
}

func runMigrations(db *sql.DB, database string) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
 return fmt.Errorf("postgres driver: %w", err)
	}
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
 return fmt.Errorf("migration source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, database, driver)
	if err != nil {
 return fmt.Errorf("migrate instance: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
 return fmt.Errorf("apply migrations: %w", err)
	}
	return source.Close()
}

// Save upserts the snapshot for (threadID, checkpointNS). The INSERT...
// ON CONFLICT is atomic, so a failed Save cannot leave a partially
// written row.
func (s *Store) Save(ctx context.Context, threadID, checkpointNS string, snapshot state.State) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
 return fmt.Errorf("checkpoint/postgres: marshal snapshot: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
 INSERT INTO checkpoints (thread_id, checkpoint_ns, snapshot, updated_at)
 VALUES ($1, $2, $3, now())
 ON CONFLICT (thread_id, checkpoint_ns)
 DO UPDATE SET snapshot = EXCLUDED.snapshot, updated_at = now()
	`, threadID, checkpointNS, payload)
	if err != nil {
 return fmt.Errorf("checkpoint/postgres: save: %w", err)
	}
	return nil
}

// Load returns the stored snapshot, or ok=false if none exists.
func (s *Store) Load(ctx context.Context, threadID, checkpointNS string) (state.State, bool, error) {
	var payload []byte
	row := s.db.QueryRowContext(ctx, `
 SELECT snapshot FROM checkpoints WHERE thread_id = $1 AND checkpoint_ns = $2
	`, threadID, checkpointNS)
	if err := row.Scan(&payload); err != nil {
 if errors.Is(err, sql.ErrNoRows) {
 return state.State{}, false, nil
 }
 return state.State{}, false, fmt.Errorf("checkpoint/postgres: load: %w", err)
	}

	var snapshot state.State
	if err := json.Unmarshal(payload, &snapshot); err != nil {
 return state.State{}, false, fmt.Errorf("checkpoint/postgres: unmarshal snapshot: %w", err)
	}
	return snapshot, true, nil
}

// Delete discards every checkpoint namespace for threadID.
func (s *Store) Delete(ctx context.Context, threadID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM checkpoints WHERE thread_id = $1`, threadID)
	if err != nil {
 return fmt.Errorf("checkpoint/postgres: delete: %w", err)
	}
	return nil
}

// Sweep implements checkpoint.Sweeper, deleting every checkpoint last
// saved before olderThan.
func (s *Store) Sweep(ctx context.Context, olderThan time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM checkpoints WHERE updated_at < $1`, olderThan)
	if err != nil {
 return 0, fmt.Errorf("checkpoint/postgres: sweep: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
 return 0, fmt.Errorf("checkpoint/postgres: sweep rows affected: %w", err)
	}
	return int(n), nil
}
