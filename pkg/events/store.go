// Package events' Postgres Store persists turn-progress events and relays
// them through NOTIFY, so a late-subscribing client can catch up on events
// it missed and multiple Osprey instances sharing one Postgres checkpointer
// stay in sync.
package events

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
)

//go:embed migrations
var migrationsFS embed.FS

// maxNotifyBytes stays under PostgreSQL's 8000-byte NOTIFY payload limit,
// leaving a safety margin for the envelope PostgreSQL itself adds.
const maxNotifyBytes = 7900

// Row is the part of *sql.Row the Store needs.
type Row interface {
	Scan(dest ...any) error
}

// Rows is the part of *sql.Rows the Store needs for catchup queries.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// querier is the subset of *sql.DB the Store needs, narrowed to an
// interface so tests can substitute a fake instead of a live Postgres
// instance.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) Row
	QueryContext(ctx context.Context, query string, args ...any) (Rows, error)
}

// sqlDB adapts *sql.DB to querier: QueryRowContext/QueryContext return the
// concrete *sql.Row/*sql.Rows types, which satisfy Row/Rows but not
// querier's exact method signatures, so they need one-method wrappers.
type sqlDB struct {
	*sql.DB
}

func (d sqlDB) QueryRowContext(ctx context.Context, query string, args ...any) Row {
	return d.DB.QueryRowContext(ctx, query, args...)
}

func (d sqlDB) QueryContext(ctx context.Context, query string, args ...any) (Rows, error) {
	return d.DB.QueryContext(ctx, query, args...)
}

// Store persists events to a Postgres `events` table and relays them via
// pg_notify. It implements both Publisher and CatchupQuerier.
type Store struct {
	db querier
}

// Config mirrors checkpoint/postgres.Config, since both stores share one
// Postgres instance in practice.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// DSN formats the Postgres connection string, exported so callers wiring
// NewNotifyListener (which dials its own dedicated connection) can reuse it.
func (c Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// Open connects to Postgres, applies the embedded migration, and returns a
// ready Store.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	db, err := sql.Open("pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("events: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("events: ping: %w", err)
	}
	if err := runMigrations(db, cfg.Database); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("events: migrate: %w", err)
	}
	return &Store{db: sqlDB{db}}, nil
}

// NewWithQuerier wraps an already-migrated connection (or a test fake).
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

func (s *Store) PublishNodeStarted(ctx context.Context, threadID string, payload NodeStartedPayload) error {
	return s.publish(ctx, threadID, payload)
}

func (s *Store) PublishNodeCompleted(ctx context.Context, threadID string, payload NodeCompletedPayload) error {
	return s.publish(ctx, threadID, payload)
}

func (s *Store) PublishCapabilityInvoked(ctx context.Context, threadID string, payload CapabilityInvokedPayload) error {
	return s.publish(ctx, threadID, payload)
}

func (s *Store) PublishCapabilityCompleted(ctx context.Context, threadID string, payload CapabilityCompletedPayload) error {
	return s.publish(ctx, threadID, payload)
}

func (s *Store) PublishApprovalRequested(ctx context.Context, threadID string, payload ApprovalRequestedPayload) error {
	return s.publish(ctx, threadID, payload)
}

func (s *Store) PublishTurnCompleted(ctx context.Context, threadID string, payload TurnCompletedPayload) error {
	return s.publish(ctx, threadID, payload)
}

func (s *Store) PublishTurnError(ctx context.Context, threadID string, payload TurnErrorPayload) error {
	return s.publish(ctx, threadID, payload)
}

// publish persists the event to the events table, then relays it via
// pg_notify stamped with the row's id for catchup tracking. The two steps
// are not wrapped in an explicit transaction: a NOTIFY that fires for a row
// a concurrent reader can't yet see merely costs that reader a redundant
// catchup fetch, which is harmless — unlike a lost NOTIFY, which would
// leave a subscriber stalled until its next reconnect.
func (s *Store) publish(ctx context.Context, threadID string, payload any) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("events: marshal payload: %w", err)
	}
	channel := ThreadChannel(threadID)

	var eventID int64
	if err := s.db.QueryRowContext(ctx,
		`INSERT INTO events (channel, payload) VALUES ($1, $2) RETURNING id`,
		channel, payloadJSON,
	).Scan(&eventID); err != nil {
		return fmt.Errorf("events: insert: %w", err)
	}

	notifyPayload, err := withDBEventID(payloadJSON, eventID)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `SELECT pg_notify($1, $2)`, channel, notifyPayload); err != nil {
		return fmt.Errorf("events: pg_notify: %w", err)
	}
	return nil
}

// withDBEventID stamps db_event_id onto the payload for catchup tracking,
// truncating to PostgreSQL's NOTIFY payload limit if the enriched payload
// is too large. A client that receives a truncated envelope falls back to
// a REST reload of the thread.
func withDBEventID(payloadJSON []byte, eventID int64) (string, error) {
	var m map[string]any
	if err := json.Unmarshal(payloadJSON, &m); err != nil {
		return "", fmt.Errorf("events: unmarshal for db_event_id: %w", err)
	}
	m["db_event_id"] = eventID

	enriched, err := json.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("events: marshal enriched payload: %w", err)
	}
	if len(enriched) <= maxNotifyBytes {
		return string(enriched), nil
	}

	truncated, err := json.Marshal(map[string]any{
		"type":        m["type"],
		"thread_id":   m["thread_id"],
		"db_event_id": eventID,
		"truncated":   true,
	})
	if err != nil {
		return "", fmt.Errorf("events: marshal truncated payload: %w", err)
	}
	return string(truncated), nil
}

// GetCatchupEvents implements CatchupQuerier, returning events on channel
// with id > sinceID, oldest first, capped at limit.
func (s *Store) GetCatchupEvents(ctx context.Context, channel string, sinceID, limit int) ([]CatchupEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, payload FROM events WHERE channel = $1 AND id > $2 ORDER BY id ASC LIMIT $3`,
		channel, sinceID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("events: catchup query: %w", err)
	}
	defer rows.Close()

	var out []CatchupEvent
	for rows.Next() {
		var id int
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("events: catchup scan: %w", err)
		}
		var payload map[string]interface{}
		if err := json.Unmarshal(raw, &payload); err != nil {
			return nil, fmt.Errorf("events: catchup unmarshal: %w", err)
		}
		out = append(out, CatchupEvent{ID: id, Payload: payload})
	}
	return out, rows.Err()
}
