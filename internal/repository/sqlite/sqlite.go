// Package sqlite implements the store on an embedded SQLite database
// (modernc.org/sqlite, no cgo). Attendee lists are stored as JSON text.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"virtualevents/internal/domain"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// DB is a domain.Store backed by one SQLite database.
type DB struct {
	conn *sql.DB
}

var _ domain.Store = (*DB)(nil)

// New opens (or creates) the database at path and runs migrations.
// ":memory:" gives a private in-memory database.
func New(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}
	// One connection: SQLite serialises writers anyway, and ":memory:" is per connection.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(context.Background()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}
	return db, nil
}

// Close closes the database.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) Users() domain.UserRepository       { return &userRepo{conn: db.conn} }
func (db *DB) Events() domain.EventRepository     { return &eventRepo{conn: db.conn} }
func (db *DB) Messages() domain.MessageRepository { return &messageRepo{conn: db.conn} }

func (db *DB) migrate(ctx context.Context) error {
	_, err := db.conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			username      TEXT NOT NULL UNIQUE,
			email         TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL,
			salt          TEXT NOT NULL,
			created_at    DATETIME NOT NULL,
			updated_at    DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS events (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			slug       TEXT NOT NULL DEFAULT '',
			date       TEXT NOT NULL,
			time       TEXT NOT NULL DEFAULT '',
			organizer  TEXT NOT NULL,
			attendees  TEXT NOT NULL DEFAULT '[]',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_events_date ON events(date);

		CREATE TABLE IF NOT EXISTS messages (
			id         TEXT PRIMARY KEY,
			event_id   TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
			event_name TEXT NOT NULL,
			sender     TEXT NOT NULL,
			text       TEXT NOT NULL,
			sent_at    DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_messages_event ON messages(event_id, sent_at);
	`)
	return err
}

// isConstraint matches the extended result code, falling back to the primary
// code plus message when extended codes are off.
func isConstraint(err error, code int, label string) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	if sqliteErr.Code() == code {
		return true
	}
	return sqliteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(sqliteErr.Error(), label)
}

func isUniqueViolation(err error) bool {
	return isConstraint(err, sqlite3.SQLITE_CONSTRAINT_UNIQUE, "UNIQUE")
}

func isForeignKeyViolation(err error) bool {
	return isConstraint(err, sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY, "FOREIGN KEY")
}
