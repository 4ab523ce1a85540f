// Package postgres implements the store on PostgreSQL through lib/pq.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"virtualevents/internal/domain"

	"github.com/lib/pq"
)

const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeInvalidText         = "22P02"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	username      TEXT NOT NULL UNIQUE,
	email         TEXT NOT NULL DEFAULT '',
	password_hash TEXT NOT NULL,
	salt          TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS events (
	id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	name       TEXT NOT NULL,
	slug       TEXT NOT NULL DEFAULT '',
	date       TEXT NOT NULL,
	time       TEXT NOT NULL DEFAULT '',
	organizer  TEXT NOT NULL,
	attendees  TEXT[] NOT NULL DEFAULT '{}',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS events_date_idx ON events (date);

CREATE TABLE IF NOT EXISTS messages (
	id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	event_id   UUID NOT NULL REFERENCES events (id) ON DELETE CASCADE,
	event_name TEXT NOT NULL,
	sender     TEXT NOT NULL,
	text       TEXT NOT NULL,
	sent_at    TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS messages_event_idx ON messages (event_id, sent_at);
`

// Store is a domain.Store over one *sql.DB.
type Store struct {
	DB *sql.DB

	users    domain.UserRepository
	events   domain.EventRepository
	messages domain.MessageRepository
}

// NewStore wraps an open database.
func NewStore(db *sql.DB) *Store {
	return &Store{
		DB:       db,
		users:    NewUserRepository(db),
		events:   NewEventRepository(db),
		messages: NewMessageRepository(db),
	}
}

// Open connects to url, checks the connection and creates missing tables.
func Open(ctx context.Context, url string) (*Store, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	s := NewStore(db)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Migrate creates the tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate postgres: %w", err)
	}
	return nil
}

func (s *Store) Users() domain.UserRepository       { return s.users }
func (s *Store) Events() domain.EventRepository     { return s.events }
func (s *Store) Messages() domain.MessageRepository { return s.messages }

// Close closes the database.
func (s *Store) Close() error { return s.DB.Close() }

func hasCode(err error, code string) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == code
}

// notFound maps a missing row, or an id that is not a UUID, to domain.ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) || hasCode(err, codeInvalidText) {
		return domain.ErrNotFound
	}
	return err
}
