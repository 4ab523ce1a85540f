package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"virtualevents/internal/domain"

	"github.com/gosimple/slug"
	"github.com/rs/xid"
)

const eventColumns = `id, name, slug, date, time, organizer, attendees, created_at, updated_at`

type eventRepo struct {
	conn *sql.DB
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(row scanner) (*domain.Event, error) {
	var e domain.Event
	var attendees string
	if err := row.Scan(&e.ID, &e.Name, &e.Slug, &e.Date, &e.Time, &e.Organizer, &attendees, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(attendees), &e.Attendees); err != nil {
		return nil, fmt.Errorf("sqlite: decoding attendees of %s: %w", e.ID, err)
	}
	if e.Attendees == nil {
		e.Attendees = []string{}
	}
	return &e, nil
}

func encodeAttendees(attendees []string) (string, error) {
	if attendees == nil {
		attendees = []string{}
	}
	b, err := json.Marshal(attendees)
	if err != nil {
		return "", fmt.Errorf("sqlite: encoding attendees: %w", err)
	}
	return string(b), nil
}

func (r *eventRepo) Create(ctx context.Context, e *domain.Event) error {
	attendees, err := encodeAttendees(e.Attendees)
	if err != nil {
		return err
	}
	id := xid.New().String()
	_, err = r.conn.ExecContext(ctx,
		`INSERT INTO events (id, name, slug, date, time, organizer, attendees, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, e.Name, e.Slug, e.Date, e.Time, e.Organizer, attendees, e.CreatedAt.UTC(), e.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating event: %w", err)
	}
	e.ID = id
	return nil
}

func (r *eventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	e, err := scanEvent(r.conn.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: getting event: %w", err)
	}
	return e, nil
}

func (r *eventRepo) List(ctx context.Context) ([]*domain.Event, error) {
	// rowid keeps insertion order for events created within the same instant.
	rows, err := r.conn.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing events: %w", err)
	}
	defer rows.Close()

	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepo) Update(ctx context.Context, id string, patch domain.EventPatch, updatedAt time.Time) (*domain.Event, error) {
	var sets []string
	var args []any
	if patch.Name != nil {
		sets = append(sets, "name = ?", "slug = ?")
		args = append(args, *patch.Name, slug.Make(*patch.Name))
	}
	if patch.Date != nil {
		sets = append(sets, "date = ?")
		args = append(args, *patch.Date)
	}
	if patch.Time != nil {
		sets = append(sets, "time = ?")
		args = append(args, *patch.Time)
	}
	if patch.Attendees != nil {
		attendees, err := encodeAttendees(*patch.Attendees)
		if err != nil {
			return nil, err
		}
		sets = append(sets, "attendees = ?")
		args = append(args, attendees)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, updatedAt.UTC(), id)

	e, err := scanEvent(r.conn.QueryRowContext(ctx,
		`UPDATE events SET `+strings.Join(sets, ", ")+` WHERE id = ? RETURNING `+eventColumns, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: updating event: %w", err)
	}
	return e, nil
}

func (r *eventRepo) Delete(ctx context.Context, id string) error {
	res, err := r.conn.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting event: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
